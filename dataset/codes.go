package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeDepartment returns the canonical form of a department code: upper
// case, leading zeros stripped, numeric codes padded back to two digits. The
// statistics file writes "01" while some boundary files write "1"; both map
// to "01". Applying it twice is a no-op.
func NormalizeDepartment(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	code = strings.TrimLeft(code, "0")
	if len(code) < 2 {
		code = strings.Repeat("0", 2-len(code)) + code
	}
	return code
}

// NormalizeYear interprets a year cell. Two-digit years are offset into the
// 2000s ("22" -> 2022); four-digit years are returned as is, so the function
// can be applied to its own output without re-prefixing.
func NormalizeYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty year")
	}
	// Some exports carry the year as a float ("22.0").
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	if n < 0 || (n >= 100 && n < 1000) || n > 9999 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return ExpandYear(n), nil
}

// ExpandYear offsets a two-digit year into the 2000s and leaves any other
// value alone, so it is idempotent.
func ExpandYear(n int) int {
	if n >= 0 && n < 100 {
		return 2000 + n
	}
	return n
}

// YearLabel formats a normalized year for display.
func YearLabel(year int) string {
	return strconv.Itoa(year)
}
