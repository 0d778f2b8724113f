package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zalepa/delinquance/dataset"
)

// MissingPolicy says what happens to a department that has a boundary but no
// statistics.
type MissingPolicy string

const (
	// MissingZero keeps the department with zero facts and HasData unset.
	MissingZero MissingPolicy = "zero"
	// MissingExclude drops the department from the joined table.
	MissingExclude MissingPolicy = "exclude"
)

// ParseMissingPolicy validates a configured policy name.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MissingZero, MissingExclude:
		return p, nil
	case "":
		return MissingZero, nil
	}
	return "", fmt.Errorf("unknown missing-data policy %q (want zero or exclude)", s)
}

// OverseasPrefixes are the codes of the overseas departments, left off the
// metropolitan map.
var OverseasPrefixes = []string{"971", "972", "973", "974", "975", "976"}

// JoinOptions controls JoinStatsToGeometry.
type JoinOptions struct {
	Missing         MissingPolicy
	ExcludePrefixes []string
}

// DefaultJoinOptions keeps missing departments at zero and drops overseas ones.
func DefaultJoinOptions() JoinOptions {
	return JoinOptions{Missing: MissingZero, ExcludePrefixes: OverseasPrefixes}
}

// Region is one department of the choropleth: its boundary and total facts.
type Region struct {
	dataset.DepartmentGeometry
	Facts   int
	HasData bool
}

// JoinStatsToGeometry attaches per-department totals to department
// boundaries. Both sides are compared on their canonical codes. Totals for
// departments that have no boundary are ignored; boundaries without totals
// follow opts.Missing. Excluded prefixes are matched against canonical codes.
// The result is sorted by code.
func JoinStatsToGeometry(totals map[string]int, geometries []dataset.DepartmentGeometry, opts JoinOptions) []Region {
	if opts.Missing == "" {
		opts.Missing = MissingZero
	}
	byCode := make(map[string]int, len(totals))
	for code, n := range totals {
		byCode[dataset.NormalizeDepartment(code)] += n
	}

	out := make([]Region, 0, len(geometries))
	for _, g := range geometries {
		code := dataset.NormalizeDepartment(g.Code)
		if hasAnyPrefix(code, opts.ExcludePrefixes) {
			continue
		}
		n, ok := byCode[code]
		if !ok && opts.Missing == MissingExclude {
			continue
		}
		g.Code = code
		out = append(out, Region{DepartmentGeometry: g, Facts: n, HasData: ok})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

func hasAnyPrefix(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}
