package chart

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// FormatCount formats a fact count with French digit grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatRate formats a rate per thousand with a decimal comma.
func FormatRate(v float64) string {
	if math.IsNaN(v) {
		return "- -"
	}
	return printer.Sprintf("%.2f", v)
}

// formatCompact shortens large axis values: 12k, 1.5M.
func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
