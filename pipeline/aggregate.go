package pipeline

import (
	"math"
	"sort"

	"github.com/zalepa/delinquance/dataset"
)

// YearClass keys the per-year, per-class totals.
type YearClass struct {
	Year  int
	Class string
}

// ClassTotal is the number of facts recorded for one class.
type ClassTotal struct {
	Class string `json:"class"`
	Facts int    `json:"facts"`
}

// SumByYearAndClass totals facts per (year, class). Years are the four-digit
// values normalized at load time and are not touched again here.
func SumByYearAndClass(records []dataset.CrimeRecord) map[YearClass]int {
	sums := make(map[YearClass]int)
	for _, r := range records {
		sums[YearClass{Year: r.Year, Class: r.Class}] += r.Facts
	}
	return sums
}

// SumByDepartment totals facts per canonical department code.
func SumByDepartment(records []dataset.CrimeRecord) map[string]int {
	sums := make(map[string]int)
	for _, r := range records {
		code := dataset.NormalizeDepartment(r.Department)
		if code == "" {
			continue
		}
		sums[code] += r.Facts
	}
	return sums
}

// LastValue returns the most recent non-NaN value of a yearly series, or NaN
// when the series has none.
func LastValue(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i]
		}
	}
	return math.NaN()
}

// YearlySeries pivots per-year totals into one series per class, aligned with
// the returned ascending years. Years where a class has no rows are NaN so
// charts leave a gap rather than drawing a zero.
func YearlySeries(sums map[YearClass]int) ([]int, map[string][]float64) {
	yearSet := make(map[int]bool)
	classSet := make(map[string]bool)
	for k := range sums {
		yearSet[k.Year] = true
		classSet[k.Class] = true
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	series := make(map[string][]float64, len(classSet))
	for class := range classSet {
		vals := make([]float64, len(years))
		for i, y := range years {
			if v, ok := sums[YearClass{Year: y, Class: class}]; ok {
				vals[i] = float64(v)
			} else {
				vals[i] = math.NaN()
			}
		}
		series[class] = vals
	}
	return years, series
}

// BreakdownByClass totals the facts of one department in one year by class,
// sorted by class label. It feeds the pie and per-class bar views.
func BreakdownByClass(records []dataset.CrimeRecord, code string, year int) []ClassTotal {
	dept := FilterByDepartment(records, code)
	totals := make(map[string]int)
	for _, r := range dept {
		if r.Year == year {
			totals[r.Class] += r.Facts
		}
	}
	out := classTotals(totals)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Class < out[j].Class
	})
	return out
}

func classTotals(totals map[string]int) []ClassTotal {
	out := make([]ClassTotal, 0, len(totals))
	for class, n := range totals {
		out = append(out, ClassTotal{Class: class, Facts: n})
	}
	return out
}
