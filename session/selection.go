// Package session holds the per-visitor selection that drives every view.
package session

import (
	"sort"
	"strings"

	"github.com/zalepa/delinquance/dataset"
)

// Selection is the state of one dashboard session: the department clicked on
// the map, the chosen year, the years of the scatter plot and the chosen
// infraction classes. It is owned by a single session and is not safe for
// concurrent use.
type Selection struct {
	Department string   `json:"department"`
	Year       int      `json:"year"`
	Years      []int    `json:"years"`
	Classes    []string `json:"classes"`
}

// New returns a selection with nothing chosen.
func New() *Selection {
	return &Selection{Department: dataset.NoDepartment, Years: []int{}, Classes: []string{}}
}

// SelectDepartment records a map click. Blank codes reset to no department.
func (s *Selection) SelectDepartment(code string) {
	code = dataset.NormalizeDepartment(code)
	if code == "" {
		code = dataset.NoDepartment
	}
	s.Department = code
}

// SelectYear records the chosen year; zero or less clears it. Two-digit
// years are read as 20xx, like the year column of the statistics file.
func (s *Selection) SelectYear(year int) {
	if year <= 0 {
		s.Year = 0
		return
	}
	s.Year = dataset.ExpandYear(year)
}

// SelectYears replaces the years of the scatter plot. Two-digit years are
// expanded, non-positive and duplicate years dropped, the rest sorted.
func (s *Selection) SelectYears(years []int) {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if y <= 0 {
			continue
		}
		y = dataset.ExpandYear(y)
		if seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	sort.Ints(out)
	s.Years = out
}

// ScatterYears is the year set of the scatter plot: the chosen years, or the
// single chosen year when none were picked.
func (s *Selection) ScatterYears() []int {
	if len(s.Years) > 0 {
		return append([]int(nil), s.Years...)
	}
	if s.HasYear() {
		return []int{s.Year}
	}
	return nil
}

// SelectClasses replaces the chosen classes. Blank and duplicate labels are
// dropped and the result is sorted.
func (s *Selection) SelectClasses(classes []string) {
	seen := make(map[string]bool, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	s.Classes = out
}

// HasDepartment reports whether a department has been clicked.
func (s *Selection) HasDepartment() bool {
	return s.Department != "" && s.Department != dataset.NoDepartment
}

// HasYear reports whether a year has been chosen.
func (s *Selection) HasYear() bool {
	return s.Year > 0
}

// ClassSet returns the chosen classes as a set.
func (s *Selection) ClassSet() map[string]bool {
	set := make(map[string]bool, len(s.Classes))
	for _, c := range s.Classes {
		set[c] = true
	}
	return set
}

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection {
	c := *s
	c.Years = append([]int{}, s.Years...)
	c.Classes = append([]string{}, s.Classes...)
	return &c
}
