// Package pipeline derives the tables behind every dashboard view from the
// loaded statistics. All functions are pure: selections arrive as
// parameters, inputs are never modified, and an empty input always yields an
// empty (non-nil) result.
package pipeline

import (
	"sort"

	"github.com/zalepa/delinquance/dataset"
)

// FilterByClasses keeps the records whose class is in classes. An empty set
// selects nothing.
func FilterByClasses(records []dataset.CrimeRecord, classes []string) []dataset.CrimeRecord {
	set := stringSet(classes)
	out := make([]dataset.CrimeRecord, 0)
	if len(set) == 0 {
		return out
	}
	for _, r := range records {
		if set[r.Class] {
			out = append(out, r)
		}
	}
	return out
}

// FilterByYears keeps the records whose year is in years. An empty set
// selects nothing.
func FilterByYears(records []dataset.CrimeRecord, years []int) []dataset.CrimeRecord {
	set := make(map[int]bool, len(years))
	for _, y := range years {
		set[y] = true
	}
	out := make([]dataset.CrimeRecord, 0)
	if len(set) == 0 {
		return out
	}
	for _, r := range records {
		if set[r.Year] {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDepartment keeps the records of one department. The code is
// normalized first, so "1" and "01" select the same rows.
func FilterByDepartment(records []dataset.CrimeRecord, code string) []dataset.CrimeRecord {
	code = dataset.NormalizeDepartment(code)
	out := make([]dataset.CrimeRecord, 0)
	if code == "" {
		return out
	}
	for _, r := range records {
		if dataset.NormalizeDepartment(r.Department) == code {
			out = append(out, r)
		}
	}
	return out
}

// Classes returns the distinct infraction classes, sorted.
func Classes(records []dataset.CrimeRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		if !seen[r.Class] {
			seen[r.Class] = true
			out = append(out, r.Class)
		}
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct years, ascending.
func Years(records []dataset.CrimeRecord) []int {
	seen := make(map[int]bool)
	out := make([]int, 0)
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
