package pipeline

import (
	"sort"

	"github.com/zalepa/delinquance/dataset"
)

// RankByDangerousness orders the infraction classes of one department by
// total facts, highest first. Equal totals are ordered by class label so the
// ranking is the same on every run.
func RankByDangerousness(records []dataset.CrimeRecord, code string) []ClassTotal {
	totals := make(map[string]int)
	for _, r := range FilterByDepartment(records, code) {
		totals[r.Class] += r.Facts
	}
	out := classTotals(totals)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Facts != out[j].Facts {
			return out[i].Facts > out[j].Facts
		}
		return out[i].Class < out[j].Class
	})
	return out
}
