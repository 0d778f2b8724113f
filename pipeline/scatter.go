package pipeline

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/zalepa/delinquance/dataset"
)

// ScatterPoint is one department/year/class observation for the facts versus
// rate plot.
type ScatterPoint struct {
	Department string  `json:"department"`
	Year       int     `json:"year"`
	Class      string  `json:"class"`
	Facts      int     `json:"facts"`
	Rate       float64 `json:"-"`
}

// MarshalJSON writes the rate as null when it is absent.
func (p ScatterPoint) MarshalJSON() ([]byte, error) {
	type point ScatterPoint
	return json.Marshal(struct {
		point
		Rate *float64 `json:"rate"`
	}{point(p), dataset.NullableFloat(p.Rate)})
}

// ScatterSeries selects the rows matching both the class and year sets and
// drops rows without a department code. Facts and rates pass through
// unchanged; a missing rate stays NaN.
func ScatterSeries(records []dataset.CrimeRecord, classes []string, years []int) []ScatterPoint {
	rows := FilterByYears(FilterByClasses(records, classes), years)
	out := make([]ScatterPoint, 0, len(rows))
	for _, r := range rows {
		if r.Department == "" {
			continue
		}
		out = append(out, ScatterPoint{
			Department: r.Department,
			Year:       r.Year,
			Class:      r.Class,
			Facts:      r.Facts,
			Rate:       r.Rate,
		})
	}
	return out
}

// Correlation returns the Pearson correlation between facts and rate over the
// points that have a rate, or NaN when fewer than two do.
func Correlation(points []ScatterPoint) float64 {
	var xs, ys []float64
	for _, p := range points {
		if math.IsNaN(p.Rate) {
			continue
		}
		xs = append(xs, float64(p.Facts))
		ys = append(ys, p.Rate)
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
