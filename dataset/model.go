package dataset

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/twpayne/go-geom"
)

// ErrDataUnavailable is returned when a statistics or geometry file is
// missing, unreadable or malformed.
var ErrDataUnavailable = errors.New("data unavailable")

// NoDepartment is the department code meaning "nothing selected".
const NoDepartment = "00"

// CrimeRecord is one row of the departmental statistics table.
type CrimeRecord struct {
	Department string  `json:"department"`
	Year       int     `json:"year"`
	Class      string  `json:"class"`
	Facts      int     `json:"facts"`
	Rate       float64 `json:"-"` // per thousand inhabitants, NaN when absent
	Region     string  `json:"region,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Population int     `json:"population,omitempty"`
	Housing    int     `json:"housing,omitempty"`
}

// MarshalJSON writes the rate as null when it is absent.
func (r CrimeRecord) MarshalJSON() ([]byte, error) {
	type record CrimeRecord
	return json.Marshal(struct {
		record
		Rate *float64 `json:"rate"`
	}{record(r), NullableFloat(r.Rate)})
}

// NullableFloat maps NaN and infinities to nil so they encode as JSON null.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// HasRate reports whether the rate-per-thousand column was present.
func (r CrimeRecord) HasRate() bool {
	return !math.IsNaN(r.Rate)
}

// DepartmentGeometry is the boundary of one department.
type DepartmentGeometry struct {
	Code     string
	Name     string
	Geometry geom.T
	Centroid geom.Coord
}
