package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/zalepa/delinquance/dataset"
	"github.com/zalepa/delinquance/pipeline"
	"github.com/zalepa/delinquance/session"
)

func fixture() *Dashboard {
	rec := func(dept string, year int, class string, facts int, rate float64) dataset.CrimeRecord {
		return dataset.CrimeRecord{Department: dept, Year: year, Class: class, Facts: facts, Rate: rate}
	}
	sq := func(code, name string, x float64) dataset.DepartmentGeometry {
		p := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
			{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 1}, {x, 0},
		}})
		return dataset.DepartmentGeometry{Code: code, Name: name, Geometry: p, Centroid: geom.Coord{x + 0.5, 0.5}}
	}
	return &Dashboard{
		Records: []dataset.CrimeRecord{
			rec("01", 2021, "Vols", 80, 1.2),
			rec("01", 2022, "Vols", 100, 1.5),
			rec("01", 2022, "Coups", 40, 0.6),
			rec("75", 2022, "Vols", 900, 4.1),
			rec("75", 2022, "Coups", 300, math.NaN()),
		},
		Geometries: []dataset.DepartmentGeometry{sq("1", "Ain", 0), sq("75", "Paris", 1), sq("2A", "Corse-du-Sud", 2)},
		Join:       pipeline.DefaultJoinOptions(),
		HeadRows:   2,
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"", ModeHome},
		{"home", ModeHome},
		{"Temporal", ModeTemporal},
		{"territorial", ModeTerritorial},
		{"other", ModeHome},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.input); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHome(t *testing.T) {
	v := fixture().Home()
	assert.Len(t, v.Head, 2)
	assert.Equal(t, 5, v.Rows)
	assert.Equal(t, []string{"Coups", "Vols"}, v.Classes)
	assert.Equal(t, []int{2021, 2022}, v.Years)
}

func TestTemporal_NoClassSelected(t *testing.T) {
	v := fixture().Temporal(session.New())
	assert.Equal(t, MsgSelectClass, v.Message)
	assert.Empty(t, v.Sums)
	assert.Equal(t, MsgSelectYear, v.ScatterMessage)
	assert.Empty(t, v.Scatter)
}

func TestTemporal_UnknownClass(t *testing.T) {
	sel := session.New()
	sel.SelectClasses([]string{"Inconnu"})
	v := fixture().Temporal(sel)
	assert.Equal(t, MsgNoClassData, v.Message)
	assert.Empty(t, v.Series)
}

func TestTemporal_WithSelection(t *testing.T) {
	sel := session.New()
	sel.SelectClasses([]string{"Vols"})
	sel.SelectYear(2022)

	v := fixture().Temporal(sel)
	assert.Empty(t, v.Message)
	assert.Equal(t, 1000, v.Sums[pipeline.YearClass{Year: 2022, Class: "Vols"}])
	assert.Equal(t, []int{2021, 2022}, v.SeriesYears)
	assert.Equal(t, []float64{80, 1000}, v.Series["Vols"])
	assert.Len(t, v.Scatter, 2)
	assert.Empty(t, v.ScatterMessage)
	assert.InDelta(t, 1.0, v.R, 1e-9)

	// The view keeps its own copy of the selection.
	sel.SelectClasses(nil)
	assert.Equal(t, []string{"Vols"}, v.Selected.Classes)
}

func TestTemporal_ScatterYears(t *testing.T) {
	sel := session.New()
	sel.SelectClasses([]string{"Vols"})
	sel.SelectYear(2022)
	sel.SelectYears([]int{2021, 22})

	v := fixture().Temporal(sel)
	require.Len(t, v.Scatter, 3)
	years := map[int]int{}
	for _, p := range v.Scatter {
		years[p.Year]++
	}
	assert.Equal(t, map[int]int{2021: 1, 2022: 2}, years)

	sel.SelectYears([]int{2021})
	v = fixture().Temporal(sel)
	require.Len(t, v.Scatter, 1)
	assert.Equal(t, 80, v.Scatter[0].Facts)
	assert.True(t, math.IsNaN(v.R), "one point has no correlation")
}

func TestTemporal_TwoDigitYear(t *testing.T) {
	sel := session.New()
	sel.SelectClasses([]string{"Vols"})
	sel.SelectYear(22)

	v := fixture().Temporal(sel)
	assert.Len(t, v.Scatter, 2)
	assert.Empty(t, v.ScatterMessage)
}

func TestTerritorial_PromptsWithoutDepartment(t *testing.T) {
	v := fixture().Territorial(session.New())
	assert.Equal(t, MsgSelectDepartment, v.Prompt)
	assert.Empty(t, v.Ranking)
	assert.Empty(t, v.Breakdown)
	require.Len(t, v.Regions, 3)
	assert.Equal(t, 2022, v.Year, "defaults to the latest year")
}

func TestTerritorial_SelectedDepartment(t *testing.T) {
	sel := session.New()
	sel.SelectDepartment("1")
	sel.SelectYear(2022)

	v := fixture().Territorial(sel)
	assert.Empty(t, v.Prompt)
	assert.Equal(t, "01 Ain", v.DepartmentLabel())
	assert.Equal(t, []pipeline.ClassTotal{{Class: "Coups", Facts: 40}, {Class: "Vols", Facts: 100}}, v.Breakdown)
	assert.Equal(t, []pipeline.ClassTotal{{Class: "Vols", Facts: 180}, {Class: "Coups", Facts: 40}}, v.Ranking)

	byCode := make(map[string]pipeline.Region)
	for _, r := range v.Regions {
		byCode[r.Code] = r
	}
	assert.Equal(t, 220, byCode["01"].Facts)
	assert.Equal(t, 1200, byCode["75"].Facts)
	assert.Equal(t, 0, byCode["2A"].Facts)
	assert.False(t, byCode["2A"].HasData)
}

func TestTerritorial_DepartmentWithoutData(t *testing.T) {
	sel := session.New()
	sel.SelectDepartment("2A")
	v := fixture().Territorial(sel)
	assert.Equal(t, MsgNoDepartmentData, v.Message)
	assert.Equal(t, "2A Corse-du-Sud", v.DepartmentLabel())
}

func TestDensityRegions_PrefersBoundaries(t *testing.T) {
	d := fixture()
	assert.Len(t, d.DensityRegions(), 3)

	d.Boundaries = d.Geometries[:1]
	regions := d.DensityRegions()
	require.Len(t, regions, 1)
	assert.Equal(t, "01", regions[0].Code)
}
