// Package dashboard assembles the data behind the three dashboard modes from
// the loaded tables and a session's selection.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/zalepa/delinquance/dataset"
	"github.com/zalepa/delinquance/pipeline"
	"github.com/zalepa/delinquance/session"
)

// Mode is one of the top-level dashboard sections.
type Mode string

const (
	ModeHome        Mode = "home"
	ModeTemporal    Mode = "temporal"
	ModeTerritorial Mode = "territorial"
)

// Modes lists the sections in menu order.
var Modes = []Mode{ModeHome, ModeTemporal, ModeTerritorial}

// ParseMode maps a query value to a mode; anything unknown is the home page.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTemporal, ModeTerritorial:
		return m
	}
	return ModeHome
}

// Title is the menu label of the mode.
func (m Mode) Title() string {
	switch m {
	case ModeTemporal:
		return "Représentation Temporelle"
	case ModeTerritorial:
		return "Représentation Territoriale"
	}
	return "Accueil"
}

// User-facing messages for empty or incomplete selections.
const (
	MsgSelectClass      = "Sélectionnez au moins une infraction."
	MsgNoClassData      = "Aucune donnée disponible pour les infractions sélectionnées."
	MsgSelectYear       = "Sélectionnez au moins une année pour afficher le nuage de points."
	MsgNoScatterData    = "Aucune donnée disponible pour les sélections effectuées."
	MsgSelectDepartment = "Cliquez sur un département de la carte pour le sélectionner."
	MsgNoDepartmentData = "Aucune donnée disponible pour ce département."
)

// Dashboard holds the immutable tables shared by every session.
type Dashboard struct {
	Records    []dataset.CrimeRecord
	Geometries []dataset.DepartmentGeometry
	// Boundaries are the optional higher-resolution outlines for the static
	// density map; Geometries are used when nil.
	Boundaries []dataset.DepartmentGeometry
	Join       pipeline.JoinOptions
	HeadRows   int
}

// HomeView is the overview page: a preview of the table and the class list.
type HomeView struct {
	Head    []dataset.CrimeRecord `json:"head"`
	Rows    int                   `json:"rows"`
	Classes []string              `json:"classes"`
	Years   []int                 `json:"years"`
}

// Home builds the overview page.
func (d *Dashboard) Home() HomeView {
	n := d.HeadRows
	if n <= 0 {
		n = 5
	}
	if n > len(d.Records) {
		n = len(d.Records)
	}
	return HomeView{
		Head:    d.Records[:n],
		Rows:    len(d.Records),
		Classes: pipeline.Classes(d.Records),
		Years:   pipeline.Years(d.Records),
	}
}

// DensityRegions joins department totals against the density-map outlines.
func (d *Dashboard) DensityRegions() []pipeline.Region {
	bounds := d.Boundaries
	if bounds == nil {
		bounds = d.Geometries
	}
	return pipeline.JoinStatsToGeometry(pipeline.SumByDepartment(d.Records), bounds, d.Join)
}

// TemporalView is the time-series page.
type TemporalView struct {
	Classes     []string                   `json:"classes"`
	Years       []int                      `json:"years"`
	Selected    *session.Selection         `json:"selected"`
	Sums        map[pipeline.YearClass]int `json:"-"`
	SeriesYears []int                      `json:"seriesYears"`
	Series      map[string][]float64       `json:"-"`
	Message     string                     `json:"message,omitempty"`

	Scatter []pipeline.ScatterPoint `json:"scatter"`
	R       float64                 `json:"-"` // facts/rate correlation, NaN when undefined
	// ScatterMessage explains why the scatter plot is empty.
	ScatterMessage string `json:"scatterMessage,omitempty"`
}

// Temporal builds the time-series page for sel. The scatter plot covers the
// selection's scatter years; without any year there is no scatter plot.
func (d *Dashboard) Temporal(sel *session.Selection) TemporalView {
	v := TemporalView{
		Classes:  pipeline.Classes(d.Records),
		Years:    pipeline.Years(d.Records),
		Selected: sel.Clone(),
		Sums:     map[pipeline.YearClass]int{},
		Series:   map[string][]float64{},
		Scatter:  []pipeline.ScatterPoint{},
	}

	if len(sel.Classes) == 0 {
		v.Message = MsgSelectClass
	} else {
		v.Sums = pipeline.SumByYearAndClass(pipeline.FilterByClasses(d.Records, sel.Classes))
		if len(v.Sums) == 0 {
			v.Message = MsgNoClassData
		}
		v.SeriesYears, v.Series = pipeline.YearlySeries(v.Sums)
	}

	years := sel.ScatterYears()
	switch {
	case len(years) == 0:
		v.ScatterMessage = MsgSelectYear
	case len(sel.Classes) == 0:
		v.ScatterMessage = MsgSelectClass
	default:
		v.Scatter = pipeline.ScatterSeries(d.Records, sel.Classes, years)
		v.R = pipeline.Correlation(v.Scatter)
		if len(v.Scatter) == 0 {
			v.ScatterMessage = MsgNoScatterData
		}
	}
	return v
}

// TerritorialView is the map page.
type TerritorialView struct {
	Regions    []pipeline.Region     `json:"-"`
	Years      []int                 `json:"years"`
	Department string                `json:"department"`
	Name       string                `json:"name,omitempty"`
	Year       int                   `json:"year"`
	Breakdown  []pipeline.ClassTotal `json:"breakdown"`
	Ranking    []pipeline.ClassTotal `json:"ranking"`
	Prompt     string                `json:"prompt,omitempty"`
	Message    string                `json:"message,omitempty"`
}

// Territorial builds the map page. Without a clicked department only the map
// is computed and the view prompts for a click. Without a chosen year the
// most recent one is used for the breakdown.
func (d *Dashboard) Territorial(sel *session.Selection) TerritorialView {
	v := TerritorialView{
		Regions:    pipeline.JoinStatsToGeometry(pipeline.SumByDepartment(d.Records), d.Geometries, d.Join),
		Years:      pipeline.Years(d.Records),
		Department: sel.Department,
		Year:       sel.Year,
		Breakdown:  []pipeline.ClassTotal{},
		Ranking:    []pipeline.ClassTotal{},
	}
	if !sel.HasYear() && len(v.Years) > 0 {
		v.Year = v.Years[len(v.Years)-1]
	}
	if !sel.HasDepartment() {
		v.Prompt = MsgSelectDepartment
		return v
	}

	for _, g := range d.Geometries {
		if dataset.NormalizeDepartment(g.Code) == sel.Department {
			v.Name = g.Name
			break
		}
	}
	v.Breakdown = pipeline.BreakdownByClass(d.Records, sel.Department, v.Year)
	v.Ranking = pipeline.RankByDangerousness(d.Records, sel.Department)
	if len(v.Ranking) == 0 {
		v.Message = MsgNoDepartmentData
	}
	return v
}

// DepartmentLabel is "75 Paris" or just the code when the name is unknown.
func (v TerritorialView) DepartmentLabel() string {
	if v.Name == "" {
		return v.Department
	}
	return fmt.Sprintf("%s %s", v.Department, v.Name)
}
