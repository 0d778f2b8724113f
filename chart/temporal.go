package chart

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/delinquance/pipeline"
)

func sortedClasses(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for k := range series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Line draws total facts per year, one line per class.
func Line(years []int, series map[string][]float64) (*plot.Plot, error) {
	if len(years) == 0 || len(series) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Évolution du nombre total de faits par année")
	p.X.Label.Text = "Année"
	p.Y.Label.Text = "Faits"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, class := range sortedClasses(series) {
		var pts plotter.XYs
		for j, v := range series[class] {
			if finite(v) {
				pts = append(pts, plotter.XY{X: float64(years[j]), Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		clr := classColor(i)

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", class, err)
		}
		line.Color = clr
		line.Width = vg.Points(2)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("points %s: %w", class, err)
		}
		scatter.Color = clr
		scatter.Radius = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}

		p.Add(line, scatter)
		p.Legend.Add(class, line, scatter)
	}

	p.X.Tick.Marker = yearTicks(years)
	p.X.Min = float64(years[0]) - 0.5
	p.X.Max = float64(years[len(years)-1]) + 0.5
	p.Y.Tick.Marker = countTicks{}
	p.Y.Min = 0
	return p, nil
}

// StackedBars draws the class distribution of facts per year as stacked bars.
func StackedBars(years []int, series map[string][]float64) (*plot.Plot, error) {
	if len(years) == 0 || len(series) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Répartition des types de crimes par année")
	p.X.Label.Text = "Année"
	p.Y.Label.Text = "Total des faits"
	p.Legend.Top = true
	p.Legend.Left = true

	var below *plotter.BarChart
	for i, class := range sortedClasses(series) {
		vals := make(plotter.Values, len(years))
		for j, v := range series[class] {
			if finite(v) {
				vals[j] = v
			}
		}
		bar, err := plotter.NewBarChart(vals, vg.Points(24))
		if err != nil {
			return nil, fmt.Errorf("bars %s: %w", class, err)
		}
		bar.Color = classColor(i)
		bar.LineStyle.Width = 0
		if below != nil {
			bar.StackOn(below)
		}
		below = bar
		p.Add(bar)
		p.Legend.Add(class, bar)
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = fmt.Sprint(y)
	}
	p.NominalX(labels...)
	p.Y.Tick.Marker = countTicks{}
	return p, nil
}

// Scatter plots facts against the rate per thousand, colored by class.
// Points without a rate are skipped. The Pearson coefficient goes in the
// title when it is defined.
func Scatter(points []pipeline.ScatterPoint) (*plot.Plot, error) {
	byClass := make(map[string]plotter.XYs)
	for _, pt := range points {
		if math.IsNaN(pt.Rate) {
			continue
		}
		byClass[pt.Class] = append(byClass[pt.Class], plotter.XY{X: float64(pt.Facts), Y: pt.Rate})
	}
	if len(byClass) == 0 {
		return nil, ErrNoData
	}

	title := "Relation entre le nombre de faits et le taux pour mille"
	if r := pipeline.Correlation(points); finite(r) {
		title += fmt.Sprintf(" (r = %.2f)", r)
	}
	p := newPlot(title)
	p.X.Label.Text = "Nombre de faits"
	p.Y.Label.Text = "Taux pour mille"
	p.X.Tick.Marker = countTicks{}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for i, class := range classes {
		s, err := plotter.NewScatter(byClass[class])
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", class, err)
		}
		s.Color = classColor(i)
		s.Radius = vg.Points(3)
		s.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(class, s)
	}
	return p, nil
}
