package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/delinquance/dataset"
	"github.com/zalepa/delinquance/pipeline"
)

// Pie draws the share of each class in one department and year. The legend
// lists "class: count".
func Pie(department string, year int, slices []pipeline.ClassTotal) (*plot.Plot, error) {
	total := 0
	for _, s := range slices {
		total += s.Facts
	}
	if total == 0 {
		return nil, ErrNoData
	}

	p := newPlot(fmt.Sprintf("Répartition des faits par classe pour le département %s en %d", department, year))
	p.HideAxes()
	p.Legend.Top = true

	pc := &pieChart{total: float64(total)}
	for i, s := range slices {
		if s.Facts == 0 {
			continue
		}
		clr := classColor(i)
		pc.slices = append(pc.slices, pieSlice{value: float64(s.Facts), color: clr})
		p.Legend.Add(fmt.Sprintf("%s: %s", s.Class, FormatCount(s.Facts)), swatch{color: clr})
	}
	p.Add(pc)
	return p, nil
}

type pieSlice struct {
	value float64
	color color.Color
}

// pieChart is a plot.Plotter drawing wedges counterclockwise from 12 o'clock,
// each labelled with its percentage.
type pieChart struct {
	slices []pieSlice
	total  float64
}

func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	w, h := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	radius := 0.45 * vg.Length(math.Min(float64(w), float64(h)))
	// Leave the right-hand side to the legend.
	center := vg.Point{X: c.Min.X + w*0.35, Y: c.Min.Y + h/2}

	start := math.Pi / 2
	for _, s := range pc.slices {
		sweep := 2 * math.Pi * s.value / pc.total

		var path vg.Path
		path.Move(center)
		path.Line(vg.Point{
			X: center.X + radius*vg.Length(math.Cos(start)),
			Y: center.Y + radius*vg.Length(math.Sin(start)),
		})
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(s.color)
		c.Fill(path)

		if share := s.value / pc.total; share >= 0.03 {
			mid := start + sweep/2
			label := vg.Point{
				X: center.X + 0.65*radius*vg.Length(math.Cos(mid)),
				Y: center.Y + 0.65*radius*vg.Length(math.Sin(mid)),
			}
			fillText(c, fmt.Sprintf("%.1f%%", 100*share), vg.Points(9), label, color.White)
		}
		start += sweep
	}
}

// Ranking draws the dangerousness ranking of one department, highest first.
func Ranking(department string, ranking []pipeline.ClassTotal) (*plot.Plot, error) {
	if len(ranking) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(fmt.Sprintf("Dangerosité du département %s", department))
	p.Y.Label.Text = "Nombre de faits"
	p.Y.Tick.Marker = countTicks{}

	vals := make(plotter.Values, len(ranking))
	labels := make([]string, len(ranking))
	for i, r := range ranking {
		vals[i] = float64(r.Facts)
		labels[i] = r.Class
	}
	bar, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("ranking bars: %w", err)
	}
	bar.Color = classColor(0)
	bar.LineStyle.Width = 0
	p.Add(bar)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// DensityMap draws a static choropleth of total facts per department with
// the department code at each centroid. Departments without data are grey.
func DensityMap(regions []pipeline.Region) (*plot.Plot, error) {
	if len(regions) == 0 {
		return nil, ErrNoData
	}
	pal, err := brewer.GetPalette(brewer.TypeSequential, "OrRd", 9)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}

	m := newDensityMap(regions, pal.Colors())

	p := newPlot("Densité de la criminalité par département")
	p.HideAxes()
	p.Add(m)
	lo, hi := m.colors[0], m.colors[len(m.colors)-1]
	p.Legend.Add("0", swatch{color: lo})
	p.Legend.Add(FormatCount(m.max), swatch{color: hi})
	p.Legend.Add("sans donnée", swatch{color: noDataColor})
	return p, nil
}

var noDataColor = color.Gray{Y: 210}

type densityMap struct {
	regions []pipeline.Region
	colors  []color.Color
	max     int
}

func newDensityMap(regions []pipeline.Region, colors []color.Color) *densityMap {
	m := &densityMap{regions: regions, colors: colors}
	for _, r := range regions {
		if r.Facts > m.max {
			m.max = r.Facts
		}
	}
	return m
}

func (m *densityMap) color(r pipeline.Region) color.Color {
	if !r.HasData {
		return noDataColor
	}
	if m.max == 0 {
		return m.colors[0]
	}
	idx := int(float64(r.Facts) / float64(m.max) * float64(len(m.colors)-1))
	if idx >= len(m.colors) {
		idx = len(m.colors) - 1
	}
	return m.colors[idx]
}

// DataRange implements plot.DataRanger over the department bounds.
func (m *densityMap) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, r := range m.regions {
		if r.Geometry == nil {
			continue
		}
		b := r.Geometry.Bounds()
		xmin = math.Min(xmin, b.Min(0))
		xmax = math.Max(xmax, b.Max(0))
		ymin = math.Min(ymin, b.Min(1))
		ymax = math.Max(ymax, b.Max(1))
	}
	if math.IsInf(xmin, 1) {
		return 0, 1, 0, 1
	}
	return xmin, xmax, ymin, ymax
}

func (m *densityMap) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	border := draw.LineStyle{Color: color.Gray{Y: 80}, Width: vg.Points(0.5)}

	for _, r := range m.regions {
		c.SetColor(m.color(r))
		for _, rings := range dataset.Polygons(r.Geometry) {
			// One path per polygon so holes stay unfilled.
			var path vg.Path
			outlines := make([][]vg.Point, 0, len(rings))
			for _, ring := range rings {
				pts := make([]vg.Point, len(ring))
				for i, coord := range ring {
					pts[i] = vg.Point{X: trX(coord.X()), Y: trY(coord.Y())}
				}
				path.Move(pts[0])
				for _, pt := range pts[1:] {
					path.Line(pt)
				}
				path.Close()
				outlines = append(outlines, pts)
			}
			c.Fill(path)
			for _, pts := range outlines {
				c.StrokeLines(border, pts)
			}
		}
	}
	for _, r := range m.regions {
		if len(r.Centroid) < 2 {
			continue
		}
		pt := vg.Point{X: trX(r.Centroid.X()), Y: trY(r.Centroid.Y())}
		fillText(c, r.Code, vg.Points(6), pt, color.Black)
	}
}
