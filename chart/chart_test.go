package chart

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/zalepa/delinquance/dataset"
	"github.com/zalepa/delinquance/pipeline"
)

func region(code string, x, y float64, facts int, hasData bool) pipeline.Region {
	p := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
	}})
	return pipeline.Region{
		DepartmentGeometry: dataset.DepartmentGeometry{Code: code, Geometry: p, Centroid: geom.Coord{x + 0.5, y + 0.5}},
		Facts:              facts,
		HasData:            hasData,
	}
}

func renderPNG(t *testing.T, p *plot.Plot) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p, "png", Width, Height))
	return buf.Bytes()
}

func TestChartsRender(t *testing.T) {
	years := []int{2020, 2021, 2022}
	series := map[string][]float64{
		"Vols":  {100, 120, 90},
		"Coups": {10, math.NaN(), 15},
	}
	ranking := []pipeline.ClassTotal{{Class: "Vols", Facts: 90}, {Class: "Coups", Facts: 15}}
	points := []pipeline.ScatterPoint{
		{Department: "01", Year: 2022, Class: "Vols", Facts: 90, Rate: 1.5},
		{Department: "75", Year: 2022, Class: "Vols", Facts: 900, Rate: 4.2},
		{Department: "75", Year: 2022, Class: "Coups", Facts: 15, Rate: math.NaN()},
	}
	regions := []pipeline.Region{
		region("01", 0, 0, 90, true),
		region("75", 1, 0, 900, true),
		region("2A", 0, 1, 0, false),
	}

	build := map[string]func() (*plot.Plot, error){
		"line":    func() (*plot.Plot, error) { return Line(years, series) },
		"bars":    func() (*plot.Plot, error) { return StackedBars(years, series) },
		"scatter": func() (*plot.Plot, error) { return Scatter(points) },
		"pie":     func() (*plot.Plot, error) { return Pie("01", 2022, ranking) },
		"ranking": func() (*plot.Plot, error) { return Ranking("01", ranking) },
		"density": func() (*plot.Plot, error) { return DensityMap(regions) },
	}
	for name, fn := range build {
		t.Run(name, func(t *testing.T) {
			p, err := fn()
			require.NoError(t, err)
			out := renderPNG(t, p)
			assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG")), "not a PNG")
		})
	}
}

func TestChartsNoData(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*plot.Plot, error)
	}{
		{"line", func() (*plot.Plot, error) { return Line(nil, nil) }},
		{"bars", func() (*plot.Plot, error) { return StackedBars([]int{2022}, nil) }},
		{"scatter without rates", func() (*plot.Plot, error) {
			return Scatter([]pipeline.ScatterPoint{{Class: "Vols", Facts: 3, Rate: math.NaN()}})
		}},
		{"pie of zeros", func() (*plot.Plot, error) {
			return Pie("01", 2022, []pipeline.ClassTotal{{Class: "Vols"}})
		}},
		{"ranking", func() (*plot.Plot, error) { return Ranking("01", nil) }},
		{"density", func() (*plot.Plot, error) { return DensityMap(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	p, err := Ranking("01", []pipeline.ClassTotal{{Class: "Vols", Facts: 1}})
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, p, "bmp", Width, Height))
}

func TestNewPlotStripsDashes(t *testing.T) {
	p := newPlot("Ain — 2022 – total")
	assert.Equal(t, "Ain - 2022 - total", p.Title.Text)
}

func TestDensityColor(t *testing.T) {
	pal, err := brewer.GetPalette(brewer.TypeSequential, "OrRd", 9)
	require.NoError(t, err)
	m := newDensityMap([]pipeline.Region{
		region("01", 0, 0, 0, true),
		region("02", 1, 0, 50, true),
		region("03", 2, 0, 100, true),
		region("04", 3, 0, 0, false),
	}, pal.Colors())
	assert.Equal(t, 100, m.max)
	assert.Equal(t, m.colors[0], m.color(m.regions[0]))
	assert.Equal(t, m.colors[len(m.colors)-1], m.color(m.regions[2]))
	assert.Equal(t, noDataColor, m.color(m.regions[3]))

	xmin, xmax, ymin, ymax := m.DataRange()
	assert.Equal(t, []float64{0, 4, 0, 1}, []float64{xmin, xmax, ymin, ymax})
}

func TestDensityMapLeavesHolesEmpty(t *testing.T) {
	withHole := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{0, 0}, {0, 4}, {4, 4}, {4, 0}, {0, 0}},
		{{0.5, 0.5}, {1.5, 0.5}, {1.5, 1.5}, {0.5, 1.5}, {0.5, 0.5}},
	})
	red := color.RGBA{R: 255, A: 255}
	m := newDensityMap([]pipeline.Region{{
		DepartmentGeometry: dataset.DepartmentGeometry{Code: "75", Geometry: withHole},
		Facts:              1,
		HasData:            true,
	}}, []color.Color{red})

	p := plot.New()
	p.X.Min, p.X.Max = 0, 4
	p.Y.Min, p.Y.Max = 0, 4
	img := vgimg.NewWith(vgimg.UseWH(100, 100), vgimg.UseDPI(72))
	m.Plot(draw.New(img), p)

	// at reads the pixel under a data coordinate; image rows grow downwards.
	at := func(x, y float64) color.RGBA {
		r, g, b, a := img.Image().At(int(x*25), 100-int(y*25)).RGBA()
		return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
	assert.Equal(t, red, at(3, 3), "shell filled")
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, at(1, 1), "hole left empty")
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in     int
		digits string
	}{
		{0, "0"},
		{999, "999"},
		{1204, "1204"},
		{1234567, "1234567"},
	}
	for _, tt := range tests {
		got := FormatCount(tt.in)
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, got)
		if digits != tt.digits {
			t.Errorf("FormatCount(%d) = %q, want digits %q", tt.in, got, tt.digits)
		}
	}
	assert.Greater(t, len(FormatCount(1234567)), len("1234567"), "expected digit grouping")
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "- -", FormatRate(math.NaN()))
	assert.Contains(t, FormatRate(7.6), ",")
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{12000, "12k"},
		{1500000, "1.5M"},
	}
	for _, tt := range tests {
		if got := formatCompact(tt.in); got != tt.want {
			t.Errorf("formatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestYearTicksThinLabels(t *testing.T) {
	var years yearTicks
	for y := 2000; y < 2025; y++ {
		years = append(years, y)
	}
	ticks := years.Ticks(2000, 2024)
	require.Len(t, ticks, 25)
	labelled := 0
	for _, tk := range ticks {
		if tk.Label != "" {
			labelled++
		}
	}
	assert.LessOrEqual(t, labelled, 13)
	assert.Equal(t, "2000", ticks[0].Label)
}
