// Package chart renders the dashboard views with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("aucune donnée disponible")

// Default output size for the web dashboard.
const (
	Width  = 8 * vg.Inch
	Height = 4.5 * vg.Inch
)

// Render writes p to w in the given format (png, svg or pdf).
func Render(w io.Writer, p *plot.Plot, format string, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	// The Liberation fonts embedded by gonum/plot lack the em dash glyph.
	title = strings.ReplaceAll(title, "—", "-")
	title = strings.ReplaceAll(title, "–", "-")
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	return p
}

// classColor is the i-th color of the default palette. Charts pass the
// position of the class in their own list.
func classColor(i int) color.Color {
	return plotutil.Color(i)
}

// yearTicks labels integer years, thinning labels when there are many.
type yearTicks []int

func (yt yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	n := len(yt)
	if n == 0 {
		return ticks
	}
	step := 1
	if n > 12 {
		step = (n + 11) / 12
	}
	for i, y := range yt {
		t := plot.Tick{Value: float64(y)}
		if i%step == 0 {
			t.Label = fmt.Sprint(y)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// countTicks shortens the default tick labels of count axes.
type countTicks struct{}

func (countTicks) Ticks(min, max float64) []plot.Tick {
	t := plot.DefaultTicks{}
	ticks := t.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}

func fillText(c draw.Canvas, txt string, size vg.Length, pt vg.Point, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}
	sty.Font.Size = size
	c.FillText(sty, pt, txt)
}

// swatch is a legend thumbnail filled with one color.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
