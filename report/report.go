// Package report writes the whole dashboard as a multi-page PDF: a summary
// table with per-class trends, then one page per chart.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/delinquance/chart"
	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/pipeline"
	"github.com/zalepa/delinquance/session"
)

const (
	pageWidth  = 11 * vg.Inch
	pageHeight = 8.5 * vg.Inch
	margin     = 0.6 * vg.Inch

	rowHeight     = 0.30 * vg.Inch
	nameColWidth  = 3.8 * vg.Inch
	valueColWidth = 1.2 * vg.Inch
)

var chartBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// Options chooses what the report covers. Zero values mean every class, the
// latest year and no department pages. Years widens the scatter chart beyond
// Year.
type Options struct {
	Classes    []string
	Year       int
	Years      []int
	Department string
}

// Selection turns the options into the selection the views are built from.
func (o Options) Selection(d *dashboard.Dashboard) *session.Selection {
	sel := session.New()
	if len(o.Classes) > 0 {
		sel.SelectClasses(o.Classes)
	} else {
		sel.SelectClasses(d.Home().Classes)
	}
	year := o.Year
	if year == 0 {
		if years := d.Home().Years; len(years) > 0 {
			year = years[len(years)-1]
		}
	}
	sel.SelectYear(year)
	sel.SelectYears(o.Years)
	sel.SelectDepartment(o.Department)
	return sel
}

// Write renders the report to w and returns the number of pages. Charts with
// nothing to show get a page carrying the reason instead.
func Write(w io.Writer, d *dashboard.Dashboard, opts Options) (int, error) {
	sel := opts.Selection(d)
	temporal := d.Temporal(sel)

	c := vgpdf.New(pageWidth, pageHeight)
	pages := drawSummaryPages(c, temporal)

	type page struct {
		build func() (*plot.Plot, error)
		empty string
	}
	charts := []page{
		{func() (*plot.Plot, error) { return chart.Line(temporal.SeriesYears, temporal.Series) }, temporal.Message},
		{func() (*plot.Plot, error) { return chart.StackedBars(temporal.SeriesYears, temporal.Series) }, temporal.Message},
		{func() (*plot.Plot, error) { return chart.Scatter(temporal.Scatter) }, temporal.ScatterMessage},
		{func() (*plot.Plot, error) { return chart.DensityMap(d.DensityRegions()) }, ""},
	}
	if sel.HasDepartment() {
		terr := d.Territorial(sel)
		label := terr.DepartmentLabel()
		charts = append(charts,
			page{func() (*plot.Plot, error) { return chart.Pie(label, terr.Year, terr.Breakdown) }, terr.Message},
			page{func() (*plot.Plot, error) { return chart.Ranking(label, terr.Ranking) }, terr.Message},
		)
	}

	for _, pg := range charts {
		c.NextPage()
		pages++
		p, err := pg.build()
		if errors.Is(err, chart.ErrNoData) {
			msg := pg.empty
			if msg == "" {
				msg = err.Error()
			}
			drawMessagePage(c, msg)
			continue
		}
		if err != nil {
			return 0, err
		}
		area := draw.Crop(draw.New(c), margin, -margin, margin, -margin)
		p.Draw(area)
	}

	if _, err := c.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return pages, nil
}

// WriteFile renders the report to path.
func WriteFile(path string, d *dashboard.Dashboard, opts Options) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	pages, err := Write(f, d, opts)
	if err != nil {
		f.Close()
		return 0, err
	}
	return pages, f.Close()
}

// drawSummaryPages lists the selected classes with their latest yearly total
// and a trend line, continuing on new pages as needed.
func drawSummaryPages(c *vgpdf.Canvas, v dashboard.TemporalView) int {
	const title = "Crimes et délits enregistrés par département"
	usableW := pageWidth - 2*margin
	sparkColWidth := usableW - nameColWidth - valueColWidth

	years := v.SeriesYears
	subtitle := v.Message
	if subtitle == "" && len(years) > 0 {
		subtitle = fmt.Sprintf("%d à %d (%d années)", years[0], years[len(years)-1], len(years))
	}

	var names []string
	for _, class := range v.Selected.Classes {
		if _, ok := v.Series[class]; ok {
			names = append(names, class)
		}
	}

	pages := 0
	i := 0
	for pages == 0 || i < len(names) {
		if pages > 0 {
			c.NextPage()
		}
		pages++

		area := draw.Crop(draw.New(c), margin, -margin, margin, -margin)
		yTop := area.Max.Y
		if pages == 1 {
			fillText(area, title, vg.Points(16), area.Min.X, yTop-vg.Points(16), color.Black)
			fillText(area, subtitle, vg.Points(10), area.Min.X, yTop-0.4*vg.Inch, color.Gray{Y: 100})
			yTop -= 0.7 * vg.Inch
		} else {
			fillText(area, title+" (suite)", vg.Points(10), area.Min.X, yTop-vg.Points(10), color.Gray{Y: 100})
			yTop -= 0.35 * vg.Inch
		}

		fillText(area, "Classe", vg.Points(10), area.Min.X, yTop, color.Gray{Y: 80})
		fillText(area, "Dernier total", vg.Points(10), area.Min.X+nameColWidth, yTop, color.Gray{Y: 80})
		fillText(area, "Tendance", vg.Points(10), area.Min.X+nameColWidth+valueColWidth, yTop, color.Gray{Y: 80})
		sepY := yTop - vg.Points(6)
		strokeHLine(area, area.Min.X, area.Min.X+usableW, sepY, color.Gray{Y: 180})
		yTop = sepY - vg.Points(4)

		rows := int((yTop - area.Min.Y) / rowHeight)
		for drawn := 0; drawn < rows && i < len(names); drawn++ {
			name := names[i]
			vals := v.Series[name]
			i++

			y := yTop - vg.Length(drawn)*rowHeight - rowHeight*0.65
			fillText(area, name, vg.Points(9), area.Min.X, y, color.Black)
			latest := "- -"
			if last := pipeline.LastValue(vals); !math.IsNaN(last) {
				latest = chart.FormatCount(int(last))
			}
			fillText(area, latest, vg.Points(9), area.Min.X+nameColWidth, y, color.Black)

			sparkX := area.Min.X + nameColWidth + valueColWidth
			sparkY := yTop - vg.Length(drawn+1)*rowHeight + vg.Points(2)
			drawSparkline(draw.Canvas{
				Canvas: area.Canvas,
				Rectangle: vg.Rectangle{
					Min: vg.Point{X: sparkX, Y: sparkY},
					Max: vg.Point{X: sparkX + sparkColWidth, Y: sparkY + rowHeight - vg.Points(3)},
				},
			}, vals)
		}
	}
	return pages
}

func drawMessagePage(c *vgpdf.Canvas, msg string) {
	area := draw.Crop(draw.New(c), margin, -margin, margin, -margin)
	fillText(area, msg, vg.Points(12), area.Min.X, area.Max.Y-vg.Points(12), color.Gray{Y: 80})
}

func drawSparkline(c draw.Canvas, vals []float64) {
	var pts plotter.XYs
	for i, v := range vals {
		if !math.IsNaN(v) {
			pts = append(pts, plotter.XY{X: float64(i), Y: v})
		}
	}
	if len(pts) < 2 {
		return
	}

	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = color.Transparent

	line, err := plotter.NewLine(pts)
	if err != nil {
		return
	}
	line.Color = chartBlue
	line.Width = vg.Points(1.5)
	p.Add(line)

	p.X.Min = 0
	p.X.Max = float64(len(vals) - 1)
	minY, maxY := pts[0].Y, pts[0].Y
	for _, pt := range pts {
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	pad := (maxY - minY) * 0.1
	if pad == 0 {
		pad = 1
	}
	p.Y.Min = minY - pad
	p.Y.Max = maxY + pad

	p.Draw(c)
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}
