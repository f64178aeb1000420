// Package charts renders the dashboard views as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/storm-dashboard/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a view has nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Renderer draws charts at a fixed pixel size.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a Renderer for width x height images.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Class draws the storm-by-class pie chart.
func (r *Renderer) Class(w io.Writer, counts []domain.ClassCount) error {
	values := make([]gochart.Value, 0, len(counts))
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, gochart.Value{Label: c.Type, Value: float64(c.Count)})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	donut := gochart.DonutChart{
		Title:  "Storm by Class",
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	if err := donut.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render class chart: %w", err)
	}
	return nil
}

// Monthly draws one line per storm type across the twelve months.
func (r *Renderer) Monthly(w io.Writer, series []domain.MonthlySeries) error {
	if len(series) == 0 {
		return ErrNoData
	}

	xs, ticks := monthTicks()

	peak := 0
	lines := make([]gochart.Series, 0, len(series))
	for _, s := range series {
		ys := make([]float64, 0, len(s.Months))
		for _, m := range s.Months {
			ys = append(ys, float64(m.Count))
			peak = max(peak, m.Count)
		}
		lines = append(lines, gochart.ContinuousSeries{
			Name:    s.Type,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeWidth: 2, DotWidth: 3},
		})
	}

	// Fixed range so a flat series still has a non-zero span.
	yRange := &gochart.ContinuousRange{Min: 0, Max: float64(peak + 1)}

	graph := gochart.Chart{
		Title:      "Storm Count by Type per Month",
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      gochart.XAxis{Ticks: ticks},
		YAxis:      gochart.YAxis{Name: "Observations", Range: yRange},
		Series:     lines,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render monthly chart: %w", err)
	}
	return nil
}

// Pressure draws one box per storm type. Missing readings are skipped and
// types with no valid reading are left out.
func (r *Renderer) Pressure(w io.Writer, series []domain.PressureSeries) error {
	p := plot.New()
	p.Title.Text = "Storm Pressure per Class"
	p.Y.Label.Text = "Pressure (mb)"

	var names []string
	for _, s := range series {
		values := domain.ValidValues(s.Values)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(len(names)), plotter.Values(values))
		if err != nil {
			return fmt.Errorf("box plot %s: %w", s.Type, err)
		}
		p.Add(box)
		names = append(names, s.Type)
	}
	if len(names) == 0 {
		return ErrNoData
	}
	p.NominalX(names...)

	return r.writePlot(w, p, "pressure")
}

// Map draws each storm track as a line through its fixes, longitude on X and
// latitude on Y, joined in recorded order.
func (r *Renderer) Map(w io.Writer, tracks []domain.StormTrack) error {
	p := plot.New()
	p.Title.Text = "Storm Tracks"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Legend.Top = true

	drawn := 0
	for i, t := range tracks {
		n := min(len(t.Lat), len(t.Lon))
		if n == 0 {
			continue
		}
		pts := make(plotter.XYs, n)
		for j := range pts {
			pts[j].X = t.Lon[j]
			pts[j].Y = t.Lat[j]
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("track %s: %w", t.Name, err)
		}
		c := plotutil.Color(i)
		line.Color = c
		points.Color = c
		points.Shape = draw.CircleGlyph{}

		p.Add(line, points)
		p.Legend.Add(t.Name, line, points)
		drawn++
	}
	if drawn == 0 {
		return ErrNoData
	}

	return r.writePlot(w, p, "map")
}

func (r *Renderer) writePlot(w io.Writer, p *plot.Plot, name string) error {
	wt, err := p.WriterTo(pixels(r.width), pixels(r.height), "png")
	if err != nil {
		return fmt.Errorf("render %s chart: %w", name, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s chart: %w", name, err)
	}
	return nil
}

// monthTicks returns the x positions 1..12 labelled with full month names.
func monthTicks() ([]float64, []gochart.Tick) {
	names := domain.MonthNames()
	xs := make([]float64, len(names))
	ticks := make([]gochart.Tick, len(names))
	for i, name := range names {
		xs[i] = float64(i + 1)
		ticks[i] = gochart.Tick{Value: xs[i], Label: name}
	}
	return xs, ticks
}

// pixels converts a pixel count to plot length at the 96 DPI used for PNG output.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}
