package templog

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 5 * vg.Inch
	plotDPI    = 300
	// Beyond this many samples only every n-th tick gets a label.
	maxTickLabels = 24
)

var (
	figureBackground = color.RGBA{R: 0xd0, G: 0xe0, B: 0xff, A: 0xff}
	areaBackground   = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
)

// areaFill paints the data area of a plot.
type areaFill struct {
	color color.Color
}

func (a areaFill) Plot(c draw.Canvas, _ *plot.Plot) {
	c.FillPolygon(a.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Max.Y},
	})
}

type seriesLine struct {
	label  string
	values []float64
	glyph  draw.GlyphDrawer
}

// NewPlot lays out the four series of a session against their timestamps.
func NewPlot(series Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sensor Data Over Time"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Sensor Values"
	p.BackgroundColor = figureBackground
	p.Legend.Top = true
	p.Add(areaFill{color: areaBackground}, plotter.NewGrid())

	n := series.Len()
	if n == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		return p, nil
	}

	lines := []seriesLine{
		{label: "TempRad", values: series.Radiator, glyph: draw.CircleGlyph{}},
		{label: "Infrared Sensor", values: series.Infrared, glyph: draw.BoxGlyph{}},
		{label: "TempAir", values: series.Air, glyph: draw.CircleGlyph{}},
		{label: "Correction", values: series.Correction, glyph: draw.CircleGlyph{}},
	}
	for i, l := range lines {
		pts := make(plotter.XYs, n)
		for j, v := range l.values {
			pts[j].X = float64(j)
			pts[j].Y = v
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to plot %s: %w", l.label, err)
		}
		c := plotutil.Color(i)
		line.Color = c
		points.Color = c
		points.Shape = l.glyph
		p.Add(line, points)
		p.Legend.Add(l.label, line, points)
	}

	p.X.Tick.Marker = timeTicks(series)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	return p, nil
}

// timeTicks labels sample indices with their HH:MM:SS timestamps.
func timeTicks(series Series) plot.ConstantTicks {
	n := series.Len()
	step := 1
	if n > maxTickLabels {
		step = (n + maxTickLabels - 1) / maxTickLabels
	}
	ticks := make(plot.ConstantTicks, n)
	for i, t := range series.Times {
		ticks[i].Value = float64(i)
		if i%step == 0 {
			ticks[i].Label = t.Format(TimeLayout)
		}
	}
	return ticks
}

// RenderPlot writes the plot of series to path as a PNG.
func RenderPlot(path string, series Series) error {
	p, err := NewPlot(series)
	if err != nil {
		return err
	}
	c := vgimg.NewWith(
		vgimg.UseWH(plotWidth, plotHeight),
		vgimg.UseDPI(plotDPI),
		vgimg.UseBackgroundColor(figureBackground),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
