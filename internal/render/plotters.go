package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/chrissnell/telemetrychart/internal/segment"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// SegmentCollection strokes every segment with its own color and width
type SegmentCollection struct {
	Segments     []segment.Segment
	Styles       []style.Style
	DefaultWidth vg.Length
}

// Plot implements plot.Plotter
func (sc *SegmentCollection) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	for i, s := range sc.Segments {
		ls := draw.LineStyle{Color: color.Black, Width: sc.DefaultWidth}
		if i < len(sc.Styles) {
			st := sc.Styles[i]
			if st.Color != nil {
				ls.Color = st.Color
			}
			// non-positive widths fall back to the default
			if st.Width > 0 {
				ls.Width = vg.Points(st.Width)
			}
		}

		line := []vg.Point{
			{X: trX(s.From.X), Y: trY(s.From.Y)},
			{X: trX(s.To.X), Y: trY(s.To.Y)},
		}
		c.StrokeLines(ls, c.ClipLinesXY(line)...)
	}
}

// DataRange implements plot.DataRanger
func (sc *SegmentCollection) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, s := range sc.Segments {
		for _, p := range []telemetry.Point{s.From, s.To} {
			xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
			ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		}
	}
	return xmin, xmax, ymin, ymax
}

// ColoredPoints draws one glyph per point in its assigned color
type ColoredPoints struct {
	Points []telemetry.Point
	Colors []color.Color
	Radius vg.Length
}

// Plot implements plot.Plotter
func (cp *ColoredPoints) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, p := range cp.Points {
		pt := vg.Point{X: trX(p.X), Y: trY(p.Y)}
		if !c.Contains(pt) {
			continue
		}
		col := color.Color(color.Black)
		if i < len(cp.Colors) && cp.Colors[i] != nil {
			col = cp.Colors[i]
		}
		c.DrawGlyph(draw.GlyphStyle{Color: col, Radius: cp.Radius, Shape: draw.CircleGlyph{}}, pt)
	}
}

// DataRange implements plot.DataRanger
func (cp *ColoredPoints) DataRange() (xmin, xmax, ymin, ymax float64) {
	return plotter.XYRange(toXYs(cp.Points))
}

func toXYs(points []telemetry.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}
