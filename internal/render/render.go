// Package render rasterizes styled segments and colored samples with
// gonum/plot and encodes the result for HTTP transport.
package render

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// Bounds fixes the visible data range of both axes
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Valid reports whether both ranges are non-empty
func (b Bounds) Valid() bool {
	return b.XMax > b.XMin && b.YMax > b.YMin
}

// Options are the chart-level settings shared by every renderer
type Options struct {
	Width    vg.Length
	Height   vg.Length
	Title    string
	XLabel   string
	YLabel   string
	HideAxes bool
	// Bounds is nil to auto-fit the axes to the data
	Bounds *Bounds
	// LineWidth is used for segments without their own width
	LineWidth vg.Length
}

// DefaultOptions is a 640x480 pixel chart with visible axes
func DefaultOptions() Options {
	return Options{
		Width:     Pixels(640),
		Height:    Pixels(480),
		LineWidth: vg.Points(1.5),
	}
}

// Pixels converts a pixel count at the rasterizer's DPI to a length
func Pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / vgimg.DefaultDPI
}

func newPlot(opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	if opts.HideAxes {
		p.HideAxes()
	}
	return p
}

// finish applies fixed bounds (if any) after the plotters have widened the
// axes and encodes the plot as PNG.
func finish(p *plot.Plot, opts Options) ([]byte, error) {
	if opts.Bounds != nil {
		if !opts.Bounds.Valid() {
			return nil, fmt.Errorf("invalid axis bounds %+v", *opts.Bounds)
		}
		p.X.Min, p.X.Max = opts.Bounds.XMin, opts.Bounds.XMax
		p.Y.Min, p.Y.Max = opts.Bounds.YMin, opts.Bounds.YMax
	}

	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		def := DefaultOptions()
		w, h = def.Width, def.Height
	}

	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("error creating PNG writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("error encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
