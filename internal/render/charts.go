package render

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/telemetrychart/internal/segment"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// ErrNoGeometry is returned when there is nothing to draw
var ErrNoGeometry = errors.New("nothing to render")

// Segments renders a styled segment collection. styles must be parallel to
// segments.
func Segments(segments []segment.Segment, styles []style.Style, opts Options) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrNoGeometry
	}
	if len(styles) != len(segments) {
		return nil, fmt.Errorf("got %d styles for %d segments", len(styles), len(segments))
	}

	width := opts.LineWidth
	if width <= 0 {
		width = DefaultOptions().LineWidth
	}

	p := newPlot(opts)
	p.Add(&SegmentCollection{Segments: segments, Styles: styles, DefaultWidth: width})
	return finish(p, opts)
}

// Line renders a plain polyline
func Line(points []telemetry.Point, c color.Color, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoGeometry
	}

	l, err := plotter.NewLine(toXYs(points))
	if err != nil {
		return nil, fmt.Errorf("error building line: %w", err)
	}
	l.Color = c
	if opts.LineWidth > 0 {
		l.Width = opts.LineWidth
	}

	p := newPlot(opts)
	p.Add(l)
	return finish(p, opts)
}

// Comparison is a colored track drawn over an optional reference path
type Comparison struct {
	Points    []telemetry.Point
	Colors    []color.Color
	Reference []telemetry.Point
}

var referenceColor = color.RGBA{R: 0xA0, G: 0xA0, B: 0xA0, A: 0xFF}

// Compare renders the samples of the first track colored per sample, with
// the second track underneath as a thin grey line.
func Compare(cmp Comparison, opts Options) ([]byte, error) {
	if len(cmp.Points) == 0 {
		return nil, ErrNoGeometry
	}
	if len(cmp.Colors) != len(cmp.Points) {
		return nil, fmt.Errorf("got %d colors for %d points", len(cmp.Colors), len(cmp.Points))
	}

	p := newPlot(opts)
	if len(cmp.Reference) > 0 {
		ref, err := plotter.NewLine(toXYs(cmp.Reference))
		if err != nil {
			return nil, fmt.Errorf("error building reference line: %w", err)
		}
		ref.Color = referenceColor
		ref.Width = vg.Points(1)
		p.Add(ref)
	}
	p.Add(&ColoredPoints{Points: cmp.Points, Colors: cmp.Colors, Radius: vg.Points(2.5)})
	return finish(p, opts)
}
