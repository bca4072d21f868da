// Package style maps driving scalars to segment colors and widths.
//
// Two interchangeable strategies cover the color side: Continuous normalizes
// values against the observed range and samples a Ramp, Discrete buckets
// values between fixed boundaries. Width is independent of either.
package style

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/telemetrychart/internal/segment"
)

// Strategy maps one driving value to a color
type Strategy interface {
	Color(v float64) color.Color
}

// Style is the visual treatment of one segment or sample. A zero Width
// means "use the renderer default".
type Style struct {
	Color color.Color
	Width float64
}

// Continuous normalizes values into [0, 1] against a fixed range
type Continuous struct {
	Ramp Ramp
	Min  float64
	Max  float64
}

// NewContinuous records the range of values. An empty slice yields a
// degenerate range, which maps everything to the ramp midpoint.
func NewContinuous(ramp Ramp, values []float64) Continuous {
	c := Continuous{Ramp: ramp}
	if len(values) > 0 {
		c.Min = floats.Min(values)
		c.Max = floats.Max(values)
	}
	return c
}

// Normalize returns the position of v within [Min, Max]
func (c Continuous) Normalize(v float64) float64 {
	if c.Max == c.Min {
		return 0.5
	}
	return clamp01((v - c.Min) / (c.Max - c.Min))
}

// Color samples the ramp at the normalized position of v
func (c Continuous) Color(v float64) color.Color {
	return c.Ramp.At(c.Normalize(v))
}

// Discrete assigns the color of the half-open interval containing a value
type Discrete struct {
	Boundaries []float64
	Colors     []color.Color
}

// DefaultBoundaries and DefaultBoundaryColors form the stock boundary norm
var (
	DefaultBoundaries     = []float64{-1, -0.5, 0.5, 1}
	DefaultBoundaryColors = []color.Color{Red, Green, Blue}
)

// NewDiscrete validates that boundaries ascend strictly and that there is
// exactly one color per interval.
func NewDiscrete(boundaries []float64, colors []color.Color) (Discrete, error) {
	if len(boundaries) < 2 {
		return Discrete{}, errors.New("discrete styling needs at least two boundaries")
	}
	if len(colors) != len(boundaries)-1 {
		return Discrete{}, fmt.Errorf("discrete styling needs %d colors for %d boundaries, got %d",
			len(boundaries)-1, len(boundaries), len(colors))
	}
	for i := 1; i < len(boundaries); i++ {
		if !(boundaries[i] > boundaries[i-1]) {
			return Discrete{}, fmt.Errorf("boundaries must be strictly ascending (index %d: %v after %v)",
				i, boundaries[i], boundaries[i-1])
		}
	}
	b := make([]float64, len(boundaries))
	copy(b, boundaries)
	c := make([]color.Color, len(colors))
	copy(c, colors)
	return Discrete{Boundaries: b, Colors: c}, nil
}

// DefaultDiscrete returns the [-1, -0.5, 0.5, 1] -> red/green/blue norm
func DefaultDiscrete() Discrete {
	d, err := NewDiscrete(DefaultBoundaries, DefaultBoundaryColors)
	if err != nil {
		panic(err)
	}
	return d
}

// Bucket returns the interval index for v. Values below the first boundary
// land in 0, values at or above the last boundary in the final interval.
func (d Discrete) Bucket(v float64) int {
	// first boundary strictly greater than v, minus one, is the interval
	// whose lower bound is <= v
	k := sort.Search(len(d.Boundaries), func(i int) bool { return d.Boundaries[i] > v }) - 1
	if k < 0 {
		return 0
	}
	if k > len(d.Colors)-1 {
		return len(d.Colors) - 1
	}
	return k
}

// Color returns the color of the interval containing v
func (d Discrete) Color(v float64) color.Color {
	return d.Colors[d.Bucket(v)]
}

// Width is an affine width transform applied to a driving value
type Width struct {
	Base  float64
	Scale float64
}

// At returns Base + Scale*v
func (w Width) At(v float64) float64 {
	return w.Base + w.Scale*v
}

// Apply styles every segment in order. colorBy picks the color from each
// segment's value; widthBy, when non-nil, is evaluated against widthValues
// (one per segment) or, if widthValues is nil, the segment values.
func Apply(segments []segment.Segment, colorBy Strategy, widthBy *Width, widthValues []float64) ([]Style, error) {
	if widthBy != nil && widthValues != nil && len(widthValues) != len(segments) {
		return nil, fmt.Errorf("width values: expected %d, got %d", len(segments), len(widthValues))
	}

	styles := make([]Style, len(segments))
	for i, s := range segments {
		styles[i].Color = colorBy.Color(s.Value)
		if widthBy != nil {
			v := s.Value
			if widthValues != nil {
				v = widthValues[i]
			}
			styles[i].Width = widthBy.At(v)
		}
	}
	return styles, nil
}

// Fixed is a Strategy that ignores the value
type Fixed struct {
	C color.Color
}

func (f Fixed) Color(float64) color.Color {
	return f.C
}
