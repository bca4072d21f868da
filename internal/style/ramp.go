package style

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Ramp is a continuous color function over [0, 1]
type Ramp interface {
	At(t float64) color.Color
}

// GradientTable is a ramp defined by sorted keypoints blended in HCL space
type GradientTable []struct {
	Col colorful.Color
	Pos float64
}

// At returns the HCL blend of the two keypoints around t
func (g GradientTable) At(t float64) color.Color {
	t = clamp01(t)
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			local := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, local).Clamped()
		}
	}
	return g[len(g)-1].Col
}

// colorMapRamp adapts a gonum/plot ColorMap to the Ramp interface
type colorMapRamp struct {
	cm palette.ColorMap
}

func newColorMapRamp(cm palette.ColorMap) colorMapRamp {
	cm.SetMax(1)
	cm.SetMin(0)
	return colorMapRamp{cm: cm}
}

func (r colorMapRamp) At(t float64) color.Color {
	c, err := r.cm.At(clamp01(t))
	if err != nil {
		// Only reachable for NaN, which callers reject before styling.
		return color.Black
	}
	return c
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("mustHex: " + err.Error())
	}
	return c
}

var viridis = GradientTable{
	{mustHex("#440154"), 0.0},
	{mustHex("#482878"), 0.125},
	{mustHex("#3e4a89"), 0.25},
	{mustHex("#31688e"), 0.375},
	{mustHex("#26828e"), 0.5},
	{mustHex("#1f9e89"), 0.625},
	{mustHex("#35b779"), 0.75},
	{mustHex("#6ece58"), 0.875},
	{mustHex("#fde725"), 1.0},
}

var rdylgn = GradientTable{
	{mustHex("#a50026"), 0.0},
	{mustHex("#d73027"), 0.1},
	{mustHex("#f46d43"), 0.2},
	{mustHex("#fdae61"), 0.3},
	{mustHex("#fee08b"), 0.4},
	{mustHex("#ffffbf"), 0.5},
	{mustHex("#d9ef8b"), 0.6},
	{mustHex("#a6d96a"), 0.7},
	{mustHex("#66bd63"), 0.8},
	{mustHex("#1a9850"), 0.9},
	{mustHex("#006837"), 1.0},
}

// DefaultRamp is the ramp used when a request does not name one
const DefaultRamp = "viridis"

var ramps = map[string]func() Ramp{
	"viridis":       func() Ramp { return viridis },
	"rdylgn":        func() Ramp { return rdylgn },
	"kindlmann":     func() Ramp { return newColorMapRamp(moreland.Kindlmann()) },
	"smoothbluered": func() Ramp { return newColorMapRamp(moreland.SmoothBlueRed()) },
	"blackbody":     func() Ramp { return newColorMapRamp(moreland.BlackBody()) },
}

// RampByName returns one of the fixed continuous ramps. An empty name
// selects DefaultRamp.
func RampByName(name string) (Ramp, error) {
	if name == "" {
		name = DefaultRamp
	}
	mk, ok := ramps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown color ramp %q (available: %s)", name, strings.Join(RampNames(), ", "))
	}
	return mk(), nil
}

// RampNames lists the available ramps in sorted order
func RampNames() []string {
	names := make([]string, 0, len(ramps))
	for name := range ramps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
