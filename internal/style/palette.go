package style

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of colors addressed by index
type Palette []color.RGBA

// trendHex is the 31-step green -> yellow -> red gradient used by the
// comparison walk. The order is part of the chart contract.
var trendHex = [...]string{
	"#00FF00", "#11FF00", "#22FF00", "#33FF00", "#44FF00", "#55FF00", "#66FF00", "#77FF00",
	"#88FF00", "#99FF00", "#AAFF00", "#BBFF00", "#CCFF00", "#DDFF00", "#EEFF00", "#FFFF00",
	"#FFEE00", "#FFDD00", "#FFCC00", "#FFBB00", "#FFAA00", "#FF9900", "#FF8800", "#FF7700",
	"#FF6600", "#FF5500", "#FF4400", "#FF3300", "#FF2200", "#FF1100", "#FF0000",
}

var trendPalette = mustPalette(trendHex[:])

// LeadingColor marks samples where the first track is level or ahead
var LeadingColor = color.RGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xFF}

// TrendPalette returns a copy of the 31-entry comparison gradient
func TrendPalette() Palette {
	p := make(Palette, len(trendPalette))
	copy(p, trendPalette)
	return p
}

// At returns the color at index i clamped into the palette range
func (p Palette) At(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	if i > len(p)-1 {
		i = len(p) - 1
	}
	return p[i]
}

// Named colors used by the discrete boundary contract
var (
	Red   = color.RGBA{R: 0xFF, A: 0xFF}
	Green = color.RGBA{G: 0x80, A: 0xFF}
	Blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

// ParseHex parses #RGB or #RRGGBB into an opaque RGBA
func ParseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// Hex formats a color as #rrggbb
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func mustPalette(hex []string) Palette {
	p := make(Palette, len(hex))
	for i, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			panic(err)
		}
		p[i] = c
	}
	return p
}
