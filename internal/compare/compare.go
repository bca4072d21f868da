// Package compare aligns two runs, computes the running distance gap between
// them and colors each sample by how that gap is trending.
package compare

import (
	"fmt"
	"image/color"

	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// Align truncates the longer track so both have the same length, keeping the
// leading samples of each. Both runs are assumed to start at the same event;
// no time-based resampling is attempted.
func Align(a, b telemetry.Track) (telemetry.Track, telemetry.Track, error) {
	diff := a.Len() - b.Len()
	switch {
	case diff > 0:
		a = a.Head(a.Len() - diff)
	case diff < 0:
		b = b.Head(b.Len() + diff)
	}

	if a.Len() == 0 {
		return a, b, &telemetry.EmptyTrackError{Track: a.Name}
	}
	if b.Len() == 0 {
		return a, b, &telemetry.EmptyTrackError{Track: b.Name}
	}
	return a, b, nil
}

// Deltas returns a.distance[i] - b.distance[i] for two aligned tracks
func Deltas(a, b telemetry.Track) ([]float64, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("tracks are not aligned: %d vs %d samples", a.Len(), b.Len())
	}
	for _, t := range []telemetry.Track{a, b} {
		if !t.HasDistance {
			return nil, &telemetry.UnrecognizedSchemaError{Source: t.Name, Missing: "distanceTraveled"}
		}
	}

	deltas := make([]float64, a.Len())
	for i := range deltas {
		deltas[i] = a.Samples[i].Distance - b.Samples[i].Distance
	}
	if err := telemetry.CheckFinite("distance delta", deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// LeadingIndex marks samples that received the leading color instead of a
// palette entry.
const LeadingIndex = -1

// Assignment is the per-sample output of Walk
type Assignment struct {
	Colors []color.Color
	// Indices holds the palette index used for each sample, or LeadingIndex
	Indices []int
}

// Len returns the number of assigned samples
func (a Assignment) Len() int {
	return len(a.Colors)
}

// walkState is the carried state of the trend fold
type walkState struct {
	index    int
	previous float64
}

// step consumes one delta and returns the palette index to use, or
// LeadingIndex. previous always advances to the current delta.
func (s walkState) step(delta float64, paletteLen int) (walkState, int) {
	idx := LeadingIndex
	switch {
	case delta >= 0:
		// level or ahead; the trailing index is held for later
	case delta < s.previous:
		// falling further behind
		if s.index < paletteLen-1 {
			s.index++
		}
		idx = s.index
	default:
		if s.index > 0 {
			s.index--
		}
		idx = s.index
	}
	s.previous = delta
	return s, idx
}

// Walk assigns one color per delta. While the first track trails (delta < 0)
// the palette index climbs one step each time the gap widens and falls one
// step each time it narrows or holds, clamped to the palette. Non-negative
// deltas get the leading color and leave the index untouched.
//
// The first sample is compared with itself, so a negative first delta counts
// as "not widening".
func Walk(deltas []float64, palette style.Palette, leading color.Color) Assignment {
	out := Assignment{
		Colors:  make([]color.Color, len(deltas)),
		Indices: make([]int, len(deltas)),
	}
	if len(deltas) == 0 || len(palette) == 0 {
		for i := range deltas {
			out.Colors[i] = leading
			out.Indices[i] = LeadingIndex
		}
		return out
	}

	state := walkState{previous: deltas[0]}
	for k, d := range deltas {
		var idx int
		state, idx = state.step(d, len(palette))
		out.Indices[k] = idx
		if idx == LeadingIndex {
			out.Colors[k] = leading
		} else {
			out.Colors[k] = palette[idx]
		}
	}
	return out
}

// Result bundles everything a comparison chart or the delta API needs
type Result struct {
	A          telemetry.Track
	B          telemetry.Track
	Deltas     []float64
	Assignment Assignment
	Summary    Summary
}

// Run aligns a and b, derives the delta series and walks the trend palette
func Run(a, b telemetry.Track, palette style.Palette, leading color.Color) (Result, error) {
	a, b, err := Align(a, b)
	if err != nil {
		return Result{}, err
	}
	deltas, err := Deltas(a, b)
	if err != nil {
		return Result{}, err
	}
	assignment := Walk(deltas, palette, leading)
	return Result{
		A:          a,
		B:          b,
		Deltas:     deltas,
		Assignment: assignment,
		Summary:    Summarize(deltas, assignment),
	}, nil
}
