// Package telemetry holds the track data model shared by the loaders, the
// styling pipeline and the comparison pipeline.
package telemetry

import (
	"fmt"
	"math"
)

// Schema identifies which coordinate columns a track was loaded from
type Schema int

const (
	SchemaUnknown Schema = iota
	// SchemaPlanar tracks carry xPos/yPos in meters
	SchemaPlanar
	// SchemaGeodetic tracks carry Latitude/Longitude in degrees. X holds the
	// longitude and Y the latitude so the chart reads like a map.
	SchemaGeodetic
)

func (s Schema) String() string {
	switch s {
	case SchemaPlanar:
		return "planar"
	case SchemaGeodetic:
		return "geodetic"
	default:
		return "unknown"
	}
}

// Point is a coordinate pair in chart space
type Point struct {
	X float64
	Y float64
}

// Sample is one telemetry reading in capture order
type Sample struct {
	X        float64
	Y        float64
	Distance float64
}

// Point returns the coordinate pair of the sample
func (s Sample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// Track is one run's ordered samples. Samples must not be modified once the
// track has been handed out by a loader.
type Track struct {
	Name        string
	Schema      Schema
	HasDistance bool
	Samples     []Sample
}

// Len returns the number of samples in the track
func (t Track) Len() int {
	return len(t.Samples)
}

// Points returns the coordinate sequence of the track
func (t Track) Points() []Point {
	pts := make([]Point, len(t.Samples))
	for i, s := range t.Samples {
		pts[i] = s.Point()
	}
	return pts
}

// Distances returns the distanceTraveled column
func (t Track) Distances() []float64 {
	d := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		d[i] = s.Distance
	}
	return d
}

// Head returns a track holding the first n samples. The backing array is
// shared; capacity is clipped so appends can never write into the original.
func (t Track) Head(n int) Track {
	if n > len(t.Samples) {
		n = len(t.Samples)
	}
	if n < 0 {
		n = 0
	}
	t.Samples = t.Samples[:n:n]
	return t
}

// Validate checks that every coordinate (and distance, when present) is finite
func (t Track) Validate() error {
	for i, s := range t.Samples {
		if !IsFinite(s.X) {
			return &InvalidMetricError{Metric: fmt.Sprintf("%s x", t.Name), Index: i, Value: s.X}
		}
		if !IsFinite(s.Y) {
			return &InvalidMetricError{Metric: fmt.Sprintf("%s y", t.Name), Index: i, Value: s.Y}
		}
		if t.HasDistance && !IsFinite(s.Distance) {
			return &InvalidMetricError{Metric: fmt.Sprintf("%s distanceTraveled", t.Name), Index: i, Value: s.Distance}
		}
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor an infinity
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFinite returns an InvalidMetricError for the first non-finite value
func CheckFinite(metric string, values []float64) error {
	for i, v := range values {
		if !IsFinite(v) {
			return &InvalidMetricError{Metric: metric, Index: i, Value: v}
		}
	}
	return nil
}
