// Package segment turns an ordered point sequence into the per-segment
// geometry the styled renderers draw.
package segment

import (
	"errors"
	"fmt"

	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// ErrValueCount is returned when the driving values are neither one per
// point nor one per segment.
var ErrValueCount = errors.New("driving values must have one entry per point or per segment")

// Segment is the line between two consecutive points of one track
type Segment struct {
	From  telemetry.Point
	To    telemetry.Point
	Value float64
}

// Build returns len(points)-1 segments; segments[i] joins points[i] and
// points[i+1] and carries values[i]. values may hold N or N-1 entries; with N
// entries the trailing value is unused.
func Build(points []telemetry.Point, values []float64) ([]Segment, error) {
	n := len(points)
	if n < 2 {
		return nil, &telemetry.InsufficientDataError{Need: 2, Got: n}
	}
	if len(values) != n && len(values) != n-1 {
		return nil, fmt.Errorf("%w: %d points, %d values", ErrValueCount, n, len(values))
	}
	if err := telemetry.CheckFinite("driving value", values[:n-1]); err != nil {
		return nil, err
	}

	segments := make([]Segment, n-1)
	for i := range segments {
		segments[i] = Segment{
			From:  points[i],
			To:    points[i+1],
			Value: values[i],
		}
	}
	return segments, nil
}

// Values returns the driving value of every segment, in order
func Values(segments []Segment) []float64 {
	v := make([]float64, len(segments))
	for i, s := range segments {
		v[i] = s.Value
	}
	return v
}

// MidpointDerivative evaluates f at the x-midpoint of every consecutive pair
func MidpointDerivative(points []telemetry.Point, f func(float64) float64) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, len(points)-1)
	for i := range out {
		out[i] = f((points[i].X + points[i+1].X) / 2)
	}
	return out
}

// IndexWidthBasis returns the leading x of every segment. Fed through an
// affine width this gives a line that thickens along the x axis.
func IndexWidthBasis(points []telemetry.Point) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, len(points)-1)
	for i := range out {
		out[i] = points[i].X
	}
	return out
}

// DistanceRate returns the distance covered across each segment of a track
func DistanceRate(track telemetry.Track) ([]float64, error) {
	if !track.HasDistance {
		return nil, &telemetry.UnrecognizedSchemaError{Source: track.Name, Missing: "distanceTraveled"}
	}
	if track.Len() < 2 {
		return nil, &telemetry.InsufficientDataError{Need: 2, Got: track.Len()}
	}
	out := make([]float64, track.Len()-1)
	for i := range out {
		out[i] = track.Samples[i+1].Distance - track.Samples[i].Distance
	}
	return out, nil
}
