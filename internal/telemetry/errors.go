package telemetry

import (
	"errors"
	"fmt"
	"strings"
)

// InsufficientDataError is returned when fewer samples exist than an
// operation needs, e.g. building segments from a single point.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d samples, got %d", e.Need, e.Got)
}

// EmptyTrackError is returned when a track has no samples after alignment
type EmptyTrackError struct {
	Track string
}

func (e *EmptyTrackError) Error() string {
	if e.Track == "" {
		return "track is empty"
	}
	return fmt.Sprintf("track %q is empty", e.Track)
}

// UnrecognizedSchemaError is returned when a data source has neither the
// planar nor the geodetic column layout, or lacks a column a route needs.
type UnrecognizedSchemaError struct {
	Source  string
	Columns []string
	Missing string
}

func (e *UnrecognizedSchemaError) Error() string {
	var b strings.Builder
	b.WriteString("unrecognized schema")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Missing != "" {
		fmt.Fprintf(&b, ": missing column %s", e.Missing)
	} else {
		b.WriteString(": expected columns {xPos, yPos} or {Latitude, Longitude}")
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, " (found %s)", strings.Join(e.Columns, ", "))
	}
	return b.String()
}

// InvalidMetricError is returned for a non-finite driving value or delta
type InvalidMetricError struct {
	Metric string
	Index  int
	Value  float64
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("invalid %s at sample %d: %v", e.Metric, e.Index, e.Value)
}

// IsDataError reports whether err (or anything it wraps) is one of the data
// validation errors above. These describe bad input, not server faults.
func IsDataError(err error) bool {
	var insufficient *InsufficientDataError
	var empty *EmptyTrackError
	var schema *UnrecognizedSchemaError
	var metric *InvalidMetricError
	return errors.As(err, &insufficient) ||
		errors.As(err, &empty) ||
		errors.As(err, &schema) ||
		errors.As(err, &metric)
}
