package loader

import (
	"fmt"
	"io"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// ReadGPX decodes every track point of a GPX document in document order.
// distanceTraveled is the cumulative haversine distance in meters.
func ReadGPX(r io.Reader, name string) (telemetry.Track, error) {
	track := telemetry.Track{Name: name, Schema: telemetry.SchemaGeodetic, HasDistance: true}

	data, err := io.ReadAll(r)
	if err != nil {
		return track, fmt.Errorf("reading %s: %w", name, err)
	}
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return track, fmt.Errorf("parsing GPX %s: %w", name, err)
	}

	var distance float64
	var prev *gpx.GPXPoint
	for ti := range g.Tracks {
		for si := range g.Tracks[ti].Segments {
			points := g.Tracks[ti].Segments[si].Points
			for pi := range points {
				p := &points[pi]
				if prev != nil {
					distance += gpx.Distance2D(prev.Latitude, prev.Longitude, p.Latitude, p.Longitude, true)
				}
				track.Samples = append(track.Samples, telemetry.Sample{
					X:        p.Longitude,
					Y:        p.Latitude,
					Distance: distance,
				})
				prev = p
			}
		}
	}

	if err := track.Validate(); err != nil {
		return track, err
	}
	return track, nil
}
