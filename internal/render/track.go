package render

import (
	"fmt"
	"image/color"

	"github.com/chrissnell/telemetrychart/internal/segment"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// Track styling modes
const (
	ModePlain      = "plain"
	ModeContinuous = "continuous"
	ModeDiscrete   = "discrete"
)

// PlainColor strokes unstyled tracks
var PlainColor = color.RGBA{R: 0x1F, G: 0x4E, B: 0xB4, A: 0xFF}

// TrackStyle selects how a single track is colored and stroked
type TrackStyle struct {
	Mode string
	Ramp style.Ramp

	// Discrete buckets the raw distance covered per segment, so its
	// boundaries are in the track's distance units. Dense tracks with the
	// default boundaries land almost entirely in the last interval.
	Discrete style.Discrete

	// Width is nil for a constant stroke
	Width *style.Width
}

// Track draws a track segment by segment. Continuous and discrete modes are
// driven by the distance covered across each segment, so they need the
// distance column; plain mode does not.
func Track(track telemetry.Track, ts TrackStyle, opts Options) ([]byte, error) {
	var values []float64
	if track.HasDistance || ts.Mode != ModePlain {
		var err error
		if values, err = segment.DistanceRate(track); err != nil {
			return nil, err
		}
	} else {
		values = make([]float64, track.Len())
	}

	segments, err := segment.Build(track.Points(), values)
	if err != nil {
		return nil, err
	}

	var strategy style.Strategy
	switch ts.Mode {
	case ModePlain:
		strategy = style.Fixed{C: PlainColor}
	case ModeDiscrete:
		strategy = ts.Discrete
		if len(ts.Discrete.Colors) == 0 {
			strategy = style.DefaultDiscrete()
		}
	case ModeContinuous, "":
		ramp := ts.Ramp
		if ramp == nil {
			if ramp, err = style.RampByName(style.DefaultRamp); err != nil {
				return nil, err
			}
		}
		strategy = style.NewContinuous(ramp, segment.Values(segments))
	default:
		return nil, fmt.Errorf("unknown style mode %q", ts.Mode)
	}

	styles, err := style.Apply(segments, strategy, ts.Width, nil)
	if err != nil {
		return nil, err
	}

	if opts.Title == "" {
		opts.Title = track.Name
	}
	if track.Schema == telemetry.SchemaGeodetic && opts.XLabel == "" && opts.YLabel == "" {
		opts.XLabel, opts.YLabel = "Longitude", "Latitude"
	}
	return Segments(segments, styles, opts)
}
