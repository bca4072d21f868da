package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// Column names recognized in CSV sources
const (
	ColumnXPos      = "xPos"
	ColumnYPos      = "yPos"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnDistance  = "distanceTraveled"
)

// csvRow carries every column either layout can use; columns absent from the
// header are left at their zero value by the decoder.
type csvRow struct {
	XPos             float64 `csv:"xPos"`
	YPos             float64 `csv:"yPos"`
	Latitude         float64 `csv:"Latitude"`
	Longitude        float64 `csv:"Longitude"`
	DistanceTraveled float64 `csv:"distanceTraveled"`
}

// DetectSchema picks the coordinate layout from a trimmed CSV header. The
// planar layout wins when both are present.
func DetectSchema(header []string) (schema telemetry.Schema, hasDistance bool) {
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[h] = true
	}

	switch {
	case cols[ColumnXPos] && cols[ColumnYPos]:
		schema = telemetry.SchemaPlanar
	case cols[ColumnLatitude] && cols[ColumnLongitude]:
		schema = telemetry.SchemaGeodetic
	default:
		schema = telemetry.SchemaUnknown
	}
	return schema, cols[ColumnDistance]
}

// ReadCSV decodes a track from CSV. Blank numeric cells decode as NaN and
// are rejected by validation rather than silently read as zero.
func ReadCSV(r io.Reader, name string) (telemetry.Track, error) {
	track := telemetry.Track{Name: name}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return track, &telemetry.UnrecognizedSchemaError{Source: name}
	}
	if err != nil {
		return track, fmt.Errorf("reading CSV header of %s: %w", name, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	track.Schema, track.HasDistance = DetectSchema(header)
	if track.Schema == telemetry.SchemaUnknown {
		return track, &telemetry.UnrecognizedSchemaError{Source: name, Columns: header}
	}

	// Column names are matched against the trimmed header, not the raw text.
	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return track, fmt.Errorf("reading CSV header of %s: %w", name, err)
	}

	dec.Map = func(field, column string, v any) string {
		if _, ok := v.(float64); ok && strings.TrimSpace(field) == "" {
			return "NaN"
		}
		return field
	}

	for {
		var row csvRow
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return track, fmt.Errorf("decoding %s: %w", name, err)
		}
		track.Samples = append(track.Samples, row.sample(track.Schema))
	}

	if err := track.Validate(); err != nil {
		return track, err
	}
	return track, nil
}

func (r csvRow) sample(schema telemetry.Schema) telemetry.Sample {
	s := telemetry.Sample{Distance: r.DistanceTraveled}
	if schema == telemetry.SchemaGeodetic {
		s.X, s.Y = r.Longitude, r.Latitude
	} else {
		s.X, s.Y = r.XPos, r.YPos
	}
	return s
}
