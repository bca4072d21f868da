package database

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"

	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// SampleRecord is one row of the telemetry_samples table. Either the planar
// or the geodetic pair is populated for a run.
type SampleRecord struct {
	Run              string   `gorm:"column:run;index:idx_run_seq,priority:1;not null"`
	Seq              int      `gorm:"column:seq;index:idx_run_seq,priority:2;not null"`
	XPos             *float64 `gorm:"column:x_pos"`
	YPos             *float64 `gorm:"column:y_pos"`
	Latitude         *float64 `gorm:"column:latitude"`
	Longitude        *float64 `gorm:"column:longitude"`
	DistanceTraveled *float64 `gorm:"column:distance_traveled"`
}

// TableName implements the GORM Tabler interface
func (SampleRecord) TableName() string {
	return "telemetry_samples"
}

// TrackSource exposes every run in telemetry_samples as a track of a single
// logical group.
type TrackSource struct {
	DB    *gorm.DB
	Group string
}

// NewTrackSource returns a source serving runs under group
func NewTrackSource(db *gorm.DB, group string) *TrackSource {
	return &TrackSource{DB: db, Group: group}
}

// Groups returns the one group holding every distinct run
func (s *TrackSource) Groups(ctx context.Context) ([]loader.Group, error) {
	var runs []string
	err := s.DB.WithContext(ctx).
		Model(&SampleRecord{}).
		Distinct("run").
		Order("run").
		Pluck("run", &runs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	g := loader.Group{Name: s.Group, Tracks: make([]loader.TrackRef, len(runs))}
	for i, r := range runs {
		g.Tracks[i] = loader.TrackRef{Name: r}
	}
	return []loader.Group{g}, nil
}

// Track loads one run ordered by seq
func (s *TrackSource) Track(ctx context.Context, group, run string) (telemetry.Track, error) {
	if group != s.Group {
		return telemetry.Track{}, fmt.Errorf("group %s: %w", group, loader.ErrNotFound)
	}

	var records []SampleRecord
	err := s.DB.WithContext(ctx).
		Where("run = ?", run).
		Order("seq").
		Find(&records).Error
	if err != nil {
		return telemetry.Track{}, fmt.Errorf("error querying run %s: %w", run, err)
	}
	if len(records) == 0 {
		return telemetry.Track{}, fmt.Errorf("run %s: %w", run, loader.ErrNotFound)
	}
	return TrackFromRecords(run, records)
}

// TrackFromRecords applies the CSV schema rules to database rows: the
// planar pair wins if the first row carries it, else the geodetic pair.
// A NULL in the chosen columns of a later row is an InvalidMetricError.
func TrackFromRecords(name string, records []SampleRecord) (telemetry.Track, error) {
	track := telemetry.Track{Name: name}
	if len(records) == 0 {
		return track, nil
	}

	first := records[0]
	var present []string
	for col, v := range map[string]*float64{
		loader.ColumnXPos:      first.XPos,
		loader.ColumnYPos:      first.YPos,
		loader.ColumnLatitude:  first.Latitude,
		loader.ColumnLongitude: first.Longitude,
		loader.ColumnDistance:  first.DistanceTraveled,
	} {
		if v != nil {
			present = append(present, col)
		}
	}
	sort.Strings(present)
	track.Schema, track.HasDistance = loader.DetectSchema(present)
	if track.Schema == telemetry.SchemaUnknown {
		return track, &telemetry.UnrecognizedSchemaError{Source: "telemetry_samples run " + name, Columns: present}
	}

	track.Samples = make([]telemetry.Sample, len(records))
	for i, r := range records {
		x, y := r.XPos, r.YPos
		if track.Schema == telemetry.SchemaGeodetic {
			x, y = r.Longitude, r.Latitude
		}
		if x == nil || y == nil {
			return track, &telemetry.InvalidMetricError{Metric: name + " coordinates", Index: i, Value: nan()}
		}
		s := telemetry.Sample{X: *x, Y: *y}
		if track.HasDistance {
			if r.DistanceTraveled == nil {
				return track, &telemetry.InvalidMetricError{Metric: name + " distanceTraveled", Index: i, Value: nan()}
			}
			s.Distance = *r.DistanceTraveled
		}
		track.Samples[i] = s
	}

	if err := track.Validate(); err != nil {
		return track, err
	}
	return track, nil
}

func nan() float64 {
	return math.NaN()
}
