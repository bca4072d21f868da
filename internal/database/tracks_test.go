package database

import (
	"errors"
	"testing"

	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

func f(v float64) *float64 {
	return &v
}

func TestTrackFromRecords(t *testing.T) {
	tests := []struct {
		name       string
		records    []SampleRecord
		wantSchema telemetry.Schema
		wantDist   bool
		wantFirst  telemetry.Sample
	}{
		{
			name: "planar with distance",
			records: []SampleRecord{
				{Run: "r", Seq: 0, XPos: f(1), YPos: f(2), DistanceTraveled: f(0)},
				{Run: "r", Seq: 1, XPos: f(3), YPos: f(4), DistanceTraveled: f(5)},
			},
			wantSchema: telemetry.SchemaPlanar,
			wantDist:   true,
			wantFirst:  telemetry.Sample{X: 1, Y: 2},
		},
		{
			name: "geodetic",
			records: []SampleRecord{
				{Run: "r", Seq: 0, Latitude: f(46), Longitude: f(14)},
				{Run: "r", Seq: 1, Latitude: f(46.1), Longitude: f(14.1)},
			},
			wantSchema: telemetry.SchemaGeodetic,
			wantFirst:  telemetry.Sample{X: 14, Y: 46},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, err := TrackFromRecords("r", tt.records)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if track.Schema != tt.wantSchema || track.HasDistance != tt.wantDist {
				t.Errorf("unexpected schema %v / distance %v", track.Schema, track.HasDistance)
			}
			if track.Len() != len(tt.records) {
				t.Fatalf("expected %d samples, got %d", len(tt.records), track.Len())
			}
			if track.Samples[0] != tt.wantFirst {
				t.Errorf("expected %+v, got %+v", tt.wantFirst, track.Samples[0])
			}
		})
	}
}

func TestTrackFromRecordsErrors(t *testing.T) {
	_, err := TrackFromRecords("r", []SampleRecord{{Run: "r", DistanceTraveled: f(1)}})
	var schema *telemetry.UnrecognizedSchemaError
	if !errors.As(err, &schema) {
		t.Errorf("expected UnrecognizedSchemaError, got %v", err)
	}

	_, err = TrackFromRecords("r", []SampleRecord{
		{Run: "r", Seq: 0, XPos: f(1), YPos: f(1)},
		{Run: "r", Seq: 1, XPos: f(2)},
	})
	var metric *telemetry.InvalidMetricError
	if !errors.As(err, &metric) || metric.Index != 1 {
		t.Errorf("expected InvalidMetricError at 1, got %v", err)
	}
}
