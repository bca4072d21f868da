package compare

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a delta series for chart captions and the delta API
type Summary struct {
	Samples        int     `json:"samples"`
	MeanDelta      float64 `json:"mean_delta"`
	MinDelta       float64 `json:"min_delta"`
	MaxDelta       float64 `json:"max_delta"`
	FinalDelta     float64 `json:"final_delta"`
	LeadingSamples int     `json:"leading_samples"`
	PeakIndex      int     `json:"peak_index"`
}

// Summarize computes Summary over deltas and the matching assignment
func Summarize(deltas []float64, a Assignment) Summary {
	s := Summary{Samples: len(deltas), PeakIndex: LeadingIndex}
	if len(deltas) == 0 {
		return s
	}

	s.MeanDelta = stat.Mean(deltas, nil)
	s.MinDelta = floats.Min(deltas)
	s.MaxDelta = floats.Max(deltas)
	s.FinalDelta = deltas[len(deltas)-1]

	for _, idx := range a.Indices {
		if idx == LeadingIndex {
			s.LeadingSamples++
			continue
		}
		if idx > s.PeakIndex {
			s.PeakIndex = idx
		}
	}
	return s
}
