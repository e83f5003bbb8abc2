package trace

import "gonum.org/v1/gonum/floats"

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	TotalBuilds    int
	FailedBuilds   int
	LastEdgeCount  int
	Collections    int
	MeanRowSpeed   float64
	MaxRowSpeed    float64
	Dispatches     int
	ObserverCounts map[string]int // observer name → invocation count
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{
		ObserverCounts: make(map[string]int),
	}
	if rt == nil {
		return summary
	}

	summary.TotalBuilds = len(rt.Builds)
	for _, b := range rt.Builds {
		if b.Err != "" {
			summary.FailedBuilds++
			continue
		}
		summary.LastEdgeCount = b.Edges
	}

	summary.Collections = len(rt.Collections)
	if len(rt.Collections) > 0 {
		speeds := make([]float64, len(rt.Collections))
		for i, c := range rt.Collections {
			speeds[i] = c.MeanSpeed
		}
		summary.MeanRowSpeed = floats.Sum(speeds) / float64(len(speeds))
		summary.MaxRowSpeed = floats.Max(speeds)
	}

	summary.Dispatches = len(rt.Dispatches)
	for _, d := range rt.Dispatches {
		summary.ObserverCounts[d.Observer]++
	}
	return summary
}
