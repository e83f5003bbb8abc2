// Package trace provides event-trace recording for pipeline runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// BuildRecord captures one complete graph build attempt.
type BuildRecord struct {
	Strategy  string
	Threshold float64
	Sensors   int
	Edges     int
	SelfLoops bool
	Err       string // empty on success
}

// CollectionRecord captures one feature collection (a processing step).
type CollectionRecord struct {
	Step           int64
	ProcessingStep int64
	Row            int
	// MeanSpeed is the mean stored speed across all sensors of the row.
	MeanSpeed float64
}

// Dispatch phases.
const (
	PhasePeriodic = "periodic"
	PhasePostRun  = "post-run"
)

// DispatchRecord captures a single observer invocation.
type DispatchRecord struct {
	Observer string
	Step     int64
	Phase    string
	Err      string
}
