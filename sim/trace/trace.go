package trace

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures graph builds, feature collections and observer dispatches.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// RunTrace collects event records during a pipeline run.
// A nil *RunTrace, or one at TraceLevelNone, records nothing.
type RunTrace struct {
	Config      TraceConfig
	Builds      []BuildRecord
	Collections []CollectionRecord
	Dispatches  []DispatchRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(config TraceConfig) *RunTrace {
	return &RunTrace{
		Config:      config,
		Builds:      make([]BuildRecord, 0),
		Collections: make([]CollectionRecord, 0),
		Dispatches:  make([]DispatchRecord, 0),
	}
}

func (rt *RunTrace) enabled() bool {
	return rt != nil && rt.Config.Level == TraceLevelEvents
}

// RecordBuild appends a graph build record.
func (rt *RunTrace) RecordBuild(record BuildRecord) {
	if rt.enabled() {
		rt.Builds = append(rt.Builds, record)
	}
}

// RecordCollection appends a feature collection record.
func (rt *RunTrace) RecordCollection(record CollectionRecord) {
	if rt.enabled() {
		rt.Collections = append(rt.Collections, record)
	}
}

// RecordDispatch appends an observer dispatch record.
func (rt *RunTrace) RecordDispatch(record DispatchRecord) {
	if rt.enabled() {
		rt.Dispatches = append(rt.Dispatches, record)
	}
}
