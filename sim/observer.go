package sim

// Observer is a module the Scheduler invokes while or after a run.
// Periodic observers fire on every step that is a non-zero multiple of
// TriggerInterval; post-run observers fire once after smoothing and ignore
// TriggerInterval.
type Observer interface {
	Name() string
	TriggerInterval() int64
	Update(state *State) error
}

// State is the read view handed to observers. Observers may steer the
// engine (e.g. its scale) but must not write to the store.
type State struct {
	RunID          string
	Step           int64
	TotalSteps     int64
	ProcessingStep int64
	Engine         Engine
	Store          *FeatureStore
	Table          *TranslationTable
	// Graph is the last good graph snapshot, nil if none was attached.
	Graph *GraphSnapshot
}
