package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sensor-sim/sensor-sim/sim/trace"
)

// SchedulerPhase is the lifecycle state of a Scheduler.
type SchedulerPhase string

const (
	PhaseIdle     SchedulerPhase = "idle"
	PhaseRunning  SchedulerPhase = "running"
	PhaseFinished SchedulerPhase = "finished"
)

// Scheduler steps the engine on a single simulated clock, feeds the feature
// store every collection interval and dispatches observers. It runs at most
// once. There is no cancellation; a host may only halt the engine between
// steps.
type Scheduler struct {
	engine Engine
	store  *FeatureStore
	table  *TranslationTable
	graph  *GraphSnapshot

	periodic []Observer
	postRun  []Observer

	metrics *Metrics
	trace   *trace.RunTrace

	runID          string
	phase          SchedulerPhase
	step           int64
	totalSteps     int64
	processingStep int64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerMetrics records steps, rows and observer calls on m.
func WithSchedulerMetrics(m *Metrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// WithSchedulerTrace records collections and dispatches on rt.
func WithSchedulerTrace(rt *trace.RunTrace) SchedulerOption {
	return func(s *Scheduler) { s.trace = rt }
}

// WithGraph exposes a graph snapshot to observers through State.Graph.
func WithGraph(g *GraphSnapshot) SchedulerOption {
	return func(s *Scheduler) { s.graph = g }
}

// NewScheduler creates an idle scheduler. The table fixes the column order
// of collected rows and must match the store's width.
func NewScheduler(engine Engine, table *TranslationTable, store *FeatureStore, opts ...SchedulerOption) (*Scheduler, error) {
	if table.Len() != store.Width() {
		return nil, fmt.Errorf("translation table has %d sensors but feature store has %d columns", table.Len(), store.Width())
	}
	s := &Scheduler{
		engine: engine,
		table:  table,
		store:  store,
		runID:  uuid.NewString(),
		phase:  PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddPeriodic registers an observer fired during the loop, in registration order.
func (s *Scheduler) AddPeriodic(o Observer) error {
	if o.TriggerInterval() <= 0 {
		return fmt.Errorf("%w: %s has %d", ErrInvalidTrigger, o.Name(), o.TriggerInterval())
	}
	s.periodic = append(s.periodic, o)
	return nil
}

// AddPostRun registers an observer fired once after smoothing, in registration order.
func (s *Scheduler) AddPostRun(o Observer) {
	s.postRun = append(s.postRun, o)
}

// Run executes totalSteps ticks. Within one step the engine advance precedes
// collection, which precedes observer dispatch. Collection and periodic
// observers never fire at step 0. After the loop the store is smoothed once
// and post-run observers fire. Any failure aborts the run; the scheduler
// ends Finished either way.
func (s *Scheduler) Run(totalSteps, collectionInterval int64) error {
	if s.phase != PhaseIdle {
		return fmt.Errorf("%w: phase %s", ErrSchedulerState, s.phase)
	}
	if collectionInterval <= 0 {
		return fmt.Errorf("collection interval must be positive, got %d", collectionInterval)
	}
	if totalSteps < 0 {
		return fmt.Errorf("total steps must be non-negative, got %d", totalSteps)
	}
	s.phase = PhaseRunning
	s.totalSteps = totalSteps
	defer func() { s.phase = PhaseFinished }()

	log := logrus.WithField("run", s.runID)
	log.Infof("starting run: steps=%d interval=%d sensors=%d capacity=%d",
		totalSteps, collectionInterval, s.table.Len(), s.store.Capacity())

	for s.step = 0; s.step < totalSteps; s.step++ {
		if err := s.engine.Step(); err != nil {
			return fmt.Errorf("engine step %d: %w", s.step, err)
		}
		s.metrics.incStep()

		if s.step != 0 && s.step%collectionInterval == 0 {
			if err := s.collect(); err != nil {
				return fmt.Errorf("collection at step %d: %w", s.step, err)
			}
		}

		for _, o := range s.periodic {
			if s.step != 0 && s.step%o.TriggerInterval() == 0 {
				if err := s.dispatch(o, trace.PhasePeriodic); err != nil {
					return err
				}
			}
		}
	}

	s.store.Smooth()
	log.Infof("[tick %07d] loop ended after %d processing steps, speed channel smoothed", s.step, s.processingStep)

	for _, o := range s.postRun {
		if err := s.dispatch(o, trace.PhasePostRun); err != nil {
			return err
		}
	}
	log.Info("run complete")
	return nil
}

func (s *Scheduler) collect() error {
	order := s.table.Order()
	row := make([]Reading, len(order))
	for i, id := range order {
		r, err := s.engine.LastInterval(id)
		if err != nil {
			return fmt.Errorf("telemetry of %s: %w", id, err)
		}
		row[i] = r
	}
	rowIdx := s.store.Cursor()
	if err := s.store.Append(row); err != nil {
		return err
	}
	s.processingStep++
	s.metrics.incRow()

	s.trace.RecordCollection(trace.CollectionRecord{
		Step:           s.step,
		ProcessingStep: s.processingStep,
		Row:            rowIdx,
		MeanSpeed:      s.store.rowMeanSpeed(rowIdx),
	})
	logrus.Debugf("[tick %07d] collected row %d", s.step, rowIdx)
	return nil
}

func (s *Scheduler) dispatch(o Observer, phase string) error {
	err := o.Update(s.state())
	record := trace.DispatchRecord{Observer: o.Name(), Step: s.step, Phase: phase}
	if err != nil {
		record.Err = err.Error()
	}
	s.trace.RecordDispatch(record)
	s.metrics.incObserver(o.Name(), phase)
	if err != nil {
		return fmt.Errorf("%s observer %s at step %d: %w", phase, o.Name(), s.step, err)
	}
	return nil
}

func (s *Scheduler) state() *State {
	return &State{
		RunID:          s.runID,
		Step:           s.step,
		TotalSteps:     s.totalSteps,
		ProcessingStep: s.processingStep,
		Engine:         s.engine,
		Store:          s.store,
		Table:          s.table,
		Graph:          s.graph,
	}
}

// ProcessingStep is the number of completed feature collections.
func (s *Scheduler) ProcessingStep() int64 { return s.processingStep }

// Phase returns the lifecycle state.
func (s *Scheduler) Phase() SchedulerPhase { return s.phase }

// RunID identifies this scheduler's run in logs.
func (s *Scheduler) RunID() string { return s.runID }
