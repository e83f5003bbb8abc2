package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sensor-sim/sensor-sim/sim"
	"github.com/sensor-sim/sensor-sim/sim/modules"
	"github.com/sensor-sim/sensor-sim/sim/network"
	"github.com/sensor-sim/sensor-sim/sim/replay"
	"github.com/sensor-sim/sensor-sim/sim/trace"
)

// Pipeline wires one run: translation table, graph, feature store,
// scheduler and the configured modules.
type Pipeline struct {
	Config    *sim.RunConfig
	Table     *sim.TranslationTable
	Builder   *sim.GraphBuilder
	Graph     *sim.GraphSnapshot
	Store     *sim.FeatureStore
	Scheduler *sim.Scheduler
	Trace     *trace.RunTrace
	Metrics   *sim.Metrics
	Registry  *prometheus.Registry
	Series    []*modules.SensorSeries
}

// loadInputs reads the scenario and its network. A non-empty networkPath
// overrides the network named in the scenario, which is resolved relative
// to the scenario file.
func loadInputs(scenarioPath, networkPath string) (*replay.Engine, *network.Network, error) {
	sc, err := replay.LoadScenario(scenarioPath)
	if err != nil {
		return nil, nil, err
	}
	eng, err := replay.New(sc)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", scenarioPath, err)
	}

	path := networkPath
	if path == "" {
		if sc.Network == "" {
			return nil, nil, fmt.Errorf("scenario %s names no network and --network is not set", scenarioPath)
		}
		path = sc.Network
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(scenarioPath), path)
		}
	}
	desc, err := network.Load(path)
	if err != nil {
		return nil, nil, err
	}
	net, err := network.New(desc)
	if err != nil {
		return nil, nil, fmt.Errorf("network %s: %w", path, err)
	}
	return eng, net, nil
}

// NewPipeline builds the sensor graph and prepares an idle scheduler.
func NewPipeline(cfg *sim.RunConfig, eng sim.Engine, net sim.Network) (*Pipeline, error) {
	p := &Pipeline{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		Trace:    trace.NewRunTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)}),
	}
	p.Metrics = sim.NewMetrics(p.Registry)
	p.Table = sim.NewTranslationTable(eng.SensorIDs(), eng.TrafficLightIDs())

	strategy, err := sim.NewCostStrategy(cfg.Topology.Strategy, cfg.Topology.Threshold, eng)
	if err != nil {
		return nil, err
	}
	p.Builder = sim.NewGraphBuilder(p.Table, net, strategy,
		sim.WithSelfLoops(cfg.Topology.SelfLoops),
		sim.WithBuildMetrics(p.Metrics),
		sim.WithBuildTrace(p.Trace),
	)
	if p.Graph, err = p.Builder.Rebuild(); err != nil {
		return nil, err
	}

	refs, err := p.Builder.ReferenceSpeeds(eng)
	if err != nil {
		return nil, err
	}
	if p.Store, err = sim.NewFeatureStore(cfg.Capacity, refs, p.Graph.EdgeIndex()); err != nil {
		return nil, err
	}
	p.Scheduler, err = sim.NewScheduler(eng, p.Table, p.Store,
		sim.WithGraph(p.Graph),
		sim.WithSchedulerMetrics(p.Metrics),
		sim.WithSchedulerTrace(p.Trace),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Modules.ProgressInterval > 0 {
		if err := p.Scheduler.AddPeriodic(modules.NewProgress(cfg.Modules.ProgressInterval)); err != nil {
			return nil, err
		}
	}
	if cfg.Modules.FlowControlInterval > 0 {
		rng := sim.NewPartitionedRNG(sim.NewRunKey(cfg.Seed))
		fc := modules.NewFlowControl(cfg.Modules.FlowControlInterval, rng, modules.DefaultFlowRules, modules.DefaultFlowStart)
		if err := p.Scheduler.AddPeriodic(fc); err != nil {
			return nil, err
		}
	}
	for _, id := range cfg.Modules.SeriesSensors {
		m := modules.NewSensorSeries(id)
		p.Series = append(p.Series, m)
		p.Scheduler.AddPostRun(m)
	}
	return p, nil
}

// Run executes the scheduler with the configured loop length.
func (p *Pipeline) Run() error {
	return p.Scheduler.Run(p.Config.TotalSteps, p.Config.CollectionInterval)
}

// Report writes the run summary, the collected metrics and, when tracing
// was on, the trace summary.
func (p *Pipeline) Report(w io.Writer) {
	fmt.Fprintf(w, "=== Run %s ===\n", p.Scheduler.RunID())
	fmt.Fprintf(w, "Sensors          : %d (%d excluded)\n", p.Table.Len(), len(p.Table.Excluded()))
	fmt.Fprintf(w, "Graph edges      : %d (%s, threshold %g)\n", p.Graph.NumEdges(), p.Graph.Strategy, p.Graph.Threshold)
	fmt.Fprintf(w, "Processing steps : %d / %d rows\n", p.Scheduler.ProcessingStep(), p.Store.Capacity())
	for _, s := range p.Series {
		fmt.Fprintf(w, "%s km/h : %.1f\n", s.Name(), s.Series())
	}

	families, err := p.Registry.Gather()
	if err != nil {
		logrus.Warnf("gathering metrics: %v", err)
		return
	}
	fmt.Fprintln(w, "=== Metrics ===")
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		fmt.Fprintf(w, "%-44s %g\n", mf.GetName(), total)
	}

	if p.Trace.Config.Level != trace.TraceLevelEvents {
		return
	}
	summary := trace.Summarize(p.Trace)
	fmt.Fprintln(w, "=== Trace ===")
	fmt.Fprintf(w, "Builds           : %d (%d failed)\n", summary.TotalBuilds, summary.FailedBuilds)
	fmt.Fprintf(w, "Collections      : %d, mean row speed %.2f, max %.2f\n", summary.Collections, summary.MeanRowSpeed, summary.MaxRowSpeed)
	names := make([]string, 0, len(summary.ObserverCounts))
	for name := range summary.ObserverCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "Observer %-24s: %d\n", name, summary.ObserverCounts[name])
	}
}

// PrintGraph writes the edge list of a snapshot, one "from -> to cost" per line.
func PrintGraph(w io.Writer, g *sim.GraphSnapshot) {
	fmt.Fprintf(w, "# %d sensors, %d edges, strategy %s, threshold %g\n", len(g.Binary), g.NumEdges(), g.Strategy, g.Threshold)
	for k, e := range g.EdgesByID {
		idx := g.EdgesByIndex[k]
		fmt.Fprintf(w, "%s -> %s %.3f\n", e.From, e.To, g.Cost[idx.From][idx.To])
	}
}
