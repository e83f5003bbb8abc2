// Tracks run-wide counters for graph builds, feature collection and
// observer dispatch.

package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sensor_sim"

// Build results used as the "result" label of GraphBuilds.
const (
	BuildResultOK    = "ok"
	BuildResultError = "error"
)

// Metrics groups the prometheus collectors of one pipeline. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	GraphBuilds        *prometheus.CounterVec
	GraphBuildDuration prometheus.Histogram
	GraphEdges         prometheus.Gauge
	SimSteps           prometheus.Counter
	FeatureRows        prometheus.Counter
	ObserverUpdates    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GraphBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "graph_builds_total",
			Help:      "Graph builds by result.",
		}, []string{"strategy", "result"}),
		GraphBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Wall time of complete graph builds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_edges",
			Help:      "Edges in the current sensor graph.",
		}),
		SimSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sim_steps_total",
			Help:      "Engine ticks advanced by the scheduler.",
		}),
		FeatureRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "feature_rows_total",
			Help:      "Rows appended to the feature store.",
		}),
		ObserverUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "observer_updates_total",
			Help:      "Observer invocations by observer name and phase.",
		}, []string{"observer", "phase"}),
	}
	if reg != nil {
		reg.MustRegister(m.GraphBuilds, m.GraphBuildDuration, m.GraphEdges, m.SimSteps, m.FeatureRows, m.ObserverUpdates)
	}
	return m
}

func (m *Metrics) observeBuild(strategy string, seconds float64, edges int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.GraphBuilds.WithLabelValues(strategy, BuildResultError).Inc()
		return
	}
	m.GraphBuilds.WithLabelValues(strategy, BuildResultOK).Inc()
	m.GraphBuildDuration.Observe(seconds)
	m.GraphEdges.Set(float64(edges))
}

func (m *Metrics) incStep() {
	if m != nil {
		m.SimSteps.Inc()
	}
}

func (m *Metrics) incRow() {
	if m != nil {
		m.FeatureRows.Inc()
	}
}

func (m *Metrics) incObserver(name, phase string) {
	if m != nil {
		m.ObserverUpdates.WithLabelValues(name, phase).Inc()
	}
}
