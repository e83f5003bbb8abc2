package sim

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeBuild("geometric", 0.1, 3, nil)
		m.incStep()
		m.incRow()
		m.incObserver("progress", "periodic")
	})
}

func TestMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.observeBuild("geometric", 0.01, 5, nil)
	m.incStep()
	m.incRow()
	m.incObserver("progress", "periodic")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"sensor_sim_graph_builds_total",
		"sensor_sim_graph_build_duration_seconds",
		"sensor_sim_graph_edges",
		"sensor_sim_sim_steps_total",
		"sensor_sim_feature_rows_total",
		"sensor_sim_observer_updates_total",
	}, names)
}

func TestMetrics_FailedBuildKeepsEdgeGauge(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.observeBuild("shortest-path", 0.2, 7, nil)
	m.observeBuild("shortest-path", 0, 0, errors.New("x"))

	assert.Equal(t, 7.0, testutil.ToFloat64(m.GraphEdges))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphBuilds.WithLabelValues("shortest-path", BuildResultError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GraphBuildDuration))
}
