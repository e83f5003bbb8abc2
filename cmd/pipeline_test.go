package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensor-sim/sensor-sim/sim"
)

const testNetwork = `
edges:
  - {id: e1, to: [e2]}
  - {id: e2, to: [e3]}
  - {id: e3}
lanes:
  - {id: e1_0, edge: e1, speed: 20, shape: [[0, 0], [100, 0]]}
  - {id: e2_0, edge: e2, speed: 5, shape: [[100, 0], [150, 0]]}
  - {id: e3_0, edge: e3, speed: 10, shape: [[150, 0], [180, 0]]}
`

const testScenario = `
interval: 5
network: net.yaml
traffic_lights: [J7]
sensors:
  - id: d1
    lane: e1_0
    offset: 40
    readings:
      - {speed: 10, occupancy: 1, count: 2}
      - {speed: -1, occupancy: 0, count: 0}
  - id: d3
    lane: e3_0
    offset: 10
  - id: J7_d2
    lane: e2_0
    offset: 5
`

// writeInputs writes the scenario and its network into a temp dir and
// returns the scenario path.
func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "net.yaml"), []byte(testNetwork), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o644))
	return path
}

func testConfig() *sim.RunConfig {
	cfg := sim.DefaultRunConfig()
	cfg.TotalSteps = 16
	cfg.CollectionInterval = 5
	cfg.Capacity = 4
	cfg.Topology.Threshold = 20
	cfg.TraceLevel = "events"
	cfg.Modules.SeriesSensors = []string{"d1"}
	cfg.Modules.FlowControlInterval = 4
	cfg.Modules.ProgressInterval = 8
	return &cfg
}

func TestPipeline_RunEndToEnd(t *testing.T) {
	// GIVEN a replayed scenario over a three-edge chain
	eng, net, err := loadInputs(writeInputs(t), "")
	require.NoError(t, err)

	// WHEN the pipeline is built and run
	p, err := NewPipeline(testConfig(), eng, net)
	require.NoError(t, err)
	require.NoError(t, p.Run())

	// THEN the traffic-light sensor is excluded and d1 -> d3 is the only edge
	assert.Equal(t, []string{"d1", "d3"}, p.Table.Order())
	assert.Equal(t, []sim.IDEdge{{From: "d1", To: "d3"}}, p.Graph.EdgesByID)
	assert.Equal(t, int64(3), p.Scheduler.ProcessingStep())
	assert.Equal(t, [][]float64{{15, 10}, {20, 10}, {15, 10}}, p.Store.Speed())
	require.Len(t, p.Series, 1)
	assert.InDeltaSlice(t, []float64{54, 72, 54}, p.Series[0].Series(), 1e-9)

	var out bytes.Buffer
	p.Report(&out)
	assert.Contains(t, out.String(), "Graph edges      : 1")
	assert.Contains(t, out.String(), "Processing steps : 3 / 4 rows")
	assert.Contains(t, out.String(), "sensor_sim_feature_rows_total")
	assert.Contains(t, out.String(), "Observer flow-control")
}

func TestPipeline_GeometricStrategy(t *testing.T) {
	eng, net, err := loadInputs(writeInputs(t), "")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Topology.Strategy = sim.StrategyGeometric
	cfg.Topology.Threshold = 200

	p, err := NewPipeline(cfg, eng, net)
	require.NoError(t, err)

	// positions (40, 0) and (160, 0) are 120 apart both ways
	assert.Equal(t, 2, p.Graph.NumEdges())
	assert.InDelta(t, 120, p.Graph.Cost[0][1], 1e-9)
}

func TestLoadInputs_NetworkOverrideAndErrors(t *testing.T) {
	scenario := writeInputs(t)
	netPath := filepath.Join(filepath.Dir(scenario), "net.yaml")

	_, _, err := loadInputs(scenario, netPath)
	assert.NoError(t, err)

	_, _, err = loadInputs(scenario, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = loadInputs(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}

func TestPrintGraph(t *testing.T) {
	eng, net, err := loadInputs(writeInputs(t), "")
	require.NoError(t, err)
	p, err := NewPipeline(testConfig(), eng, net)
	require.NoError(t, err)

	var out bytes.Buffer
	PrintGraph(&out, p.Graph)

	assert.Equal(t, "# 2 sensors, 1 edges, strategy shortest-path, threshold 20\nd1 -> d3 14.000\n", out.String())
}
