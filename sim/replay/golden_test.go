package replay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensor-sim/sensor-sim/sim"
	"github.com/sensor-sim/sensor-sim/sim/internal/testutil"
	"github.com/sensor-sim/sensor-sim/sim/network"
)

// TestGoldenDataset replays every recorded case through the full pipeline
// and compares graph and feature grids against the stored outputs.
func TestGoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			sc, err := LoadScenario(testutil.TestdataPath(t, tc.Scenario))
			require.NoError(t, err)
			eng, err := New(sc)
			require.NoError(t, err)
			desc, err := network.Load(testutil.TestdataPath(t, tc.Network))
			require.NoError(t, err)
			net, err := network.New(desc)
			require.NoError(t, err)

			table := sim.NewTranslationTable(eng.SensorIDs(), eng.TrafficLightIDs())
			strategy, err := sim.NewCostStrategy(tc.Strategy, tc.Threshold, eng)
			require.NoError(t, err)
			builder := sim.NewGraphBuilder(table, net, strategy, sim.WithSelfLoops(tc.SelfLoops))
			snap, err := builder.Rebuild()
			require.NoError(t, err)
			refs, err := builder.ReferenceSpeeds(eng)
			require.NoError(t, err)
			store, err := sim.NewFeatureStore(tc.Capacity, refs, snap.EdgeIndex())
			require.NoError(t, err)
			sched, err := sim.NewScheduler(eng, table, store, sim.WithGraph(snap))
			require.NoError(t, err)
			require.NoError(t, sched.Run(tc.TotalSteps, tc.CollectionInterval))

			assert.Equal(t, tc.Expected.Order, table.Order())
			edges := make([][2]int, len(snap.EdgesByIndex))
			for i, e := range snap.EdgesByIndex {
				edges[i] = [2]int{e.From, e.To}
			}
			assert.Equal(t, tc.Expected.Edges, edges)

			for i, row := range tc.Expected.Costs {
				for j, want := range row {
					name := tc.Name + " cost"
					if want == nil {
						assert.True(t, math.IsInf(snap.Cost[i][j], 1), "%s[%d][%d]", name, i, j)
						continue
					}
					testutil.AssertFloat64Equal(t, name, *want, snap.Cost[i][j], 1e-9)
				}
			}

			assert.Equal(t, tc.Expected.ProcessingSteps, sched.ProcessingStep())
			speed := store.Speed()
			require.Len(t, speed, len(tc.Expected.Speed))
			for r, row := range tc.Expected.Speed {
				for c, want := range row {
					testutil.AssertFloat64Equal(t, tc.Name+" speed", want, speed[r][c], 1e-9)
				}
			}
		})
	}
}
