package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sensor-sim/sensor-sim/sim/trace"
)

// IDEdge is a directed sensor-graph edge addressed by sensor ids.
type IDEdge struct {
	From string
	To   string
}

// IndexEdge is a directed sensor-graph edge addressed by sensor indices.
type IndexEdge struct {
	From int
	To   int
}

// GraphSnapshot is the immutable output of one complete build. Callers must
// treat every slice as read-only.
type GraphSnapshot struct {
	Strategy  string
	Threshold float64
	SelfLoops bool

	// Cost[i][j] is the strategy cost from sensor i to sensor j; +Inf if unreachable.
	Cost [][]float64
	// Binary[i][j] is 1 iff Cost[i][j] <= Threshold, diagonal forced to 0 without self-loops.
	Binary [][]uint8
	// EdgesByID and EdgesByIndex list the 1-entries of Binary in row-major order.
	EdgesByID    []IDEdge
	EdgesByIndex []IndexEdge
}

// NumEdges returns the number of edges, equal to the count of ones in Binary.
func (s *GraphSnapshot) NumEdges() int { return len(s.EdgesByIndex) }

// EdgeIndex returns the edges as a 2×E array: sources in row 0, targets in row 1.
func (s *GraphSnapshot) EdgeIndex() [2][]int {
	var idx [2][]int
	idx[0] = make([]int, len(s.EdgesByIndex))
	idx[1] = make([]int, len(s.EdgesByIndex))
	for k, e := range s.EdgesByIndex {
		idx[0][k] = e.From
		idx[1][k] = e.To
	}
	return idx
}

// Directed returns the sensor graph as a gonum directed graph with node ids
// equal to sensor indices. Self-loops are not representable in a simple
// graph and are omitted.
func (s *GraphSnapshot) Directed() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range s.Binary {
		g.AddNode(simple.Node(i))
	}
	for _, e := range s.EdgesByIndex {
		if e.From == e.To {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.From), simple.Node(e.To)))
	}
	return g
}

// GraphBuilder builds the sensor graph from a translation table, a network
// and a cost strategy. A build is blocking and O(N²) in strategy calls; the
// network and table must not be mutated while it runs.
type GraphBuilder struct {
	table     *TranslationTable
	net       Network
	strategy  CostStrategy
	selfLoops bool
	metrics   *Metrics
	trace     *trace.RunTrace

	snapshot *GraphSnapshot
}

// BuilderOption configures a GraphBuilder.
type BuilderOption func(*GraphBuilder)

// WithSelfLoops keeps diagonal entries of the binary matrix. Default false.
func WithSelfLoops(enabled bool) BuilderOption {
	return func(b *GraphBuilder) { b.selfLoops = enabled }
}

// WithBuildMetrics records build outcomes on m.
func WithBuildMetrics(m *Metrics) BuilderOption {
	return func(b *GraphBuilder) { b.metrics = m }
}

// WithBuildTrace records build outcomes on rt.
func WithBuildTrace(rt *trace.RunTrace) BuilderOption {
	return func(b *GraphBuilder) { b.trace = rt }
}

// NewGraphBuilder creates a builder. No build happens until Rebuild is called.
func NewGraphBuilder(table *TranslationTable, net Network, strategy CostStrategy, opts ...BuilderOption) *GraphBuilder {
	b := &GraphBuilder{table: table, net: net, strategy: strategy}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetStrategy swaps the cost strategy. The held snapshot is unchanged until Rebuild.
func (b *GraphBuilder) SetStrategy(s CostStrategy) { b.strategy = s }

// SetNetwork swaps the network. The held snapshot is unchanged until Rebuild.
func (b *GraphBuilder) SetNetwork(n Network) { b.net = n }

// Strategy returns the current cost strategy.
func (b *GraphBuilder) Strategy() CostStrategy { return b.strategy }

// Snapshot returns the last successfully built graph, nil before the first success.
func (b *GraphBuilder) Snapshot() *GraphSnapshot { return b.snapshot }

// Rebuild builds the graph from scratch with the current collaborators and
// replaces the held snapshot. On failure the previous snapshot is kept.
func (b *GraphBuilder) Rebuild() (*GraphSnapshot, error) {
	snap, err := b.Build()
	if err != nil {
		return nil, err
	}
	b.snapshot = snap
	return snap, nil
}

// Build computes a fresh snapshot without touching the held one.
// Any strategy failure aborts the whole build with a *GraphBuildError.
func (b *GraphBuilder) Build() (*GraphSnapshot, error) {
	start := time.Now()
	snap, err := b.build()
	record := trace.BuildRecord{
		Strategy:  b.strategy.Name(),
		Threshold: b.strategy.Threshold(),
		Sensors:   b.table.Len(),
		SelfLoops: b.selfLoops,
	}
	if err != nil {
		record.Err = err.Error()
		b.trace.RecordBuild(record)
		b.metrics.observeBuild(b.strategy.Name(), 0, 0, err)
		logrus.Warnf("graph build with strategy %s failed: %v", b.strategy.Name(), err)
		return nil, err
	}
	record.Edges = snap.NumEdges()
	b.trace.RecordBuild(record)
	b.metrics.observeBuild(b.strategy.Name(), time.Since(start).Seconds(), snap.NumEdges(), nil)
	logrus.Infof("graph built: strategy=%s sensors=%d edges=%d took=%s",
		snap.Strategy, b.table.Len(), snap.NumEdges(), time.Since(start))
	return snap, nil
}

func (b *GraphBuilder) build() (*GraphSnapshot, error) {
	n := b.table.Len()
	order := b.table.Order()
	threshold := b.strategy.Threshold()

	// 1) dense cost matrix over every ordered pair, diagonal included
	cost := make([][]float64, n)
	for i := 0; i < n; i++ {
		cost[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			c, err := b.strategy.Cost(order[i], order[j], b.net)
			if err == nil && math.IsNaN(c) {
				err = fmt.Errorf("cost is NaN")
			}
			if err != nil {
				return nil, &GraphBuildError{From: order[i], To: order[j], Err: err}
			}
			cost[i][j] = c
		}
	}

	// 2) threshold into the binary matrix
	binary := make([][]uint8, n)
	for i := 0; i < n; i++ {
		binary[i] = make([]uint8, n)
		for j := 0; j < n; j++ {
			if cost[i][j] <= threshold {
				binary[i][j] = 1
			}
		}
		if !b.selfLoops {
			binary[i][i] = 0
		}
	}

	// 3) row-major scan into both edge lists
	snap := &GraphSnapshot{
		Strategy:     b.strategy.Name(),
		Threshold:    threshold,
		SelfLoops:    b.selfLoops,
		Cost:         cost,
		Binary:       binary,
		EdgesByID:    make([]IDEdge, 0),
		EdgesByIndex: make([]IndexEdge, 0),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if binary[i][j] == 1 {
				snap.EdgesByID = append(snap.EdgesByID, IDEdge{From: order[i], To: order[j]})
				snap.EdgesByIndex = append(snap.EdgesByIndex, IndexEdge{From: i, To: j})
			}
		}
	}
	return snap, nil
}

// ReferenceSpeeds returns the speed limit of each sensor's lane, in index
// order. These are the fallback speeds of the feature store.
func (b *GraphBuilder) ReferenceSpeeds(locator SensorLocator) ([]float64, error) {
	order := b.table.Order()
	speeds := make([]float64, len(order))
	for i, id := range order {
		laneID, err := locator.LaneOf(id)
		if err != nil {
			return nil, fmt.Errorf("reference speed of %s: %w", id, err)
		}
		lane, err := b.net.Lane(laneID)
		if err != nil {
			return nil, fmt.Errorf("reference speed of %s: %w", id, err)
		}
		speeds[i] = lane.SpeedLimit
	}
	return speeds, nil
}
