// Package network provides an in-memory road network implementing
// sim.Network. Fastest routes are found with Dijkstra over a gonum weighted
// directed graph of edges.
package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sensor-sim/sensor-sim/sim"
)

// Network is an immutable road network. Routes are cached per source edge,
// so a Network must not be shared between concurrent builds.
type Network struct {
	edges   map[string]sim.EdgeInfo
	lanes   map[string]sim.Lane
	nodeOf  map[string]int64
	edgeIDs []string // indexed by node id

	g     *simple.WeightedDirectedGraph
	trees map[int64]path.Shortest
}

// New validates a description and builds the network.
//
// Edge travel time is length / speed limit. An arc from edge u to a
// successor v weighs the travel time of v, so a route's cost is the travel
// time of every edge on it, both end edges included.
func New(desc *Description) (*Network, error) {
	n := &Network{
		edges:  make(map[string]sim.EdgeInfo, len(desc.Edges)),
		lanes:  make(map[string]sim.Lane, len(desc.Lanes)),
		nodeOf: make(map[string]int64, len(desc.Edges)),
		g:      simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		trees:  make(map[int64]path.Shortest),
	}

	for _, e := range desc.Edges {
		if e.ID == "" {
			return nil, fmt.Errorf("edge without id")
		}
		if _, dup := n.edges[e.ID]; dup {
			return nil, fmt.Errorf("duplicate edge %q", e.ID)
		}
		n.edges[e.ID] = sim.EdgeInfo{ID: e.ID, Length: e.Length, SpeedLimit: e.SpeedLimit}
	}

	for _, l := range desc.Lanes {
		lane, err := buildLane(l)
		if err != nil {
			return nil, err
		}
		if _, dup := n.lanes[lane.ID]; dup {
			return nil, fmt.Errorf("duplicate lane %q", lane.ID)
		}
		edge, ok := n.edges[lane.Edge]
		if !ok {
			return nil, fmt.Errorf("lane %q references unknown edge %q", lane.ID, lane.Edge)
		}
		n.lanes[lane.ID] = lane
		// unset edge attributes default to the longest and fastest lane
		declared := findEdge(desc, lane.Edge)
		if declared.Length == 0 {
			edge.Length = math.Max(edge.Length, lane.Length)
		}
		if declared.SpeedLimit == 0 {
			edge.SpeedLimit = math.Max(edge.SpeedLimit, lane.SpeedLimit)
		}
		n.edges[lane.Edge] = edge
	}

	ids := make([]string, 0, len(n.edges))
	for id := range n.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	n.edgeIDs = ids
	for i, id := range ids {
		e := n.edges[id]
		if e.SpeedLimit <= 0 {
			return nil, fmt.Errorf("edge %q has no positive speed limit", id)
		}
		if e.Length < 0 {
			return nil, fmt.Errorf("edge %q has negative length %f", id, e.Length)
		}
		n.nodeOf[id] = int64(i)
		n.g.AddNode(simple.Node(i))
	}

	arcs := 0
	for _, e := range desc.Edges {
		u := n.nodeOf[e.ID]
		for _, to := range e.To {
			v, ok := n.nodeOf[to]
			if !ok {
				return nil, fmt.Errorf("edge %q has unknown successor %q", e.ID, to)
			}
			if u == v {
				continue
			}
			n.g.SetWeightedEdge(n.g.NewWeightedEdge(simple.Node(u), simple.Node(v), travelTime(n.edges[to])))
			arcs++
		}
	}
	logrus.Infof("network: %d edges, %d lanes, %d connections", len(n.edges), len(n.lanes), arcs)
	return n, nil
}

func findEdge(desc *Description, id string) EdgeSpec {
	for _, e := range desc.Edges {
		if e.ID == id {
			return e
		}
	}
	return EdgeSpec{}
}

func buildLane(l LaneSpec) (sim.Lane, error) {
	if l.ID == "" {
		return sim.Lane{}, fmt.Errorf("lane without id")
	}
	if len(l.Shape) < 2 {
		return sim.Lane{}, fmt.Errorf("lane %q needs at least 2 shape points, got %d", l.ID, len(l.Shape))
	}
	shape := make(orb.LineString, len(l.Shape))
	for i, p := range l.Shape {
		shape[i] = orb.Point(p)
	}
	length := l.Length
	if length == 0 {
		length = planar.Length(shape)
	}
	return sim.Lane{ID: l.ID, Edge: l.Edge, Shape: shape, Length: length, SpeedLimit: l.SpeedLimit}, nil
}

func travelTime(e sim.EdgeInfo) float64 {
	return e.Length / e.SpeedLimit
}

// Lane returns the lane with the given id.
func (n *Network) Lane(id string) (sim.Lane, error) {
	l, ok := n.lanes[id]
	if !ok {
		return sim.Lane{}, fmt.Errorf("unknown lane %q", id)
	}
	return l, nil
}

// Edge returns the edge with the given id.
func (n *Network) Edge(id string) (sim.EdgeInfo, error) {
	e, ok := n.edges[id]
	if !ok {
		return sim.EdgeInfo{}, fmt.Errorf("unknown edge %q", id)
	}
	return e, nil
}

// ShortestPath returns the fastest route from edge from to edge to, with
// sim.ErrNoPath when to is unreachable. A route from an edge to itself is
// that edge alone.
func (n *Network) ShortestPath(from, to string) (sim.Route, error) {
	u, ok := n.nodeOf[from]
	if !ok {
		return sim.Route{}, fmt.Errorf("unknown edge %q", from)
	}
	v, ok := n.nodeOf[to]
	if !ok {
		return sim.Route{}, fmt.Errorf("unknown edge %q", to)
	}
	start := travelTime(n.edges[from])
	if u == v {
		return sim.Route{Edges: []string{from}, Cost: start}, nil
	}

	tree, ok := n.trees[u]
	if !ok {
		tree = path.DijkstraFrom(simple.Node(u), n.g)
		n.trees[u] = tree
	}
	nodes, weight := tree.To(v)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return sim.Route{}, fmt.Errorf("%w: %s -> %s", sim.ErrNoPath, from, to)
	}
	edges := make([]string, len(nodes))
	for i, node := range nodes {
		edges[i] = n.edgeIDs[node.ID()]
	}
	return sim.Route{Edges: edges, Cost: start + weight}, nil
}

// LaneIDs returns every lane id in sorted order.
func (n *Network) LaneIDs() []string {
	ids := make([]string, 0, len(n.lanes))
	for id := range n.lanes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgeIDs returns every edge id in sorted order.
func (n *Network) EdgeIDs() []string {
	return append([]string(nil), n.edgeIDs...)
}
