package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb/planar"
)

// CostStrategy is a pluggable pairwise cost between two sensors.
// The threshold is only consumed by the GraphBuilder for binarization.
type CostStrategy interface {
	Name() string
	Cost(a, b string, net Network) (float64, error)
	Threshold() float64
}

const (
	StrategyShortestPath = "shortest-path"
	StrategyGeometric    = "geometric"
)

// ValidCostStrategies is the set of recognized strategy names.
var ValidCostStrategies = map[string]bool{StrategyShortestPath: true, StrategyGeometric: true}

// CostStrategyNames returns the recognized strategy names in sorted order.
func CostStrategyNames() []string {
	names := make([]string, 0, len(ValidCostStrategies))
	for name := range ValidCostStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCostStrategy creates a strategy by name.
func NewCostStrategy(name string, threshold float64, locator SensorLocator) (CostStrategy, error) {
	switch name {
	case StrategyShortestPath:
		return NewShortestPathCost(locator, threshold), nil
	case StrategyGeometric:
		return NewGeometricDistanceCost(locator, threshold), nil
	default:
		return nil, fmt.Errorf("unknown cost strategy %q; valid: %v", name, CostStrategyNames())
	}
}

// ShortestPathCost connects sensors by free-flow travel time. The fastest
// route between the containing edges is corrected for the partial edge
// segments around the two sensors.
type ShortestPathCost struct {
	locator   SensorLocator
	threshold float64
}

// NewShortestPathCost creates a travel-time strategy. Costs are in seconds.
func NewShortestPathCost(locator SensorLocator, threshold float64) *ShortestPathCost {
	return &ShortestPathCost{locator: locator, threshold: threshold}
}

func (s *ShortestPathCost) Name() string       { return StrategyShortestPath }
func (s *ShortestPathCost) Threshold() float64 { return s.threshold }

// Cost returns route cost minus the time from a's position to the end of
// its edge and minus the time from the start of b's edge to b's position.
// Unreachable pairs cost +Inf.
func (s *ShortestPathCost) Cost(a, b string, net Network) (float64, error) {
	edgeA, offA, err := s.placeOnEdge(a, net)
	if err != nil {
		return 0, err
	}
	edgeB, offB, err := s.placeOnEdge(b, net)
	if err != nil {
		return 0, err
	}

	route, err := net.ShortestPath(edgeA.ID, edgeB.ID)
	if errors.Is(err, ErrNoPath) {
		return math.Inf(1), nil
	}
	if err != nil {
		return 0, err
	}
	if math.IsInf(route.Cost, 1) {
		return route.Cost, nil
	}

	tailA := (edgeA.Length - offA) / edgeA.SpeedLimit
	headB := offB / edgeB.SpeedLimit
	return route.Cost - tailA - headB, nil
}

func (s *ShortestPathCost) placeOnEdge(sensorID string, net Network) (EdgeInfo, float64, error) {
	laneID, err := s.locator.LaneOf(sensorID)
	if err != nil {
		return EdgeInfo{}, 0, err
	}
	offset, err := s.locator.OffsetOf(sensorID)
	if err != nil {
		return EdgeInfo{}, 0, err
	}
	lane, err := net.Lane(laneID)
	if err != nil {
		return EdgeInfo{}, 0, err
	}
	edge, err := net.Edge(lane.Edge)
	if err != nil {
		return EdgeInfo{}, 0, err
	}
	if edge.SpeedLimit <= 0 {
		return EdgeInfo{}, 0, fmt.Errorf("%w: edge %s has speed limit %g", ErrUndefinedPosition, edge.ID, edge.SpeedLimit)
	}
	return edge, offset, nil
}

// GeometricDistanceCost connects sensors by the planar distance between
// their absolute positions. It is symmetric.
type GeometricDistanceCost struct {
	locator   SensorLocator
	threshold float64
}

// NewGeometricDistanceCost creates a distance strategy. Costs are in network units.
func NewGeometricDistanceCost(locator SensorLocator, threshold float64) *GeometricDistanceCost {
	return &GeometricDistanceCost{locator: locator, threshold: threshold}
}

func (g *GeometricDistanceCost) Name() string       { return StrategyGeometric }
func (g *GeometricDistanceCost) Threshold() float64 { return g.threshold }

func (g *GeometricDistanceCost) Cost(a, b string, net Network) (float64, error) {
	posA, err := SensorPosition(a, g.locator, net)
	if err != nil {
		return 0, err
	}
	posB, err := SensorPosition(b, g.locator, net)
	if err != nil {
		return 0, err
	}
	return planar.Distance(posA, posB), nil
}
