package sim

import (
	"fmt"

	"github.com/paulmach/orb"
)

// fakeNetwork is a hand-wired Network: lanes and edges by id, routes by
// (from, to) edge pair. Missing routes are unreachable.
type fakeNetwork struct {
	lanes  map[string]Lane
	edges  map[string]EdgeInfo
	routes map[[2]string]float64
	calls  int
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		lanes:  make(map[string]Lane),
		edges:  make(map[string]EdgeInfo),
		routes: make(map[[2]string]float64),
	}
}

func (n *fakeNetwork) addLane(id, edge string, speed float64, shape ...orb.Point) {
	ls := orb.LineString(shape)
	n.lanes[id] = Lane{ID: id, Edge: edge, Shape: ls, Length: ShapeLength(ls), SpeedLimit: speed}
}

func (n *fakeNetwork) addEdge(id string, length, speed float64) {
	n.edges[id] = EdgeInfo{ID: id, Length: length, SpeedLimit: speed}
}

func (n *fakeNetwork) Lane(id string) (Lane, error) {
	l, ok := n.lanes[id]
	if !ok {
		return Lane{}, fmt.Errorf("unknown lane %q", id)
	}
	return l, nil
}

func (n *fakeNetwork) Edge(id string) (EdgeInfo, error) {
	e, ok := n.edges[id]
	if !ok {
		return EdgeInfo{}, fmt.Errorf("unknown edge %q", id)
	}
	return e, nil
}

func (n *fakeNetwork) ShortestPath(from, to string) (Route, error) {
	n.calls++
	cost, ok := n.routes[[2]string{from, to}]
	if !ok {
		return Route{}, ErrNoPath
	}
	return Route{Edges: []string{from, to}, Cost: cost}, nil
}

// fakeEngine is a scripted Engine. Readings are produced by a function of
// the engine tick so tests can assert exactly which interval was collected.
type fakeEngine struct {
	sensors       []string
	trafficLights []string
	lanes         map[string]string
	offsets       map[string]float64
	reading       func(tick int64, sensorID string) Reading

	tick    int64
	scale   float64
	stepErr error
	events  *[]string
}

func newFakeEngine(sensors ...string) *fakeEngine {
	return &fakeEngine{
		sensors: sensors,
		lanes:   make(map[string]string),
		offsets: make(map[string]float64),
		scale:   1.0,
		reading: func(int64, string) Reading { return Reading{MeanSpeed: NoVehicleSpeed} },
	}
}

func (e *fakeEngine) place(sensorID, laneID string, offset float64) {
	e.lanes[sensorID] = laneID
	e.offsets[sensorID] = offset
}

func (e *fakeEngine) Step() error {
	if e.stepErr != nil {
		return e.stepErr
	}
	e.tick++
	if e.events != nil {
		*e.events = append(*e.events, fmt.Sprintf("step:%d", e.tick-1))
	}
	return nil
}

func (e *fakeEngine) Time() float64             { return float64(e.tick) }
func (e *fakeEngine) Scale() float64            { return e.scale }
func (e *fakeEngine) SetScale(s float64)        { e.scale = s }
func (e *fakeEngine) SensorIDs() []string       { return e.sensors }
func (e *fakeEngine) TrafficLightIDs() []string { return e.trafficLights }

func (e *fakeEngine) LaneOf(id string) (string, error) {
	l, ok := e.lanes[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSensor, id)
	}
	return l, nil
}

func (e *fakeEngine) OffsetOf(id string) (float64, error) {
	o, ok := e.offsets[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSensor, id)
	}
	return o, nil
}

func (e *fakeEngine) LastInterval(id string) (Reading, error) {
	if e.events != nil {
		*e.events = append(*e.events, fmt.Sprintf("collect:%s", id))
	}
	return e.reading(e.tick, id), nil
}

// matrixCost serves costs from a fixed matrix addressed by sensor index.
type matrixCost struct {
	index     map[string]int
	cost      [][]float64
	threshold float64
	failAt    *[2]string
}

func newMatrixCost(ids []string, cost [][]float64, threshold float64) *matrixCost {
	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return &matrixCost{index: idx, cost: cost, threshold: threshold}
}

func (m *matrixCost) Name() string       { return "matrix" }
func (m *matrixCost) Threshold() float64 { return m.threshold }

func (m *matrixCost) Cost(a, b string, _ Network) (float64, error) {
	if m.failAt != nil && m.failAt[0] == a && m.failAt[1] == b {
		return 0, ErrUndefinedPosition
	}
	return m.cost[m.index[a]][m.index[b]], nil
}

// recordingObserver appends "<name>@<step>" to a shared log on every update.
type recordingObserver struct {
	name     string
	interval int64
	log      *[]string
	err      error
	states   []State
}

func (o *recordingObserver) Name() string           { return o.name }
func (o *recordingObserver) TriggerInterval() int64 { return o.interval }

func (o *recordingObserver) Update(s *State) error {
	*o.log = append(*o.log, fmt.Sprintf("%s@%d", o.name, s.Step))
	o.states = append(o.states, *s)
	return o.err
}

func countOnes(m [][]uint8) int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			n += int(v)
		}
	}
	return n
}

func constRefSpeeds(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
