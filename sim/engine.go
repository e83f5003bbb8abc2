package sim

import "github.com/paulmach/orb"

// NoVehicleSpeed is the mean speed an engine reports for an interval in which
// no vehicle crossed the sensor.
const NoVehicleSpeed = -1.0

// Reading is the aggregated telemetry of one sensor over the last completed
// collection interval.
type Reading struct {
	MeanSpeed    float64 // m/s, NoVehicleSpeed if nothing was observed
	Occupancy    float64 // fraction of the interval the sensor was occupied
	VehicleCount float64
}

// SensorLocator places sensors on the road network.
type SensorLocator interface {
	LaneOf(sensorID string) (string, error)
	OffsetOf(sensorID string) (float64, error)
}

// Telemetry serves per-sensor readings for the last completed interval.
type Telemetry interface {
	LastInterval(sensorID string) (Reading, error)
}

// Engine is the live simulation process. It is stateful and must be accessed
// by a single caller for the duration of a run.
type Engine interface {
	SensorLocator
	Telemetry

	// Step advances simulated time by one tick.
	Step() error
	// Time returns the current simulated time in seconds.
	Time() float64
	Scale() float64
	SetScale(scale float64)

	SensorIDs() []string
	TrafficLightIDs() []string
}

// Lane is a single lane of the static network description.
type Lane struct {
	ID         string
	Edge       string
	Shape      orb.LineString
	Length     float64
	SpeedLimit float64
}

// EdgeInfo describes a road edge, the unit of routing.
type EdgeInfo struct {
	ID         string
	Length     float64
	SpeedLimit float64
}

// Route is the result of a shortest-path query between two edges.
// Cost is the free-flow travel time in seconds including both end edges.
type Route struct {
	Edges []string
	Cost  float64
}

// Network is the static road topology. Implementations return ErrNoPath
// from ShortestPath when the target edge is unreachable.
type Network interface {
	Lane(id string) (Lane, error)
	Edge(id string) (EdgeInfo, error)
	ShortestPath(from, to string) (Route, error)
}
