// Package replay provides a sim.Engine that plays back recorded detector
// readings instead of simulating traffic.
package replay

import (
	"fmt"

	"github.com/sensor-sim/sensor-sim/sim"
)

// Engine advances one tick per Step. LastInterval serves the reading of the
// last completed detector interval; each sensor's series repeats when the
// run outlasts it.
type Engine struct {
	interval      int64
	sensorIDs     []string
	trafficLights []string
	sensors       map[string]SensorSpec

	tick  int64
	scale float64
}

// New creates an engine at tick 0 with scale 1.
func New(sc *Scenario) (*Engine, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		interval:      sc.Interval,
		trafficLights: append([]string(nil), sc.TrafficLights...),
		sensors:       make(map[string]SensorSpec, len(sc.Sensors)),
		scale:         1.0,
	}
	for _, s := range sc.Sensors {
		e.sensorIDs = append(e.sensorIDs, s.ID)
		e.sensors[s.ID] = s
	}
	return e, nil
}

func (e *Engine) Step() error {
	e.tick++
	return nil
}

// Time is the simulated time in seconds; one tick is one second.
func (e *Engine) Time() float64 { return float64(e.tick) }

// Scale is the demand factor last set by a flow controller. Recorded
// readings are not rescaled.
func (e *Engine) Scale() float64 { return e.scale }

func (e *Engine) SetScale(s float64) { e.scale = s }

func (e *Engine) SensorIDs() []string { return append([]string(nil), e.sensorIDs...) }

func (e *Engine) TrafficLightIDs() []string { return append([]string(nil), e.trafficLights...) }

func (e *Engine) LaneOf(id string) (string, error) {
	s, err := e.sensor(id)
	if err != nil {
		return "", err
	}
	return s.Lane, nil
}

func (e *Engine) OffsetOf(id string) (float64, error) {
	s, err := e.sensor(id)
	if err != nil {
		return 0, err
	}
	return s.Offset, nil
}

// LastInterval returns the aggregate of the most recently completed
// interval. Before the first interval completes, or for a sensor without
// readings, it reports no vehicles.
func (e *Engine) LastInterval(id string) (sim.Reading, error) {
	s, err := e.sensor(id)
	if err != nil {
		return sim.Reading{}, err
	}
	completed := e.tick / e.interval
	if completed == 0 || len(s.Readings) == 0 {
		return sim.Reading{MeanSpeed: sim.NoVehicleSpeed}, nil
	}
	r := s.Readings[(completed-1)%int64(len(s.Readings))]
	return sim.Reading{MeanSpeed: r.Speed, Occupancy: r.Occupancy, VehicleCount: r.Count}, nil
}

func (e *Engine) sensor(id string) (SensorSpec, error) {
	s, ok := e.sensors[id]
	if !ok {
		return SensorSpec{}, fmt.Errorf("%w: %q", sim.ErrUnknownSensor, id)
	}
	return s, nil
}
