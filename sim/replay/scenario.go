package replay

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a recorded run: where each sensor sits and the aggregated
// readings it reported, one per detector interval.
type Scenario struct {
	Interval      int64        `yaml:"interval"`                 // engine ticks per detector interval
	Network       string       `yaml:"network,omitempty"`        // path of the network description, relative to the scenario
	TrafficLights []string     `yaml:"traffic_lights,omitempty"` // controller ids; sensors they own are excluded
	Sensors       []SensorSpec `yaml:"sensors"`
}

// SensorSpec places one sensor and carries its reading series.
type SensorSpec struct {
	ID       string        `yaml:"id"`
	Lane     string        `yaml:"lane"`
	Offset   float64       `yaml:"offset"`
	Readings []ReadingSpec `yaml:"readings,omitempty"`
}

// ReadingSpec is one interval aggregate. Speed -1 means no vehicle passed.
type ReadingSpec struct {
	Speed     float64 `yaml:"speed"`
	Occupancy float64 `yaml:"occupancy"`
	Count     float64 `yaml:"count"`
}

// LoadScenario reads a scenario from a YAML file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks the interval and sensor ids.
func (s *Scenario) Validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %d", s.Interval)
	}
	seen := make(map[string]bool, len(s.Sensors))
	for i, sensor := range s.Sensors {
		if sensor.ID == "" {
			return fmt.Errorf("sensors[%d]: id must not be empty", i)
		}
		if seen[sensor.ID] {
			return fmt.Errorf("sensors[%d]: duplicate id %q", i, sensor.ID)
		}
		seen[sensor.ID] = true
		if sensor.Lane == "" {
			return fmt.Errorf("sensor %q: lane must not be empty", sensor.ID)
		}
		if sensor.Offset < 0 {
			return fmt.Errorf("sensor %q: offset must be non-negative, got %f", sensor.ID, sensor.Offset)
		}
	}
	return nil
}
