package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sensor-sim/sensor-sim/sim/trace"
)

// TopologyConfig groups the graph policy: which cost strategy, its
// binarization threshold and whether the diagonal is kept.
type TopologyConfig struct {
	Strategy  string  `yaml:"strategy"`   // "shortest-path" or "geometric"
	Threshold float64 `yaml:"threshold"`  // seconds for shortest-path, network units for geometric
	SelfLoops bool    `yaml:"self_loops"` // keep Binary[i][i] (default false)
}

// ModulesConfig groups the optional observer modules.
type ModulesConfig struct {
	ProgressInterval    int64    `yaml:"progress_interval,omitempty"`     // 0 = disabled; usually total_steps/100
	FlowControlInterval int64    `yaml:"flow_control_interval,omitempty"` // 0 = disabled
	SeriesSensors       []string `yaml:"series_sensors,omitempty"`        // sensors whose speed series is logged after the run
}

// RunConfig is the configuration surface of one pipeline run.
// Loaded from YAML via LoadRunConfig(path).
type RunConfig struct {
	TotalSteps         int64          `yaml:"total_steps"`         // loop length in ticks
	CollectionInterval int64          `yaml:"collection_interval"` // ticks between ingestions
	Capacity           int            `yaml:"capacity"`            // T, rows allocated in the feature store
	Seed               int64          `yaml:"seed"`
	TraceLevel         string         `yaml:"trace_level,omitempty"`
	Topology           TopologyConfig `yaml:"topology"`
	Modules            ModulesConfig  `yaml:"modules,omitempty"`
}

// DefaultRunConfig returns the values used when neither file nor flags set them.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		TotalSteps:         3600,
		CollectionInterval: 60,
		Capacity:           60,
		Seed:               42,
		TraceLevel:         string(trace.TraceLevelNone),
		Topology: TopologyConfig{
			Strategy:  StrategyShortestPath,
			Threshold: 60,
		},
	}
}

// LoadRunConfig reads a YAML run configuration on top of DefaultRunConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	cfg := DefaultRunConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and names.
func (c *RunConfig) Validate() error {
	if c.TotalSteps < 0 {
		return fmt.Errorf("total_steps must be non-negative, got %d", c.TotalSteps)
	}
	if c.CollectionInterval <= 0 {
		return fmt.Errorf("collection_interval must be positive, got %d", c.CollectionInterval)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be non-negative, got %d", c.Capacity)
	}
	if !ValidCostStrategies[c.Topology.Strategy] {
		return fmt.Errorf("unknown cost strategy %q; valid: %v", c.Topology.Strategy, CostStrategyNames())
	}
	if math.IsNaN(c.Topology.Threshold) || math.IsInf(c.Topology.Threshold, -1) {
		return fmt.Errorf("threshold must be a number or +Inf, got %f", c.Topology.Threshold)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q; valid: none, events", c.TraceLevel)
	}
	if c.Modules.ProgressInterval < 0 || c.Modules.FlowControlInterval < 0 {
		return fmt.Errorf("module intervals must be non-negative")
	}
	return nil
}

// ExpectedRows is the number of appends a run of this config performs:
// one per non-zero multiple of the interval below TotalSteps.
func (c *RunConfig) ExpectedRows() int64 {
	if c.TotalSteps <= 1 || c.CollectionInterval <= 0 {
		return 0
	}
	return (c.TotalSteps - 1) / c.CollectionInterval
}
