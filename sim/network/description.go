package network

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Description is the YAML form of a road network: directed edges with their
// successors, and the lanes that carry sensors.
type Description struct {
	Edges []EdgeSpec `yaml:"edges"`
	Lanes []LaneSpec `yaml:"lanes"`
}

// EdgeSpec describes one directed road edge.
type EdgeSpec struct {
	ID         string   `yaml:"id"`
	Length     float64  `yaml:"length,omitempty"` // 0 = longest lane of the edge
	SpeedLimit float64  `yaml:"speed,omitempty"`  // m/s; 0 = fastest lane of the edge
	To         []string `yaml:"to,omitempty"`     // successor edge ids
}

// LaneSpec describes one lane and its polyline.
type LaneSpec struct {
	ID         string       `yaml:"id"`
	Edge       string       `yaml:"edge"`
	SpeedLimit float64      `yaml:"speed"`
	Length     float64      `yaml:"length,omitempty"` // 0 = planar length of the shape
	Shape      [][2]float64 `yaml:"shape"`
}

// Load reads a network description from a YAML file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network description: %w", err)
	}
	return Parse(data)
}

// Parse decodes a network description from YAML bytes.
func Parse(data []byte) (*Description, error) {
	var desc Description
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("parsing network description: %w", err)
	}
	return &desc, nil
}
