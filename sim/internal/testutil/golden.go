// Package testutil provides shared test infrastructure for the sensor
// pipeline: the golden run dataset and assertion helpers used across sim/
// test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one recorded run: inputs, topology policy and loop
// shape, plus what the pipeline must produce.
type GoldenTestCase struct {
	Name               string        `json:"name"`
	Scenario           string        `json:"scenario"` // relative to testdata/
	Network            string        `json:"network"`  // relative to testdata/
	Strategy           string        `json:"strategy"`
	Threshold          float64       `json:"threshold"`
	SelfLoops          bool          `json:"self_loops"`
	TotalSteps         int64         `json:"total_steps"`
	CollectionInterval int64         `json:"collection_interval"`
	Capacity           int           `json:"capacity"`
	Expected           GoldenOutputs `json:"expected"`
}

// GoldenOutputs is the expected state after the run.
type GoldenOutputs struct {
	Order []string `json:"order"`
	// Edges in row-major order as [from, to] index pairs.
	Edges [][2]int `json:"edges"`
	// Costs is the full cost matrix; +Inf entries are written as null and
	// skipped.
	Costs           [][]*float64 `json:"costs"`
	ProcessingSteps int64        `json:"processing_steps"`
	Speed           [][]float64  `json:"speed"`
}

// TestdataPath resolves a file in the repository's testdata/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func TestdataPath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()
	data, err := os.ReadFile(TestdataPath(t, "goldendataset.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == got {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
