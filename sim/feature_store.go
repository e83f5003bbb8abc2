package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const (
	// SmoothingHalfWindow is the distance from a row to the edge of its
	// smoothing window. Rows closer than this to either end of the grid
	// keep their raw speed.
	SmoothingHalfWindow = 4
)

// FeatureStore holds three fixed-capacity T×N time-series grids (speed,
// occupancy, vehicle count). Rows are written once, in order, by a single
// writer; reads only ever expose the written rows [0, cursor).
type FeatureStore struct {
	capacity  int
	width     int
	refSpeeds []float64
	edgeIndex [2][]int

	speed     [][]float64
	occupancy [][]float64
	vehicles  [][]float64
	cursor    int
}

// NewFeatureStore allocates zeroed grids of capacity rows × len(refSpeeds)
// columns. The edge index is copied; the store does not follow later graph
// rebuilds.
func NewFeatureStore(capacity int, refSpeeds []float64, edgeIndex [2][]int) (*FeatureStore, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("feature store capacity must be non-negative, got %d", capacity)
	}
	if len(edgeIndex[0]) != len(edgeIndex[1]) {
		return nil, fmt.Errorf("edge index rows differ in length: %d vs %d", len(edgeIndex[0]), len(edgeIndex[1]))
	}
	width := len(refSpeeds)
	fs := &FeatureStore{
		capacity:  capacity,
		width:     width,
		refSpeeds: append([]float64(nil), refSpeeds...),
		edgeIndex: [2][]int{append([]int{}, edgeIndex[0]...), append([]int{}, edgeIndex[1]...)},
		speed:     newGrid(capacity, width),
		occupancy: newGrid(capacity, width),
		vehicles:  newGrid(capacity, width),
	}
	logrus.Infof("feature store: created grids %dx%d, edge index 2x%d", capacity, width, len(edgeIndex[0]))
	return fs, nil
}

func newGrid(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	grid := make([][]float64, rows)
	for r := range grid {
		grid[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return grid
}

// Append writes one row of readings, in sensor index order, at the cursor.
// The speed channel stores IngestSpeed of each reading.
func (fs *FeatureStore) Append(row []Reading) error {
	if len(row) != fs.width {
		return fmt.Errorf("%w: got %d readings, want %d", ErrRowWidth, len(row), fs.width)
	}
	if fs.cursor >= fs.capacity {
		return fmt.Errorf("%w: all %d rows written", ErrCapacityExceeded, fs.capacity)
	}
	r := fs.cursor
	for i, reading := range row {
		fs.speed[r][i] = IngestSpeed(reading, fs.refSpeeds[i])
		fs.occupancy[r][i] = reading.Occupancy
		fs.vehicles[r][i] = reading.VehicleCount
	}
	fs.cursor++
	return nil
}

// Smooth applies a centered moving average to the speed channel, in place.
// Every row r with 4 <= r < T-4 becomes the mean of the raw speeds in rows
// [r-4, r+4), eight samples ending one row after r. All means are taken
// from the raw values as they were before the call. Rows outside the band
// are untouched. The whole allocated capacity is smoothed, not only the
// written rows.
//
// Smooth is meant to run once per run: a second call smooths the already
// smoothed values again.
func (fs *FeatureStore) Smooth() {
	lo, hi := SmoothingHalfWindow, fs.capacity-SmoothingHalfWindow
	if lo >= hi {
		return
	}
	raw := make([][]float64, fs.capacity)
	for r := range fs.speed {
		raw[r] = append([]float64(nil), fs.speed[r]...)
	}

	window := make([]float64, 2*SmoothingHalfWindow)
	for col := 0; col < fs.width; col++ {
		for r := lo; r < hi; r++ {
			for k := range window {
				window[k] = raw[r-SmoothingHalfWindow+k][col]
			}
			fs.speed[r][col] = stat.Mean(window, nil)
		}
	}
}

// Speed returns a copy of the written speed rows.
func (fs *FeatureStore) Speed() [][]float64 { return fs.written(fs.speed) }

// Occupancy returns a copy of the written occupancy rows.
func (fs *FeatureStore) Occupancy() [][]float64 { return fs.written(fs.occupancy) }

// VehicleCount returns a copy of the written vehicle count rows.
func (fs *FeatureStore) VehicleCount() [][]float64 { return fs.written(fs.vehicles) }

func (fs *FeatureStore) written(grid [][]float64) [][]float64 {
	out := make([][]float64, fs.cursor)
	for r := 0; r < fs.cursor; r++ {
		out[r] = append([]float64(nil), grid[r]...)
	}
	return out
}

func (fs *FeatureStore) rowMeanSpeed(r int) float64 {
	if r < 0 || r >= fs.cursor || fs.width == 0 {
		return 0
	}
	return stat.Mean(fs.speed[r], nil)
}

// EdgeIndex returns a copy of the 2×E edge index captured at construction.
func (fs *FeatureStore) EdgeIndex() [2][]int {
	return [2][]int{append([]int{}, fs.edgeIndex[0]...), append([]int{}, fs.edgeIndex[1]...)}
}

// ReferenceSpeed returns the fallback speed of sensor index i.
func (fs *FeatureStore) ReferenceSpeed(i int) (float64, error) {
	if i < 0 || i >= fs.width {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, fs.width)
	}
	return fs.refSpeeds[i], nil
}

// Cursor is the number of rows written so far.
func (fs *FeatureStore) Cursor() int { return fs.cursor }

// Capacity is T, the number of allocated rows.
func (fs *FeatureStore) Capacity() int { return fs.capacity }

// Width is N, the number of sensor columns.
func (fs *FeatureStore) Width() int { return fs.width }
