package sim

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// offsetTolerance absorbs float noise when a sensor sits exactly at the end
// of its lane.
const offsetTolerance = 1e-9

// PositionAlong returns the absolute position of a point located offset
// units along the polyline. It walks the segments accumulating their length
// until the cumulative length reaches the offset, then interpolates linearly
// inside the straddling segment:
//
//	pos = (1-t)*segStart + t*segEnd, t = remaining / segmentLength
func PositionAlong(shape orb.LineString, offset float64) (orb.Point, error) {
	if len(shape) < 2 {
		return orb.Point{}, fmt.Errorf("%w: shape has %d points", ErrUndefinedPosition, len(shape))
	}
	if offset < 0 {
		return orb.Point{}, fmt.Errorf("%w: negative offset %g", ErrUndefinedPosition, offset)
	}

	total := 0.0
	for i := 1; i < len(shape); i++ {
		start, end := shape[i-1], shape[i]
		segment := planar.Distance(start, end)
		if segment == 0 {
			continue
		}
		total += segment
		if total >= offset {
			remaining := segment - (total - offset)
			t := remaining / segment
			return orb.Point{
				(1-t)*start[0] + t*end[0],
				(1-t)*start[1] + t*end[1],
			}, nil
		}
	}

	// offset sits past the end, only float noise is tolerated
	if offset-total <= offsetTolerance && total > 0 {
		return shape[len(shape)-1], nil
	}
	return orb.Point{}, fmt.Errorf("%w: offset %g exceeds shape length %g", ErrUndefinedPosition, offset, total)
}

// ShapeLength is the planar length of a lane shape.
func ShapeLength(shape orb.LineString) float64 {
	return planar.Length(shape)
}

// SensorPosition places a sensor on the plane using its lane shape and offset.
func SensorPosition(sensorID string, locator SensorLocator, net Network) (orb.Point, error) {
	laneID, err := locator.LaneOf(sensorID)
	if err != nil {
		return orb.Point{}, err
	}
	offset, err := locator.OffsetOf(sensorID)
	if err != nil {
		return orb.Point{}, err
	}
	lane, err := net.Lane(laneID)
	if err != nil {
		return orb.Point{}, err
	}
	pos, err := PositionAlong(lane.Shape, offset)
	if err != nil {
		return orb.Point{}, fmt.Errorf("sensor %s on lane %s: %w", sensorID, laneID, err)
	}
	return pos, nil
}
