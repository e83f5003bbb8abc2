package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSensor is returned when a sensor id is not part of the translation table.
	ErrUnknownSensor = errors.New("unknown sensor")
	// ErrIndexOutOfRange is returned for sensor indices outside [0, N).
	ErrIndexOutOfRange = errors.New("sensor index out of range")
	// ErrCapacityExceeded is returned when a feature store has no free rows left.
	ErrCapacityExceeded = errors.New("feature store capacity exceeded")
	// ErrRowWidth is returned when an appended row does not hold exactly N readings.
	ErrRowWidth = errors.New("row width does not match sensor count")
	// ErrUndefinedPosition is returned when a sensor offset cannot be placed on its lane shape.
	ErrUndefinedPosition = errors.New("undefined sensor position")
	// ErrNoPath is returned by a Network when two edges are not connected.
	ErrNoPath = errors.New("no path")
	// ErrInvalidTrigger is returned when an observer reports a non-positive trigger interval.
	ErrInvalidTrigger = errors.New("observer trigger interval must be positive")
	// ErrSchedulerState is returned when Run is called on a scheduler that already ran.
	ErrSchedulerState = errors.New("scheduler is not idle")
)

// GraphBuildError aborts a graph build. It names the sensor pair whose cost
// could not be computed.
type GraphBuildError struct {
	From string
	To   string
	Err  error
}

func (e *GraphBuildError) Error() string {
	return fmt.Sprintf("graph build failed at pair (%s, %s): %v", e.From, e.To, e.Err)
}

func (e *GraphBuildError) Unwrap() error { return e.Err }
