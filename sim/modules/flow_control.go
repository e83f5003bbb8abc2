package modules

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sensor-sim/sensor-sim/sim"
)

// WeekHour is an hour of the week counted from Monday 00:00, in [0, 168).
type WeekHour int

const hoursPerWeek = 7 * 24

// At returns the week hour for day (0 = Monday) and hour of day.
func At(day, hour int) WeekHour { return WeekHour(day*24 + hour) }

func weekHourOf(t time.Time) WeekHour {
	day := (int(t.Weekday()) + 6) % 7
	return At(day, t.Hour())
}

// FlowRule draws the engine scale uniformly from [Min, Max] while the
// simulated clock is within [From, To], both ends inclusive. A rule whose
// To precedes From wraps over the end of the week.
type FlowRule struct {
	From, To WeekHour
	Min, Max float64
}

func (r FlowRule) contains(h WeekHour) bool {
	from, to := r.From, r.To
	if to < from {
		to += hoursPerWeek
		if h < from {
			h += hoursPerWeek
		}
	}
	return from <= h && h <= to
}

// DefaultFlowRules is a weekly demand profile: morning and evening peaks on
// workdays, a quieter weekend and low demand at night.
var DefaultFlowRules = []FlowRule{
	// Monday
	{At(0, 6), At(0, 9), 2.5, 3.0},
	{At(0, 9), At(0, 16), 1.8, 2.0},
	{At(0, 16), At(0, 18), 2.5, 3.0},
	{At(0, 18), At(0, 21), 1.1, 1.4},
	{At(0, 21), At(1, 6), 0.1, 0.2},
	// Tuesday
	{At(1, 6), At(1, 9), 2.5, 3.0},
	{At(1, 9), At(1, 16), 1.4, 1.8},
	{At(1, 16), At(1, 18), 2.5, 3.0},
	{At(1, 18), At(1, 21), 1.1, 1.4},
	{At(1, 21), At(2, 6), 0.1, 0.2},
	// Wednesday
	{At(2, 6), At(2, 9), 2.5, 3.0},
	{At(2, 9), At(2, 16), 1.4, 1.8},
	{At(2, 16), At(2, 18), 2.5, 3.0},
	{At(2, 18), At(2, 21), 1.1, 1.4},
	{At(2, 21), At(3, 6), 0.1, 0.2},
	// Thursday
	{At(3, 6), At(3, 9), 2.5, 3.0},
	{At(3, 9), At(3, 16), 1.4, 1.8},
	{At(3, 16), At(3, 18), 2.5, 3.0},
	{At(3, 18), At(3, 21), 1.1, 1.4},
	{At(3, 21), At(4, 6), 0.1, 0.2},
	// Friday
	{At(4, 6), At(4, 9), 2.5, 3.0},
	{At(4, 9), At(4, 16), 1.4, 1.8},
	{At(4, 16), At(4, 18), 2.5, 3.0},
	{At(4, 18), At(4, 21), 1.1, 1.4},
	{At(4, 21), At(5, 10), 0.1, 0.2},
	// Saturday
	{At(5, 10), At(5, 13), 0.7, 0.9},
	{At(5, 13), At(5, 16), 1.1, 1.4},
	{At(5, 16), At(5, 20), 0.7, 0.9},
	{At(5, 20), At(5, 22), 0.4, 0.5},
	{At(5, 22), At(5, 23), 0.6, 0.7},
	{At(5, 23), At(6, 12), 0.1, 0.3},
	// Sunday
	{At(6, 12), At(6, 18), 0.4, 0.7},
	{At(6, 18), At(6, 22), 0.5, 0.8},
	{At(6, 22), At(0, 6), 0.1, 0.2},
}

// DefaultFlowStart is the wall-clock time of simulated second zero, a Monday.
var DefaultFlowStart = time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC)

// FlowControl steers the engine scale by time of week. The first rule
// containing the current hour wins; with no match the scale is left alone.
type FlowControl struct {
	interval int64
	rules    []FlowRule
	start    time.Time
	rng      *rand.Rand

	lastHour int
	matched  *FlowRule
}

// NewFlowControl creates a flow controller drawing from the flow-control
// subsystem of rng.
func NewFlowControl(interval int64, rng *sim.PartitionedRNG, rules []FlowRule, start time.Time) *FlowControl {
	return &FlowControl{
		interval: interval,
		rules:    rules,
		start:    start,
		rng:      rng.ForSubsystem(sim.SubsystemFlowControl),
		lastHour: -1,
	}
}

func (f *FlowControl) Name() string           { return "flow-control" }
func (f *FlowControl) TriggerInterval() int64 { return f.interval }

func (f *FlowControl) Update(s *sim.State) error {
	now := f.start.Add(time.Duration(s.Engine.Time()) * time.Second)
	h := weekHourOf(now)

	f.matched = nil
	for i := range f.rules {
		if f.rules[i].contains(h) {
			r := f.rules[i]
			f.matched = &r
			s.Engine.SetScale(r.Min + f.rng.Float64()*(r.Max-r.Min))
			break
		}
	}

	if now.Hour() != f.lastHour {
		f.lastHour = now.Hour()
		entry := logrus.WithFields(logrus.Fields{"weekday": now.Weekday().String(), "hour": now.Hour()})
		if f.matched != nil {
			entry.Infof("[tick %07d] flow scale in [%.1f, %.1f], now %.3f", s.Step, f.matched.Min, f.matched.Max, s.Engine.Scale())
		} else {
			entry.Infof("[tick %07d] no flow rule, scale stays %.3f", s.Step, s.Engine.Scale())
		}
	}
	return nil
}
