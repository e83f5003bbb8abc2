// Package modules provides observers that hook into the scheduler: run
// progress reporting, time-of-week flow control and sensor series output.
package modules

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sensor-sim/sensor-sim/sim"
)

// ProgressReport is what Progress logged on its last update.
type ProgressReport struct {
	Percent     float64
	SimTime     float64
	Scale       float64
	LastLap     time.Duration // wall time since the previous update
	ETA         time.Duration
	Initialized bool
}

// Progress logs completion, simulated time, engine scale and an ETA
// extrapolated from the mean wall time between its updates. The first
// update only starts the clock.
type Progress struct {
	interval int64
	now      func() time.Time

	last    time.Time
	laps    []float64 // seconds
	report  ProgressReport
	updates int
}

// NewProgress creates a progress observer firing every interval steps,
// typically total steps / 100.
func NewProgress(interval int64) *Progress {
	return &Progress{interval: interval, now: time.Now}
}

func (p *Progress) Name() string           { return "progress" }
func (p *Progress) TriggerInterval() int64 { return p.interval }

func (p *Progress) Update(s *sim.State) error {
	now := p.now()
	p.updates++
	if p.updates == 1 {
		p.last = now
		return nil
	}
	lap := now.Sub(p.last)
	p.last = now
	p.laps = append(p.laps, lap.Seconds())

	var mean float64
	for _, l := range p.laps {
		mean += l
	}
	mean /= float64(len(p.laps))

	remaining := (s.TotalSteps - s.Step) / p.interval
	p.report = ProgressReport{
		SimTime:     s.Engine.Time(),
		Scale:       s.Engine.Scale(),
		LastLap:     lap,
		ETA:         time.Duration(mean * float64(remaining) * float64(time.Second)),
		Initialized: true,
	}
	if s.TotalSteps > 0 {
		p.report.Percent = 100 * float64(s.Step) / float64(s.TotalSteps)
	}

	logrus.WithFields(logrus.Fields{
		"run":      s.RunID,
		"sim_time": p.report.SimTime,
		"scale":    p.report.Scale,
		"last_lap": lap.Round(10 * time.Millisecond),
		"eta":      p.report.ETA.Round(time.Second),
	}).Infof("[tick %07d] %.0f%% done", s.Step, p.report.Percent)
	return nil
}

// Report returns the last logged report.
func (p *Progress) Report() ProgressReport { return p.report }
