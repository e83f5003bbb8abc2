package modules

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/sensor-sim/sensor-sim/sim"
)

const msToKmh = 3.6

// SensorSeries logs one sensor's stored speed series in km/h. It is meant
// to run post-run, after smoothing.
type SensorSeries struct {
	sensorID string
	series   []float64
}

// NewSensorSeries creates a series reporter for sensorID.
func NewSensorSeries(sensorID string) *SensorSeries {
	return &SensorSeries{sensorID: sensorID}
}

func (m *SensorSeries) Name() string           { return "series:" + m.sensorID }
func (m *SensorSeries) TriggerInterval() int64 { return 0 }

func (m *SensorSeries) Update(s *sim.State) error {
	idx, err := s.Table.IndexOf(m.sensorID)
	if err != nil {
		return fmt.Errorf("series of %s: %w", m.sensorID, err)
	}
	rows := s.Store.Speed()
	if int64(len(rows)) > s.ProcessingStep {
		rows = rows[:s.ProcessingStep]
	}
	m.series = make([]float64, len(rows))
	for r, row := range rows {
		m.series[r] = row[idx]
	}
	floats.Scale(msToKmh, m.series)

	if len(m.series) == 0 {
		logrus.Infof("sensor %s: no rows collected", m.sensorID)
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"sensor": m.sensorID,
		"rows":   len(m.series),
		"min":    floats.Min(m.series),
		"max":    floats.Max(m.series),
	}).Infof("speed series (km/h): %.1f", m.series)
	return nil
}

// Series returns the last reported series in km/h.
func (m *SensorSeries) Series() []float64 { return append([]float64(nil), m.series...) }
