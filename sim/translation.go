package sim

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// TranslationTable is the bijection between sensor ids and dense indices.
// Its order is fixed at construction and governs the row/column order of
// every matrix and grid.
type TranslationTable struct {
	order    []string
	index    map[string]int
	excluded []string
}

// NewTranslationTable enumerates sensorIDs in order, dropping every sensor
// whose id contains a traffic-light id. Those sensors belong to signal
// controllers and do not collect traffic data. The match is a plain
// substring test and can drop sensors whose id merely embeds another id.
func NewTranslationTable(sensorIDs, trafficLightIDs []string) *TranslationTable {
	t := &TranslationTable{
		order: make([]string, 0, len(sensorIDs)),
		index: make(map[string]int, len(sensorIDs)),
	}
	for _, id := range sensorIDs {
		if ownedByTrafficLight(id, trafficLightIDs) {
			t.excluded = append(t.excluded, id)
			continue
		}
		if _, dup := t.index[id]; dup {
			continue
		}
		t.index[id] = len(t.order)
		t.order = append(t.order, id)
	}
	logrus.Infof("translation table: %d sensors indexed, %d excluded as traffic-light owned",
		len(t.order), len(t.excluded))
	return t
}

func ownedByTrafficLight(sensorID string, trafficLightIDs []string) bool {
	for _, tl := range trafficLightIDs {
		// an empty id is a substring of everything
		if tl != "" && strings.Contains(sensorID, tl) {
			return true
		}
	}
	return false
}

// IndexOf returns the dense index of a sensor id.
func (t *TranslationTable) IndexOf(id string) (int, error) {
	i, ok := t.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSensor, id)
	}
	return i, nil
}

// IDOf returns the sensor id at a dense index.
func (t *TranslationTable) IDOf(i int) (string, error) {
	if i < 0 || i >= len(t.order) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(t.order))
	}
	return t.order[i], nil
}

// Order returns a copy of the canonical processing order.
func (t *TranslationTable) Order() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns N, the number of indexed sensors.
func (t *TranslationTable) Len() int { return len(t.order) }

// Excluded returns the sensor ids dropped as traffic-light owned.
func (t *TranslationTable) Excluded() []string {
	out := make([]string, len(t.excluded))
	copy(out, t.excluded)
	return out
}
