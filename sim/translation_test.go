package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslationTable_ExcludesTrafficLightOwnedSensors(t *testing.T) {
	// GIVEN sensors where two embed a traffic-light id
	sensors := []string{"det_a", "e2_tls7_0", "det_b", "tls7_loop", "det_c"}

	// WHEN the table is built
	table := NewTranslationTable(sensors, []string{"tls7"})

	// THEN owned sensors are dropped and indices follow enumeration order
	assert.Equal(t, []string{"det_a", "det_b", "det_c"}, table.Order())
	assert.Equal(t, []string{"e2_tls7_0", "tls7_loop"}, table.Excluded())
	assert.Equal(t, 3, table.Len())
	i, err := table.IndexOf("det_b")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestNewTranslationTable_SubstringMatchOverExcludes(t *testing.T) {
	// GIVEN a traffic light "1" and a sensor whose id merely contains "1"
	table := NewTranslationTable([]string{"det1", "det2"}, []string{"1"})

	// THEN the heuristic drops det1 as well
	assert.Equal(t, []string{"det2"}, table.Order())
}

func TestNewTranslationTable_EmptyTrafficLightIDIgnored(t *testing.T) {
	table := NewTranslationTable([]string{"a", "b"}, []string{""})
	assert.Equal(t, 2, table.Len())
}

func TestNewTranslationTable_DuplicateKeepsFirstIndex(t *testing.T) {
	table := NewTranslationTable([]string{"a", "b", "a"}, nil)
	assert.Equal(t, []string{"a", "b"}, table.Order())
}

func TestTranslationTable_RoundTrip(t *testing.T) {
	table := NewTranslationTable([]string{"x", "y", "z"}, nil)
	for i, id := range table.Order() {
		gotIdx, err := table.IndexOf(id)
		require.NoError(t, err)
		assert.Equal(t, i, gotIdx)
		gotID, err := table.IDOf(i)
		require.NoError(t, err)
		assert.Equal(t, id, gotID)
	}
}

func TestTranslationTable_Errors(t *testing.T) {
	table := NewTranslationTable([]string{"x"}, nil)

	_, err := table.IndexOf("nope")
	assert.True(t, errors.Is(err, ErrUnknownSensor), "got %v", err)

	for _, idx := range []int{-1, 1, 100} {
		_, err := table.IDOf(idx)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange), "index %d: got %v", idx, err)
	}
}

func TestTranslationTable_OrderIsCopy(t *testing.T) {
	table := NewTranslationTable([]string{"x", "y"}, nil)
	order := table.Order()
	order[0] = "mutated"
	assert.Equal(t, []string{"x", "y"}, table.Order())
}
