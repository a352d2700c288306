package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

func TestResolve_DropsIncompleteAndNonNumericRows(t *testing.T) {
	records := []models.RegistryRecord{
		{RosterID: "19755", TrackingID: "660271"},
		{RosterID: "", TrackingID: "545361"},
		{RosterID: "10155", TrackingID: ""},
		{RosterID: "sa3011918", TrackingID: "665742"},
		{RosterID: "15640", TrackingID: "592450.0"},
	}

	m := Resolve(records)

	assert.Equal(t, 2, m.Len())
	id, ok := m.Lookup(19755)
	assert.True(t, ok)
	assert.Equal(t, 660271, id)

	id, ok = m.Lookup(15640)
	assert.True(t, ok)
	assert.Equal(t, 592450, id, "integral floats are coerced")

	_, ok = m.Lookup(10155)
	assert.False(t, ok)
}

func TestResolve_FirstOccurrenceWins(t *testing.T) {
	records := []models.RegistryRecord{
		{RosterID: "100", TrackingID: "1"},
		{RosterID: "200", TrackingID: "2"},
		{RosterID: "100", TrackingID: "3"},
	}

	m := Resolve(records)

	id, _ := m.Lookup(100)
	assert.Equal(t, 1, id)
	id, _ = m.Lookup(200)
	assert.Equal(t, 2, id)
	assert.Equal(t, 2, m.Len())
}

func TestResolve_Idempotent(t *testing.T) {
	records := []models.RegistryRecord{
		{RosterID: "7", TrackingID: "70"},
		{RosterID: "5", TrackingID: "50"},
		{RosterID: "7", TrackingID: "71"},
		{RosterID: "x", TrackingID: "99"},
	}

	first := Resolve(records)
	second := Resolve(records)

	assert.Equal(t, first, second)
	id, _ := first.Lookup(7)
	assert.Equal(t, 70, id)
}

func TestMap_ZeroValueIsEmpty(t *testing.T) {
	var m Map
	_, ok := m.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}
