// Package identity reconciles the two player id namespaces: the roster id
// used by the season leaderboards and the tracking id used by Statcast and
// the people endpoint.
package identity

import (
	"strconv"
	"strings"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

// Map resolves roster ids to tracking ids. The zero value is an empty map.
type Map struct {
	byRoster map[int]int
}

// Resolve builds a Map from raw register rows. Rows with a blank or
// non-numeric id on either side are dropped; when a roster id repeats, the
// first row in input order wins.
func Resolve(records []models.RegistryRecord) Map {
	m := Map{byRoster: make(map[int]int, len(records))}
	for _, rec := range records {
		rosterID, ok := parseID(rec.RosterID)
		if !ok {
			continue
		}
		trackingID, ok := parseID(rec.TrackingID)
		if !ok {
			continue
		}
		if _, seen := m.byRoster[rosterID]; seen {
			continue
		}
		m.byRoster[rosterID] = trackingID
	}
	return m
}

// Lookup returns the tracking id for a roster id.
func (m Map) Lookup(rosterID int) (int, bool) {
	id, ok := m.byRoster[rosterID]
	return id, ok
}

// Len is the number of mapped roster ids.
func (m Map) Len() int {
	return len(m.byRoster)
}

// parseID accepts integers and integral floats ("12345", "12345.0"), the two
// shapes register exports use.
func parseID(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
