package projection

import (
	"gonum.org/v1/gonum/floats"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

// SpeedEntry is a player's raw sprint speed and its league percentile.
type SpeedEntry struct {
	SprintSpeed float64
	Pct         float64
}

// SpeedTable maps tracking ids to speed entries. A nil table means sprint
// speed was unavailable.
type SpeedTable map[int]SpeedEntry

// BuildSpeedTable ranks every reading against the full distribution.
// Repeated ids keep their first reading.
func BuildSpeedTable(records []models.SpeedRecord) SpeedTable {
	speeds := make([]float64, len(records))
	for i, r := range records {
		speeds[i] = r.SprintSpeed
	}
	pcts := PercentileRanks(speeds)

	table := make(SpeedTable, len(records))
	for i, r := range records {
		if _, ok := table[r.TrackingID]; ok {
			continue
		}
		table[r.TrackingID] = SpeedEntry{SprintSpeed: r.SprintSpeed, Pct: pcts[i]}
	}
	return table
}

// LeagueStolenBases estimates the league-wide stolen base total from the
// qualified players in the primary year. Qualified players cover only part
// of the league, so their total is scaled up by the coverage ratio.
func (s Settings) LeagueStolenBases(y1 *models.YearTable) (total int, estimated bool) {
	if y1 == nil || len(y1.Lines) == 0 {
		return s.FallbackLeagueSB, false
	}
	sb := make([]float64, len(y1.Lines))
	for i, l := range y1.Lines {
		sb[i] = float64(l.StolenBases)
	}
	return int(floats.Sum(sb) / s.QualifiedSBCoverage), true
}
