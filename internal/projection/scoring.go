package projection

import (
	"math"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

// BatterPoints scores one batting season.
func BatterPoints(b models.BattingSeason, w BattingWeights) float64 {
	singles := math.Max(float64(b.Hits-b.Doubles-b.Triples-b.HomeRuns), 0)
	return singles*w.Single +
		float64(b.Doubles)*w.Double +
		float64(b.Triples)*w.Triple +
		float64(b.HomeRuns)*w.HomeRun +
		float64(b.RBI)*w.RBI +
		float64(b.Runs)*w.Run +
		float64(b.StolenBases)*w.StolenBase +
		float64(b.Walks)*w.Walk +
		float64(b.Strikeouts)*w.Strikeout
}

// PitcherPoints scores one pitching season.
func PitcherPoints(p models.PitchingSeason, w PitchingWeights) float64 {
	return p.InningsPitched*w.InningPitched +
		float64(p.Strikeouts)*w.Strikeout +
		float64(p.Walks)*w.Walk +
		float64(p.HitsAllowed)*w.HitAllowed +
		float64(p.EarnedRuns)*w.EarnedRun +
		float64(p.Wins)*w.Win +
		float64(p.Saves)*w.Save
}

// BatterTable converts a season of batting lines into a YearTable.
func BatterTable(year int, seasons []models.BattingSeason, w BattingWeights) *models.YearTable {
	lines := make([]models.SeasonLine, 0, len(seasons))
	for _, b := range seasons {
		lines = append(lines, models.SeasonLine{
			RosterID:      b.RosterID,
			Name:          b.Name,
			Team:          b.Team,
			Games:         b.Games,
			PlayingTime:   b.PA,
			OnBase:        b.WOBA,
			StolenBases:   b.StolenBases,
			FantasyPoints: BatterPoints(b, w),
		})
	}
	return &models.YearTable{Year: year, Lines: lines}
}

// PitcherTable converts a season of pitching lines into a YearTable.
func PitcherTable(year int, seasons []models.PitchingSeason, w PitchingWeights) *models.YearTable {
	lines := make([]models.SeasonLine, 0, len(seasons))
	for _, p := range seasons {
		lines = append(lines, models.SeasonLine{
			RosterID:      p.RosterID,
			Name:          p.Name,
			Team:          p.Team,
			Games:         p.Games,
			GamesStarted:  p.GamesStarted,
			PlayingTime:   p.InningsPitched,
			FantasyPoints: PitcherPoints(p, w),
		})
	}
	return &models.YearTable{Year: year, Lines: lines}
}
