package projection

import (
	"database/sql"
	"math"
)

// AgeModifier rewards youth and penalizes age around the peak, symmetric
// and clamped.
func (s Settings) AgeModifier(age float64) float64 {
	return clamp(1+(s.PeakAge-age)*s.AgeSlope, s.AgeModMin, s.AgeModMax)
}

// ParkFactor is the hitter park effect for a team; unknown teams are neutral.
func (s Settings) ParkFactor(team string) float64 {
	if pf, ok := s.ParkFactors[s.NormalizeTeam(team)]; ok {
		return pf
	}
	return 1.0
}

// PitcherParkFactor inverts the hitter effect: a hitter-friendly park
// costs pitchers. Unknown teams stay neutral.
func (s Settings) PitcherParkFactor(team string) float64 {
	return 2.0 - s.ParkFactor(team)
}

// ProjectedPlayingTime picks the external projection when present,
// otherwise last season's actual capped at the role limit. Batters are
// also capped on the projected value.
func (s Settings) ProjectedPlayingTime(pitcher bool, projected sql.NullFloat64, recent sql.NullFloat64) float64 {
	rs := s.Role(pitcher)
	var pt float64
	switch {
	case projected.Valid && !math.IsNaN(projected.Float64):
		pt = projected.Float64
	case recent.Valid:
		pt = math.Min(recent.Float64, rs.PlayingTimeCap)
	default:
		return 0
	}
	if !pitcher {
		pt = clamp(pt, 0, rs.PlayingTimeCap)
	}
	return pt
}

// PlayingTimeModifier scales the baseline by projected volume.
func (s Settings) PlayingTimeModifier(pitcher bool, projected float64) float64 {
	rs := s.Role(pitcher)
	mod := math.Max(projected/rs.PlayingTimeBase, 0)
	if rs.PlayingTimeModMax > 0 {
		mod = math.Min(mod, rs.PlayingTimeModMax)
	}
	return mod
}

// ExpectedGap is one season's expected versus actual on-base quality.
type ExpectedGap struct {
	Expected sql.NullFloat64
	Actual   sql.NullFloat64
}

// XWOBAAdjustment turns the weighted expected-minus-actual gap into points.
// recent and prior are the two most recent seasons; a season qualifies only
// when both values exist and actual is positive. A positive gap means the
// player underperformed contact quality and is due to improve.
func (s Settings) XWOBAAdjustment(recent, prior ExpectedGap) float64 {
	var adj, wSum float64
	for i, g := range [2]ExpectedGap{recent, prior} {
		if !g.Expected.Valid || !g.Actual.Valid || g.Actual.Float64 <= 0 {
			continue
		}
		w := s.ExpectedWeights[i]
		adj += w * (g.Expected.Float64 - g.Actual.Float64)
		wSum += w
	}
	if wSum == 0 {
		return 0
	}
	return adj / wSum * s.ExpectedScale
}

// SpeedBonus credits fast players with stolen-base value scaled to the
// league's running environment.
func (s Settings) SpeedBonus(speedPct float64, leagueSB int) float64 {
	return (speedPct / 100.0) * s.SpeedWeight * (float64(leagueSB) / s.SpeedLeagueSBBaseline) * s.SpeedScale
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
