package projection

import (
	"database/sql"
)

// WeightedBase blends up to three seasons of fantasy points, most recent
// first. A season counts only when present and positive. Fewer seasons
// mean more regression toward leagueAvg; with none the result is undefined
// and ok is false.
func (s Settings) WeightedBase(y1, y2, y3 sql.NullFloat64, leagueAvg float64) (value float64, ok bool) {
	vals := [3]float64{y1.Float64, y2.Float64, y3.Float64}
	has := [3]bool{
		y1.Valid && y1.Float64 > 0,
		y2.Valid && y2.Float64 > 0,
		y3.Valid && y3.Float64 > 0,
	}

	present := make([]float64, 0, 3)
	for i := range vals {
		if has[i] {
			present = append(present, vals[i])
		}
	}

	switch len(present) {
	case 3:
		w := s.ThreeYearWeights
		return w[0]*present[0] + w[1]*present[1] + w[2]*present[2], true
	case 2:
		w := s.TwoYearWeights
		return w[0]*present[0] + w[1]*present[1], true
	case 1:
		return present[0]*s.SingleSeasonWeight + leagueAvg*(1-s.SingleSeasonWeight), true
	default:
		return 0, false
	}
}

// SeasonsWithData counts the seasons WeightedBase would use.
func SeasonsWithData(vals ...sql.NullFloat64) int {
	n := 0
	for _, v := range vals {
		if v.Valid && v.Float64 > 0 {
			n++
		}
	}
	return n
}
