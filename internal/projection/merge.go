package projection

import (
	"database/sql"
	"errors"

	"github.com/stitts-dev/mlb-projections/internal/identity"
	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/playerinfo"
)

// ErrPrimaryYearMissing is returned when the most recent season is absent.
// Nothing can be projected without it.
var ErrPrimaryYearMissing = errors.New("primary year performance data missing")

const neutralSpeedPct = 50.0

// MergeSeasons builds one row per Y1 player and left-joins Y2 and Y3 by
// roster id. A nil y2 or y3 leaves those columns null. Repeated roster ids
// within a year keep their first line.
func MergeSeasons(role models.Role, y1, y2, y3 *models.YearTable) ([]*MasterRow, error) {
	if y1 == nil {
		return nil, ErrPrimaryYearMissing
	}

	rows := make([]*MasterRow, 0, len(y1.Lines))
	seen := make(map[int]struct{}, len(y1.Lines))
	for _, l := range y1.Lines {
		if _, dup := seen[l.RosterID]; dup {
			continue
		}
		seen[l.RosterID] = struct{}{}

		r := &MasterRow{
			Role:         role,
			RosterID:     l.RosterID,
			Name:         l.Name,
			Team:         l.Team,
			Games:        l.Games,
			GamesStarted: l.GamesStarted,
			StolenBases:  l.StolenBases,
			SpeedPct:     neutralSpeedPct,
		}
		r.FantasyPoints[0] = models.Some(l.FantasyPoints)
		r.PlayingTime[0] = models.Some(l.PlayingTime)
		r.WOBA[0] = l.OnBase
		rows = append(rows, r)
	}

	if idx := indexLines(y2); idx != nil {
		for _, r := range rows {
			if l, ok := idx[r.RosterID]; ok {
				r.FantasyPoints[1] = models.Some(l.FantasyPoints)
				r.PlayingTime[1] = models.Some(l.PlayingTime)
				r.WOBA[1] = l.OnBase
			}
		}
	}
	if idx := indexLines(y3); idx != nil {
		for _, r := range rows {
			if l, ok := idx[r.RosterID]; ok {
				r.FantasyPoints[2] = models.Some(l.FantasyPoints)
				r.PlayingTime[2] = models.Some(l.PlayingTime)
			}
		}
	}
	return rows, nil
}

func indexLines(t *models.YearTable) map[int]models.SeasonLine {
	if t == nil {
		return nil
	}
	idx := make(map[int]models.SeasonLine, len(t.Lines))
	for _, l := range t.Lines {
		if _, ok := idx[l.RosterID]; !ok {
			idx[l.RosterID] = l
		}
	}
	return idx
}

// AttachTrackingIDs resolves each row's tracking id. Unmapped rows stay null.
func AttachTrackingIDs(rows []*MasterRow, ids identity.Map) (mapped int) {
	for _, r := range rows {
		if id, ok := ids.Lookup(r.RosterID); ok {
			r.TrackingID = models.SomeInt(int64(id))
			mapped++
		} else {
			r.TrackingID = sql.NullInt64{}
		}
	}
	return mapped
}

// TrackingIDs lists the distinct resolved tracking ids in row order.
func TrackingIDs(rows []*MasterRow) []int {
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		if !r.TrackingID.Valid {
			continue
		}
		if _, ok := seen[r.TrackingID.Int64]; ok {
			continue
		}
		seen[r.TrackingID.Int64] = struct{}{}
		ids = append(ids, int(r.TrackingID.Int64))
	}
	return ids
}

// AttachPlayerInfo copies birth date and role code by tracking id. A nil
// cache leaves every row without biographical data.
func AttachPlayerInfo(rows []*MasterRow, cache *playerinfo.Cache) {
	for _, r := range rows {
		r.BirthYear, r.BirthMonth, r.BirthDay = sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}
		r.MLBPosition = ""
		if cache == nil || !r.TrackingID.Valid {
			continue
		}
		info, ok := cache.Get(int(r.TrackingID.Int64))
		if !ok {
			continue
		}
		r.BirthYear, r.BirthMonth, r.BirthDay = info.BirthYear, info.BirthMonth, info.BirthDay
		r.MLBPosition = info.Position
	}
}

// ExpectedTable maps tracking ids to one season's expected statistics. A
// nil table means the season's data was unavailable.
type ExpectedTable map[int]models.ExpectedStats

// BuildExpectedTable indexes expected statistics, first row per id wins.
func BuildExpectedTable(stats []models.ExpectedStats) ExpectedTable {
	t := make(ExpectedTable, len(stats))
	for _, s := range stats {
		if _, ok := t[s.TrackingID]; !ok {
			t[s.TrackingID] = s
		}
	}
	return t
}

// AttachExpected joins the two most recent seasons of expected statistics.
func AttachExpected(rows []*MasterRow, y1, y2 ExpectedTable) (joined int) {
	for _, r := range rows {
		hit := false
		for i, t := range [2]ExpectedTable{y1, y2} {
			r.XWOBA[i], r.SavantWOBA[i] = sql.NullFloat64{}, sql.NullFloat64{}
			if t == nil || !r.TrackingID.Valid {
				continue
			}
			if s, ok := t[int(r.TrackingID.Int64)]; ok {
				r.XWOBA[i] = models.Some(s.XWOBA)
				r.SavantWOBA[i] = s.WOBA
				hit = true
			}
		}
		if hit {
			joined++
		}
	}
	return joined
}

// AttachSpeed sets the speed percentile. Rows missing from the table, and
// every row when the table itself is nil, get the neutral percentile.
func AttachSpeed(rows []*MasterRow, table SpeedTable, neutral float64) (joined int) {
	for _, r := range rows {
		r.SprintSpeed = sql.NullFloat64{}
		r.SpeedPct = neutral
		if table == nil || !r.TrackingID.Valid {
			continue
		}
		if e, ok := table[int(r.TrackingID.Int64)]; ok {
			r.SprintSpeed = models.Some(e.SprintSpeed)
			r.SpeedPct = e.Pct
			joined++
		}
	}
	return joined
}

// AttachPlayingTime records the external playing time projection, by roster
// id, and derives the value the modifiers use. A nil map means no
// projection source was available.
func (s Settings) AttachPlayingTime(rows []*MasterRow, projected map[int]float64) (joined int) {
	for _, r := range rows {
		r.ProjectedPT = sql.NullFloat64{}
		if v, ok := projected[r.RosterID]; ok {
			r.ProjectedPT = models.Some(v)
			joined++
		}
		r.ProjPT = s.ProjectedPlayingTime(r.IsPitcher(), r.ProjectedPT, r.PlayingTime[0])
	}
	return joined
}
