package projection

import (
	"database/sql"
	"sort"
	"time"

	"github.com/stitts-dev/mlb-projections/internal/identity"
	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/playerinfo"
)

// Inputs are the already-parsed sources for one role. Nil tables mean the
// source was unavailable; the matching columns stay null or neutral.
type Inputs struct {
	Seasons     [3]*models.YearTable
	Identity    identity.Map
	Expected    [2]ExpectedTable
	Speed       SpeedTable
	ProjectedPT map[int]float64
}

// Coverage counts how many rows each stage could fill.
type Coverage struct {
	Merged      int
	TrackingIDs int
	PlayerInfo  int
	Expected    int
	Speed       int
	ProjectedPT int
	AgesImputed int
	Dropped     int
	LeagueSB    int
}

// Batch is one role's rows moving through the pipeline.
type Batch struct {
	Role     models.Role
	Rows     []*MasterRow
	Coverage Coverage
}

// Assemble merges the seasons and joins every id-keyed source that does
// not need player info.
func (s Settings) Assemble(role models.Role, in Inputs) (*Batch, error) {
	rows, err := MergeSeasons(role, in.Seasons[0], in.Seasons[1], in.Seasons[2])
	if err != nil {
		return nil, err
	}

	b := &Batch{Role: role, Rows: rows}
	b.Coverage.Merged = len(rows)
	b.Coverage.TrackingIDs = AttachTrackingIDs(rows, in.Identity)

	rs := s.Role(role == models.RolePitcher)
	if rs.UseExpectedStats {
		b.Coverage.Expected = AttachExpected(rows, in.Expected[0], in.Expected[1])
	}
	if rs.UseSpeed {
		b.Coverage.Speed = AttachSpeed(rows, in.Speed, s.NeutralSpeedPct)
	}
	b.Coverage.ProjectedPT = s.AttachPlayingTime(rows, in.ProjectedPT)
	return b, nil
}

// Finish joins player info, derives ages, and scores every row. Rows
// without a single qualifying season are dropped.
func (s Settings) Finish(b *Batch, info *playerinfo.Cache, ageRef time.Time, leagueSB int) {
	AttachPlayerInfo(b.Rows, info)
	for _, r := range b.Rows {
		if r.BirthYear.Valid || r.MLBPosition != "" {
			b.Coverage.PlayerInfo++
		}
	}

	rs := s.Role(b.Role == models.RolePitcher)
	b.Coverage.AgesImputed = FillAges(b.Rows, ageRef, rs.MissingAgeFallback)
	if rs.UseSpeed {
		b.Coverage.LeagueSB = leagueSB
	}

	kept := b.Rows[:0]
	for _, r := range b.Rows {
		if !s.Compose(r, leagueSB) {
			b.Coverage.Dropped++
			continue
		}
		r.Position = s.Position(r)
		kept = append(kept, r)
	}
	b.Rows = kept
}

// Compose fills the model columns of one row and reports whether the row
// has a defined baseline.
func (s Settings) Compose(r *MasterRow, leagueSB int) bool {
	pitcher := r.IsPitcher()
	rs := s.Role(pitcher)

	base, ok := s.WeightedBase(r.FantasyPoints[0], r.FantasyPoints[1], r.FantasyPoints[2], rs.LeagueAverage)
	if !ok {
		return false
	}
	r.WeightedBase = base
	r.AgeMod = s.AgeModifier(r.Age)
	if rs.InvertPark {
		r.ParkFactor = s.PitcherParkFactor(r.Team)
	} else {
		r.ParkFactor = s.ParkFactor(r.Team)
	}
	r.PlayingTimeMod = s.PlayingTimeModifier(pitcher, r.ProjPT)

	r.XWOBAAdjustment = 0
	if rs.UseExpectedStats {
		r.XWOBAAdjustment = s.XWOBAAdjustment(r.expectedGap(0), r.expectedGap(1))
	}
	r.SpeedBonus = 0
	if rs.UseSpeed {
		r.SpeedBonus = s.SpeedBonus(r.SpeedPct, leagueSB)
	}

	r.ProjectedFP = r.WeightedBase*r.AgeMod*r.ParkFactor*r.PlayingTimeMod + r.XWOBAAdjustment + r.SpeedBonus
	r.FPMostRecent = 0
	if r.FantasyPoints[0].Valid {
		r.FPMostRecent = r.FantasyPoints[0].Float64
	}
	return true
}

// expectedGap prefers the Statcast wOBA and falls back to the leaderboard value.
func (r *MasterRow) expectedGap(i int) ExpectedGap {
	actual := r.SavantWOBA[i]
	if !actual.Valid {
		actual = r.WOBA[i]
	}
	return ExpectedGap{Expected: r.XWOBA[i], Actual: actual}
}

// Concat joins independently projected batches into one table.
func Concat(batches ...*Batch) []*MasterRow {
	n := 0
	for _, b := range batches {
		if b != nil {
			n += len(b.Rows)
		}
	}
	out := make([]*MasterRow, 0, n)
	for _, b := range batches {
		if b != nil {
			out = append(out, b.Rows...)
		}
	}
	return out
}

// Rank orders rows by ProjectedFP, highest first, keeping input order among
// equal scores, then sets percentile and change versus the most recent
// season.
func Rank(rows []*MasterRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ProjectedFP > rows[j].ProjectedFP
	})

	scores := make([]float64, len(rows))
	for i, r := range rows {
		scores[i] = r.ProjectedFP
	}
	pcts := PercentileRanks(scores)
	for i, r := range rows {
		r.Percentile = Round1(pcts[i])
		if r.FPMostRecent == 0 {
			r.DeltaPct = sql.NullFloat64{}
			continue
		}
		r.DeltaPct = models.Some(Round1((r.ProjectedFP - r.FPMostRecent) / r.FPMostRecent * 100))
	}
}
