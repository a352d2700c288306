package projection

import (
	"database/sql"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

// MasterRow is the canonical per-player feature row. Every column exists
// for every player; sql.Null* marks "no data joined", which is different
// from a joined zero. The merge creates rows and later stages fill in
// their own columns.
type MasterRow struct {
	Role       models.Role
	RosterID   int
	TrackingID sql.NullInt64
	Name       string
	Team       string

	// Y1 context
	Games        int
	GamesStarted sql.NullInt64
	StolenBases  int

	// Season history, index 0 is Y1
	FantasyPoints [3]sql.NullFloat64
	PlayingTime   [3]sql.NullFloat64
	WOBA          [2]sql.NullFloat64

	// Statcast
	XWOBA       [2]sql.NullFloat64
	SavantWOBA  [2]sql.NullFloat64
	SprintSpeed sql.NullFloat64
	SpeedPct    float64

	// Biographical
	BirthYear   sql.NullInt64
	BirthMonth  sql.NullInt64
	BirthDay    sql.NullInt64
	MLBPosition string
	Age         float64
	AgeImputed  bool

	// Projection inputs
	ProjectedPT sql.NullFloat64 // external projection, when one exists
	ProjPT      float64

	// Model outputs
	WeightedBase    float64
	AgeMod          float64
	ParkFactor      float64
	PlayingTimeMod  float64
	XWOBAAdjustment float64
	SpeedBonus      float64
	ProjectedFP     float64

	FPMostRecent float64
	DeltaPct     sql.NullFloat64
	Percentile   float64
	Position     string
}

// IsPitcher reports whether the row belongs to the pitcher dataset.
func (r *MasterRow) IsPitcher() bool {
	return r.Role == models.RolePitcher
}

// Seasons is the number of seasons with positive fantasy points.
func (r *MasterRow) Seasons() int {
	return SeasonsWithData(r.FantasyPoints[:]...)
}
