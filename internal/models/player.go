package models

import (
	"database/sql"
)

// Role separates the batter and pitcher datasets. They are projected
// independently and only meet at the final ranking.
type Role string

const (
	RoleBatter  Role = "batter"
	RolePitcher Role = "pitcher"
)

// RegistryRecord is one row of the cross-reference register. Both ids
// arrive as raw text and may be blank or non-numeric.
type RegistryRecord struct {
	RosterID   string `json:"key_fangraphs"`
	TrackingID string `json:"key_mlbam"`
}

// BattingSeason is one qualified batter's line for one year.
type BattingSeason struct {
	RosterID    int             `json:"playerid"`
	Name        string          `json:"name"`
	Team        string          `json:"team"`
	Games       int             `json:"g"`
	PA          float64         `json:"pa"`
	Hits        int             `json:"h"`
	Doubles     int             `json:"2b"`
	Triples     int             `json:"3b"`
	HomeRuns    int             `json:"hr"`
	Runs        int             `json:"r"`
	RBI         int             `json:"rbi"`
	StolenBases int             `json:"sb"`
	Walks       int             `json:"bb"`
	Strikeouts  int             `json:"so"`
	WOBA        sql.NullFloat64 `json:"woba"`
}

// PitchingSeason is one qualified pitcher's line for one year.
type PitchingSeason struct {
	RosterID       int           `json:"playerid"`
	Name           string        `json:"name"`
	Team           string        `json:"team"`
	Games          int           `json:"g"`
	GamesStarted   sql.NullInt64 `json:"gs"`
	InningsPitched float64       `json:"ip"`
	Strikeouts     int           `json:"so"`
	Walks          int           `json:"bb"`
	HitsAllowed    int           `json:"h"`
	EarnedRuns     int           `json:"er"`
	Wins           int           `json:"w"`
	Saves          int           `json:"sv"`
}

// SeasonLine is the role-independent view of a season used by the merge.
// PlayingTime is plate appearances for batters and innings for pitchers.
type SeasonLine struct {
	RosterID      int
	Name          string
	Team          string
	Games         int
	GamesStarted  sql.NullInt64
	PlayingTime   float64
	OnBase        sql.NullFloat64
	StolenBases   int
	FantasyPoints float64
}

// YearTable holds every qualified line for one season. A nil *YearTable
// means the source was unavailable for that year.
type YearTable struct {
	Year  int
	Lines []SeasonLine
}

// ExpectedStats is a Statcast expected-statistics row.
type ExpectedStats struct {
	TrackingID int
	XWOBA      float64
	WOBA       sql.NullFloat64
}

// SpeedRecord is a raw sprint speed reading in ft/sec.
type SpeedRecord struct {
	TrackingID  int
	SprintSpeed float64
}

// PlayerInfo is the biographical slice we keep from the people endpoint.
type PlayerInfo struct {
	TrackingID int
	BirthYear  sql.NullInt64
	BirthMonth sql.NullInt64
	BirthDay   sql.NullInt64
	Position   string
}

// Some wraps a present float.
func Some(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// SomeInt wraps a present integer.
func SomeInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
