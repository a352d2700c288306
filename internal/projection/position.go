package projection

import (
	"database/sql"
	"strings"
)

// UnknownPosition marks a batter with no role code.
const UnknownPosition = "—"

var outfield = map[string]string{"LF": "OF", "CF": "OF", "RF": "OF"}

// Position resolves the display position for a row of either role.
func (s Settings) Position(r *MasterRow) string {
	if r.IsPitcher() {
		return s.PitcherPosition(r.MLBPosition, r.Games, r.GamesStarted)
	}
	return BatterPosition(r.MLBPosition)
}

// BatterPosition collapses outfield spots into OF.
func BatterPosition(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return UnknownPosition
	}
	if of, ok := outfield[code]; ok {
		return of
	}
	return code
}

// PitcherPosition trusts an explicit SP or RP code. Anything else, the
// generic "P" included, is decided by the share of games started. With no
// games-started data the pitcher is listed as a starter.
func (s Settings) PitcherPosition(code string, games int, started sql.NullInt64) string {
	code = strings.TrimSpace(code)
	if code == "SP" || code == "RP" {
		return code
	}
	if !started.Valid {
		return "SP"
	}
	g := games
	if g < 1 {
		g = 1
	}
	if float64(started.Int64)/float64(g) >= s.StarterRatio {
		return "SP"
	}
	return "RP"
}
