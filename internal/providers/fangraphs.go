package providers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

const (
	FangraphsBaseURL = "https://www.fangraphs.com"

	// MinSteamerRows guards against truncated projection responses.
	MinSteamerRows = 50
)

// Fangraphs serves season leaderboards and Steamer projections. Both are
// keyed by the Fangraphs player id, which is the roster id.
type Fangraphs struct {
	client  *Client
	baseURL string
}

func NewFangraphs(client *Client, baseURL string) *Fangraphs {
	if baseURL == "" {
		baseURL = FangraphsBaseURL
	}
	return &Fangraphs{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// BattingLeaderboard fetches one season of batters with at least minPA.
func (f *Fangraphs) BattingLeaderboard(ctx context.Context, year, minPA int) ([]byte, error) {
	return f.client.Get(ctx, f.leaderboardURL("bat", year, minPA))
}

// PitchingLeaderboard fetches one season of pitchers with at least minIP.
func (f *Fangraphs) PitchingLeaderboard(ctx context.Context, year, minIP int) ([]byte, error) {
	return f.client.Get(ctx, f.leaderboardURL("pit", year, minIP))
}

// SteamerProjections fetches next-season projections; stats is "bat" or "pit".
func (f *Fangraphs) SteamerProjections(ctx context.Context, stats string) ([]byte, error) {
	q := url.Values{}
	q.Set("type", "steamer")
	q.Set("stats", stats)
	q.Set("pos", "all")
	q.Set("team", "0")
	q.Set("players", "0")
	q.Set("lg", "all")
	return f.client.Get(ctx, f.baseURL+"/api/projections?"+q.Encode())
}

func (f *Fangraphs) leaderboardURL(stats string, year, qual int) string {
	q := url.Values{}
	q.Set("pos", "all")
	q.Set("stats", stats)
	q.Set("lg", "all")
	q.Set("qual", strconv.Itoa(qual))
	q.Set("season", strconv.Itoa(year))
	q.Set("season1", strconv.Itoa(year))
	q.Set("ind", "0")
	q.Set("team", "0")
	q.Set("type", "8")
	q.Set("month", "0")
	q.Set("pageitems", "2000000000")
	q.Set("pagenum", "1")
	return f.baseURL + "/api/leaders/major-league/data?" + q.Encode()
}

// FlexibleID accepts ids sent either as numbers or as strings. Ids that are
// not plain integers, such as minor-league keys, decode as invalid.
type FlexibleID struct {
	Value int
	Valid bool
}

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	*f = FlexibleID{}
	if string(data) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num == math.Trunc(num) {
			*f = FlexibleID{Value: int(num), Valid: true}
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			*f = FlexibleID{Value: n, Valid: true}
		}
		return nil
	}
	return nil
}

type fangraphsLeaderboard struct {
	Data []fangraphsRow `json:"data"`
}

type fangraphsRow struct {
	PlayerID   FlexibleID `json:"playerid"`
	PlayerName string     `json:"PlayerName"`
	TeamAbb    string     `json:"TeamNameAbb"`
	Team       string     `json:"Team"`

	G    *float64 `json:"G"`
	GS   *float64 `json:"GS"`
	PA   *float64 `json:"PA"`
	H    *float64 `json:"H"`
	B2   *float64 `json:"2B"`
	B3   *float64 `json:"3B"`
	HR   *float64 `json:"HR"`
	R    *float64 `json:"R"`
	RBI  *float64 `json:"RBI"`
	SB   *float64 `json:"SB"`
	BB   *float64 `json:"BB"`
	SO   *float64 `json:"SO"`
	WOBA *float64 `json:"wOBA"`

	IP *float64 `json:"IP"`
	ER *float64 `json:"ER"`
	W  *float64 `json:"W"`
	SV *float64 `json:"SV"`
}

func (r fangraphsRow) team() string {
	if r.TeamAbb != "" {
		return r.TeamAbb
	}
	return r.Team
}

// ParseBatting decodes a batting leaderboard. Rows without a numeric
// player id are skipped; missing counting stats count as zero.
func ParseBatting(raw []byte) ([]models.BattingSeason, error) {
	var lb fangraphsLeaderboard
	if err := json.Unmarshal(raw, &lb); err != nil {
		return nil, fmt.Errorf("failed to decode batting leaderboard: %w", err)
	}

	out := make([]models.BattingSeason, 0, len(lb.Data))
	for _, r := range lb.Data {
		if !r.PlayerID.Valid {
			continue
		}
		out = append(out, models.BattingSeason{
			RosterID:    r.PlayerID.Value,
			Name:        r.PlayerName,
			Team:        r.team(),
			Games:       count(r.G),
			PA:          value(r.PA),
			Hits:        count(r.H),
			Doubles:     count(r.B2),
			Triples:     count(r.B3),
			HomeRuns:    count(r.HR),
			Runs:        count(r.R),
			RBI:         count(r.RBI),
			StolenBases: count(r.SB),
			Walks:       count(r.BB),
			Strikeouts:  count(r.SO),
			WOBA:        nullable(r.WOBA),
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}
	return out, nil
}

// ParsePitching decodes a pitching leaderboard.
func ParsePitching(raw []byte) ([]models.PitchingSeason, error) {
	var lb fangraphsLeaderboard
	if err := json.Unmarshal(raw, &lb); err != nil {
		return nil, fmt.Errorf("failed to decode pitching leaderboard: %w", err)
	}

	out := make([]models.PitchingSeason, 0, len(lb.Data))
	for _, r := range lb.Data {
		if !r.PlayerID.Valid {
			continue
		}
		var gs sql.NullInt64
		if r.GS != nil {
			gs = models.SomeInt(int64(*r.GS))
		}
		out = append(out, models.PitchingSeason{
			RosterID:       r.PlayerID.Value,
			Name:           r.PlayerName,
			Team:           r.team(),
			Games:          count(r.G),
			GamesStarted:   gs,
			InningsPitched: Innings(value(r.IP)),
			Strikeouts:     count(r.SO),
			Walks:          count(r.BB),
			HitsAllowed:    count(r.H),
			EarnedRuns:     count(r.ER),
			Wins:           count(r.W),
			Saves:          count(r.SV),
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}
	return out, nil
}

// Innings converts box-score notation, where .1 and .2 are outs, into
// true innings: 180.1 becomes 180.333.
func Innings(notation float64) float64 {
	whole := math.Trunc(notation)
	outs := math.Round((notation - whole) * 10)
	if outs < 0 || outs > 2 {
		return notation
	}
	return whole + outs/3
}

type steamerRow struct {
	PlayerID FlexibleID `json:"playerid"`
	PA       *float64   `json:"PA"`
	IP       *float64   `json:"IP"`
}

// ParseSteamer extracts projected playing time by roster id. field is "PA"
// or "IP"; a null value projects zero. Responses of MinSteamerRows rows or
// fewer are rejected.
func ParseSteamer(raw []byte, field string) (map[int]float64, error) {
	var rows []steamerRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode steamer projections: %w", err)
	}
	if len(rows) <= MinSteamerRows {
		return nil, fmt.Errorf("%w: %d steamer rows", ErrEmptyPayload, len(rows))
	}

	out := make(map[int]float64, len(rows))
	for _, r := range rows {
		if !r.PlayerID.Valid {
			continue
		}
		if _, dup := out[r.PlayerID.Value]; dup {
			continue
		}
		switch field {
		case "IP":
			out[r.PlayerID.Value] = value(r.IP)
		default:
			out[r.PlayerID.Value] = value(r.PA)
		}
	}
	return out, nil
}

func value(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

func count(v *float64) int {
	return int(math.Round(value(v)))
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil || math.IsNaN(*v) {
		return sql.NullFloat64{}
	}
	return models.Some(*v)
}
