package providers

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

const SavantBaseURL = "https://baseballsavant.mlb.com"

// Savant serves Statcast leaderboards keyed by the tracking id.
type Savant struct {
	client  *Client
	baseURL string
}

func NewSavant(client *Client, baseURL string) *Savant {
	if baseURL == "" {
		baseURL = SavantBaseURL
	}
	return &Savant{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// ExpectedStats fetches the batter expected-statistics leaderboard as CSV.
func (s *Savant) ExpectedStats(ctx context.Context, year, minPA int) ([]byte, error) {
	q := url.Values{}
	q.Set("type", "batter")
	q.Set("year", strconv.Itoa(year))
	q.Set("position", "")
	q.Set("team", "")
	q.Set("min", strconv.Itoa(minPA))
	q.Set("csv", "true")
	return s.client.Get(ctx, s.baseURL+"/leaderboard/expected_statistics?"+q.Encode())
}

// SprintSpeed fetches the sprint speed leaderboard as CSV, all qualifiers.
func (s *Savant) SprintSpeed(ctx context.Context, year int) ([]byte, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("position", "")
	q.Set("team", "")
	q.Set("min", "0")
	q.Set("csv", "true")
	return s.client.Get(ctx, s.baseURL+"/leaderboard/sprint_speed?"+q.Encode())
}

// ParseExpectedStats reads player_id, est_woba and the optional woba column.
// Rows without an id or an expected value are skipped.
func ParseExpectedStats(raw []byte) ([]models.ExpectedStats, error) {
	t, err := readCSV(raw)
	if err != nil {
		return nil, err
	}
	idx, err := t.require("player_id", "est_woba")
	if err != nil {
		return nil, err
	}
	iWOBA := t.col("woba")

	out := make([]models.ExpectedStats, 0, len(t.rows))
	for _, rec := range t.rows {
		id, ok := parseIntID(field(rec, idx[0]))
		if !ok {
			continue
		}
		xw, ok := parseFloat(field(rec, idx[1]))
		if !ok {
			continue
		}
		var woba sql.NullFloat64
		if v, ok := parseFloat(field(rec, iWOBA)); ok {
			woba = models.Some(v)
		}
		out = append(out, models.ExpectedStats{TrackingID: id, XWOBA: xw, WOBA: woba})
	}
	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}
	return out, nil
}

// ParseSprintSpeed reads player_id and sprint_speed.
func ParseSprintSpeed(raw []byte) ([]models.SpeedRecord, error) {
	t, err := readCSV(raw)
	if err != nil {
		return nil, err
	}
	idx, err := t.require("player_id", "sprint_speed")
	if err != nil {
		return nil, err
	}

	out := make([]models.SpeedRecord, 0, len(t.rows))
	for _, rec := range t.rows {
		id, ok := parseIntID(field(rec, idx[0]))
		if !ok {
			continue
		}
		speed, ok := parseFloat(field(rec, idx[1]))
		if !ok {
			continue
		}
		out = append(out, models.SpeedRecord{TrackingID: id, SprintSpeed: speed})
	}
	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}
	return out, nil
}
