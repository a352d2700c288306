package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

const MLBStatsBaseURL = "https://statsapi.mlb.com"

// MLBStats looks up biographical data on the people endpoint. It satisfies
// playerinfo.Fetcher.
type MLBStats struct {
	client  *Client
	baseURL string
}

func NewMLBStats(client *Client, baseURL string) *MLBStats {
	if baseURL == "" {
		baseURL = MLBStatsBaseURL
	}
	return &MLBStats{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type peopleResponse struct {
	People []person `json:"people"`
}

type person struct {
	ID              int    `json:"id"`
	BirthDate       string `json:"birthDate"`
	PrimaryPosition struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"primaryPosition"`
}

// People fetches one batch of tracking ids. Unknown ids are absent from
// the result.
func (m *MLBStats) People(ctx context.Context, trackingIDs []int) ([]models.PlayerInfo, error) {
	if len(trackingIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(trackingIDs))
	for i, id := range trackingIDs {
		ids[i] = strconv.Itoa(id)
	}
	url := fmt.Sprintf("%s/api/v1/people?personIds=%s&fields=people,id,birthDate,primaryPosition,abbreviation",
		m.baseURL, strings.Join(ids, ","))

	raw, err := m.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParsePeople(raw)
}

// ParsePeople decodes a people response. Birth dates are split into parts;
// a malformed date leaves all three parts missing.
func ParsePeople(raw []byte) ([]models.PlayerInfo, error) {
	var resp peopleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode people response: %w", err)
	}

	out := make([]models.PlayerInfo, 0, len(resp.People))
	for _, p := range resp.People {
		info := models.PlayerInfo{
			TrackingID: p.ID,
			Position:   strings.TrimSpace(p.PrimaryPosition.Abbreviation),
		}
		if parts := strings.Split(p.BirthDate, "-"); len(parts) == 3 {
			y, errY := strconv.Atoi(parts[0])
			mo, errM := strconv.Atoi(parts[1])
			d, errD := strconv.Atoi(parts[2])
			if errY == nil && errM == nil && errD == nil {
				info.BirthYear = models.SomeInt(int64(y))
				info.BirthMonth = models.SomeInt(int64(mo))
				info.BirthDay = models.SomeInt(int64(d))
			}
		}
		out = append(out, info)
	}
	return out, nil
}
