package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

const ChadwickBaseURL = "https://raw.githubusercontent.com/chadwickbureau/register/master/data"

// ChadwickParts names the register shards, people-0.csv through people-f.csv.
var ChadwickParts = strings.Split("0123456789abcdef", "")

// Chadwick serves the cross-reference register linking id namespaces.
type Chadwick struct {
	client  *Client
	baseURL string
}

func NewChadwick(client *Client, baseURL string) *Chadwick {
	if baseURL == "" {
		baseURL = ChadwickBaseURL
	}
	return &Chadwick{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// RegisterPart fetches one shard of the register.
func (c *Chadwick) RegisterPart(ctx context.Context, part string) ([]byte, error) {
	return c.client.Get(ctx, fmt.Sprintf("%s/people-%s.csv", c.baseURL, part))
}

// ParseRegister keeps the raw Fangraphs and MLBAM keys. Validation of the
// ids is left to the identity resolver.
func ParseRegister(raw []byte) ([]models.RegistryRecord, error) {
	t, err := readCSV(raw)
	if err != nil {
		return nil, err
	}
	idx, err := t.require("key_fangraphs", "key_mlbam")
	if err != nil {
		return nil, err
	}

	out := make([]models.RegistryRecord, 0, len(t.rows))
	for _, rec := range t.rows {
		out = append(out, models.RegistryRecord{
			RosterID:   field(rec, idx[0]),
			TrackingID: field(rec, idx[1]),
		})
	}
	return out, nil
}
