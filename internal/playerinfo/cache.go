// Package playerinfo keeps birth dates and primary positions keyed by
// tracking id, fetching each id at most once across runs.
package playerinfo

import (
	"github.com/stitts-dev/mlb-projections/internal/models"
)

// Cache is append-only: once an id is present its row never changes.
type Cache struct {
	rows  []models.PlayerInfo
	index map[int]int
}

func NewCache() *Cache {
	return &Cache{index: make(map[int]int)}
}

// Add inserts a row for an unseen id and reports whether it did.
func (c *Cache) Add(info models.PlayerInfo) bool {
	if _, ok := c.index[info.TrackingID]; ok {
		return false
	}
	c.index[info.TrackingID] = len(c.rows)
	c.rows = append(c.rows, info)
	return true
}

func (c *Cache) Get(trackingID int) (models.PlayerInfo, bool) {
	i, ok := c.index[trackingID]
	if !ok {
		return models.PlayerInfo{}, false
	}
	return c.rows[i], true
}

func (c *Cache) Len() int {
	return len(c.rows)
}

// Rows returns a copy in insertion order.
func (c *Cache) Rows() []models.PlayerInfo {
	out := make([]models.PlayerInfo, len(c.rows))
	copy(out, c.rows)
	return out
}

// Missing lists requested ids absent from the cache, deduplicated, in
// request order.
func (c *Cache) Missing(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	var out []int
	for _, id := range ids {
		if _, ok := c.index[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
