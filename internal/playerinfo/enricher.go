package playerinfo

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

const DefaultBatchSize = 200

// Fetcher looks up biographical rows for a batch of tracking ids. Ids the
// upstream does not know are simply absent from the result.
type Fetcher interface {
	People(ctx context.Context, trackingIDs []int) ([]models.PlayerInfo, error)
}

// Store persists the cache between runs.
type Store interface {
	Load() (*Cache, error)
	Save(c *Cache) error
}

// Enricher serves player info from the on-disk cache and fetches only ids
// it has never seen.
type Enricher struct {
	store     Store
	fetcher   Fetcher
	batchSize int
	logger    *logrus.Logger
}

func NewEnricher(store Store, fetcher Fetcher, batchSize int, logger *logrus.Logger) *Enricher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Enricher{
		store:     store,
		fetcher:   fetcher,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Enrich returns a cache covering as many of ids as the upstream could
// resolve. A failed batch is logged and skipped. The merged cache is
// written back only when something new was fetched.
func (e *Enricher) Enrich(ctx context.Context, ids []int) (*Cache, error) {
	cache, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading player info cache: %w", err)
	}

	missing := cache.Missing(ids)
	log := e.logger.WithField("component", "player_info")
	if len(missing) == 0 {
		log.WithField("cached", cache.Len()).Info("Player info cache hit")
		return cache, nil
	}

	log.WithFields(logrus.Fields{
		"cached":  cache.Len(),
		"missing": len(missing),
	}).Info("Fetching player info for new ids")

	added := 0
	for start := 0; start < len(missing); start += e.batchSize {
		end := start + e.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		rows, err := e.fetcher.People(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithFields(logrus.Fields{
				"batch": start/e.batchSize + 1,
				"size":  len(batch),
			}).WithError(err).Warn("Player info batch failed, continuing")
			continue
		}
		for _, row := range rows {
			if cache.Add(row) {
				added++
			}
		}
	}

	if added == 0 {
		return cache, nil
	}

	if err := e.store.Save(cache); err != nil {
		log.WithError(err).Warn("Failed to persist player info cache")
	} else {
		log.WithFields(logrus.Fields{
			"fetched": added,
			"total":   cache.Len(),
		}).Info("Player info cache updated")
	}
	return cache, nil
}
