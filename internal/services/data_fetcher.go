package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/mlb-projections/internal/identity"
	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/providers"
	"github.com/stitts-dev/mlb-projections/internal/projection"
	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

// ErrNoBattingData means not one historical season of batting could be loaded.
var ErrNoBattingData = errors.New("no batting data for any historical season")

// StatsSource serves season leaderboards and playing-time projections.
type StatsSource interface {
	BattingLeaderboard(ctx context.Context, year, minPA int) ([]byte, error)
	PitchingLeaderboard(ctx context.Context, year, minIP int) ([]byte, error)
	SteamerProjections(ctx context.Context, stats string) ([]byte, error)
}

// StatcastSource serves expected statistics and sprint speed.
type StatcastSource interface {
	ExpectedStats(ctx context.Context, year, minPA int) ([]byte, error)
	SprintSpeed(ctx context.Context, year int) ([]byte, error)
}

// RegisterSource serves the id cross-reference register in parts.
type RegisterSource interface {
	RegisterPart(ctx context.Context, part string) ([]byte, error)
}

// FetchConfig holds the qualifiers sent upstream.
type FetchConfig struct {
	MinPA      int
	MinIP      int
	MinXWOBAPA int
}

// SourceStatus records how one upstream payload fared, for the run summary.
type SourceStatus struct {
	Source string
	Label  string
	Year   int
	Rows   int
	Err    error
}

// OK reports whether the payload was loaded.
func (s SourceStatus) OK() bool { return s.Err == nil }

// DataSet is everything the projection needs, already parsed. Missing
// sources are nil and have been logged.
type DataSet struct {
	Plan     models.SeasonPlan
	Batters  projection.Inputs
	Pitchers projection.Inputs
	// HasPitchers is false when the primary year has no pitching data.
	HasPitchers bool
	Sources     []SourceStatus
}

// DataFetcher loads raw payloads through the cache, falling back to the
// upstream behind its circuit breaker. Only batting data is mandatory;
// every other source degrades to a neutral default.
type DataFetcher struct {
	cache    RawCache
	breaker  *CircuitBreakerService
	stats    StatsSource
	statcast StatcastSource
	register RegisterSource
	cfg      FetchConfig
	settings projection.Settings
	metrics  *Metrics
	logger   *logrus.Logger
}

func NewDataFetcher(
	cache RawCache,
	breaker *CircuitBreakerService,
	stats StatsSource,
	statcast StatcastSource,
	register RegisterSource,
	cfg FetchConfig,
	settings projection.Settings,
	metrics *Metrics,
	logger *logrus.Logger,
) *DataFetcher {
	return &DataFetcher{
		cache:    cache,
		breaker:  breaker,
		stats:    stats,
		statcast: statcast,
		register: register,
		cfg:      cfg,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
	}
}

// LoadInputs loads every source for the plan. When the most recent season
// has no batting data the plan is shifted onto the newest seasons that do.
func (f *DataFetcher) LoadInputs(ctx context.Context, plan models.SeasonPlan) (*DataSet, error) {
	ds := &DataSet{Plan: plan}

	batting := make(map[int]*models.YearTable)
	var available []int
	for _, year := range plan.Historical {
		rows, err := f.loadBatting(ctx, year)
		ds.record(SourceFangraphs, "batting", year, len(rows), err)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.degraded(SourceFangraphs, year, err).Warn("No batting data, skipping season")
			continue
		}
		batting[year] = projection.BatterTable(year, rows, f.settings.Batting)
		available = append(available, year)
	}
	if len(available) == 0 {
		return nil, ErrNoBattingData
	}

	ds.Plan.Shift(available)
	if ds.Plan.Shifted() {
		f.logger.WithFields(logrus.Fields{
			"component": "data_fetcher",
			"missing":   plan.Historical[0],
			"years":     ds.Plan.Years,
		}).Warn("Most recent season unavailable, projecting from older data")
	}
	years := ds.Plan.Years
	for i, y := range years {
		if y != 0 {
			ds.Batters.Seasons[i] = batting[y]
		}
	}

	ds.Pitchers.Seasons, ds.HasPitchers = f.loadPitchingSeasons(ctx, ds, years)

	for i, y := range years[:2] {
		if y == 0 {
			continue
		}
		ds.Batters.Expected[i] = f.loadExpected(ctx, ds, y)
	}
	if years[0] != 0 {
		ds.Batters.Speed = f.loadSpeed(ctx, ds, years[0])
	}

	ids := f.loadIdentity(ctx, ds)
	ds.Batters.Identity = ids
	ds.Pitchers.Identity = ids

	ds.Batters.ProjectedPT = f.loadSteamer(ctx, ds, plan.Target, "bat", "PA")
	if ds.HasPitchers {
		ds.Pitchers.ProjectedPT = f.loadSteamer(ctx, ds, plan.Target, "pit", "IP")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (f *DataFetcher) loadBatting(ctx context.Context, year int) ([]models.BattingSeason, error) {
	return load(ctx, f, SourceFangraphs, BattingCacheKey(year), func(ctx context.Context) ([]byte, error) {
		return f.stats.BattingLeaderboard(ctx, year, f.cfg.MinPA)
	}, providers.ParseBatting)
}

func (f *DataFetcher) loadPitchingSeasons(ctx context.Context, ds *DataSet, years [3]int) ([3]*models.YearTable, bool) {
	var out [3]*models.YearTable
	for i, year := range years {
		if year == 0 {
			continue
		}
		rows, err := load(ctx, f, SourceFangraphs, PitchingCacheKey(year), func(ctx context.Context) ([]byte, error) {
			return f.stats.PitchingLeaderboard(ctx, year, f.cfg.MinIP)
		}, providers.ParsePitching)
		ds.record(SourceFangraphs, "pitching", year, len(rows), err)
		if err != nil {
			f.degraded(SourceFangraphs, year, err).Warn("No pitching data for season")
			continue
		}
		out[i] = projection.PitcherTable(year, rows, f.settings.Pitching)
	}
	if out[0] == nil {
		f.degraded(SourceFangraphs, years[0], nil).Warn("No pitching data for primary season, projecting batters only")
		return out, false
	}
	return out, true
}

func (f *DataFetcher) loadExpected(ctx context.Context, ds *DataSet, year int) projection.ExpectedTable {
	rows, err := load(ctx, f, SourceSavant, ExpectedCacheKey(year), func(ctx context.Context) ([]byte, error) {
		return f.statcast.ExpectedStats(ctx, year, f.cfg.MinXWOBAPA)
	}, providers.ParseExpectedStats)
	ds.record(SourceSavant, "expected_stats", year, len(rows), err)
	if err != nil {
		f.degraded(SourceSavant, year, err).Warn("No expected stats, xwOBA adjustment is zero for this season")
		return nil
	}
	return projection.BuildExpectedTable(rows)
}

func (f *DataFetcher) loadSpeed(ctx context.Context, ds *DataSet, year int) projection.SpeedTable {
	rows, err := load(ctx, f, SourceSavant, SpeedCacheKey(year), func(ctx context.Context) ([]byte, error) {
		return f.statcast.SprintSpeed(ctx, year)
	}, providers.ParseSprintSpeed)
	ds.record(SourceSavant, "sprint_speed", year, len(rows), err)
	if err != nil {
		f.degraded(SourceSavant, year, err).Warn("No sprint speed, every batter gets the neutral percentile")
		return nil
	}
	return projection.BuildSpeedTable(rows)
}

// loadIdentity assembles the register from its parts. A failed part loses
// only the ids it holds.
func (f *DataFetcher) loadIdentity(ctx context.Context, ds *DataSet) identity.Map {
	var records []models.RegistryRecord
	failed := 0
	for _, part := range providers.ChadwickParts {
		recs, err := load(ctx, f, SourceChadwick, RegisterCacheKey(part), func(ctx context.Context) ([]byte, error) {
			return f.register.RegisterPart(ctx, part)
		}, providers.ParseRegister)
		if err != nil {
			failed++
			f.degraded(SourceChadwick, 0, err).WithField("part", part).Warn("Register part unavailable")
			continue
		}
		records = append(records, recs...)
	}

	ids := identity.Resolve(records)
	var status error
	if failed > 0 {
		status = fmt.Errorf("%d of %d register parts failed", failed, len(providers.ChadwickParts))
	}
	ds.record(SourceChadwick, "register", 0, ids.Len(), status)
	if ids.Len() == 0 {
		f.degraded(SourceChadwick, 0, status).Warn("No id mappings, expected stats, speed and player info will be empty")
	}
	return ids
}

func (f *DataFetcher) loadSteamer(ctx context.Context, ds *DataSet, target int, stats, field string) map[int]float64 {
	pt, err := load(ctx, f, SourceFangraphs, SteamerCacheKey(target, stats), func(ctx context.Context) ([]byte, error) {
		return f.stats.SteamerProjections(ctx, stats)
	}, func(raw []byte) (map[int]float64, error) {
		return providers.ParseSteamer(raw, field)
	})
	ds.record(SourceFangraphs, "steamer_"+stats, target, len(pt), err)
	if err != nil {
		f.degraded(SourceFangraphs, target, err).WithField("stats", stats).
			Warn("No Steamer projections, falling back to last season's playing time")
		return nil
	}
	return pt
}

// load serves key from the cache, or fetches it through the source's
// breaker. Only payloads that parse are written to the cache, and a cached
// payload that no longer parses is fetched again.
func load[T any](
	ctx context.Context,
	f *DataFetcher,
	source, key string,
	fetch func(context.Context) ([]byte, error),
	parse func([]byte) (T, error),
) (T, error) {
	var zero T
	log := f.logger.WithFields(logrus.Fields{
		"component": "data_fetcher",
		"source":    source,
		"key":       key,
	})

	data, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		v, perr := parse(data)
		if perr == nil {
			f.metrics.cacheLookup("hit")
			log.Debug("Cache hit")
			return v, nil
		}
		f.metrics.cacheLookup("unreadable")
		log.WithError(perr).Warn("Cached payload unreadable, fetching again")
	case errors.Is(err, ErrCacheMiss):
		f.metrics.cacheLookup("miss")
	default:
		f.metrics.cacheLookup("error")
		log.WithError(err).Warn("Cache read failed, fetching from upstream")
	}

	data, err = f.breaker.Execute(source, func() ([]byte, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, fmt.Errorf("fetching %s: %w", key, err)
	}
	v, err := parse(data)
	if err != nil {
		return zero, fmt.Errorf("parsing %s: %w", key, err)
	}

	if err := f.cache.Set(ctx, key, data); err != nil {
		log.WithError(err).Warn("Failed to cache payload")
	} else {
		log.WithField("bytes", len(data)).Info("Fetched and cached")
	}
	return v, nil
}

func (f *DataFetcher) degraded(source string, year int, err error) *logrus.Entry {
	entry := logger.WithSourceContext(f.logger, source, year).WithField("component", "data_fetcher")
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}

func (ds *DataSet) record(source, label string, year, rows int, err error) {
	ds.Sources = append(ds.Sources, SourceStatus{
		Source: source,
		Label:  label,
		Year:   year,
		Rows:   rows,
		Err:    err,
	})
}

// PlayerInfoFetcher routes people lookups through the circuit breaker.
type PlayerInfoFetcher struct {
	source  *providers.MLBStats
	breaker *CircuitBreakerService
}

func NewPlayerInfoFetcher(source *providers.MLBStats, breaker *CircuitBreakerService) *PlayerInfoFetcher {
	return &PlayerInfoFetcher{source: source, breaker: breaker}
}

func (p *PlayerInfoFetcher) People(ctx context.Context, trackingIDs []int) ([]models.PlayerInfo, error) {
	var people []models.PlayerInfo
	_, err := p.breaker.Execute(SourceMLBStats, func() ([]byte, error) {
		var err error
		people, err = p.source.People(ctx, trackingIDs)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}
