package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/playerinfo"
	"github.com/stitts-dev/mlb-projections/internal/projection"
	"github.com/stitts-dev/mlb-projections/internal/report"
	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

// InputLoader produces the parsed inputs for a plan.
type InputLoader interface {
	LoadInputs(ctx context.Context, plan models.SeasonPlan) (*DataSet, error)
}

// PlayerInfoSource returns player info covering the given tracking ids.
type PlayerInfoSource interface {
	Enrich(ctx context.Context, ids []int) (*playerinfo.Cache, error)
}

// ArtifactWriter persists a ranked table.
type ArtifactWriter interface {
	WriteAll(rows []*projection.MasterRow, plan models.SeasonPlan, withPlot bool) (report.Artifacts, error)
}

type ProjectionOptions struct {
	SkipPitchers bool
	SkipPlot     bool
}

// RunResult is what one projection run produced.
type RunResult struct {
	RunID     string
	Plan      models.SeasonPlan
	Rows      []*projection.MasterRow
	Batters   *projection.Batch
	Pitchers  *projection.Batch
	LeagueSB  int
	Artifacts report.Artifacts
	Summary   report.Summary
	Duration  time.Duration
}

// ProjectionService runs the whole pipeline once: load, merge, enrich,
// score, rank and write.
type ProjectionService struct {
	loader   InputLoader
	info     PlayerInfoSource
	writer   ArtifactWriter
	settings projection.Settings
	opts     ProjectionOptions
	metrics  *Metrics
	logger   *logrus.Logger
}

func NewProjectionService(
	loader InputLoader,
	info PlayerInfoSource,
	writer ArtifactWriter,
	settings projection.Settings,
	opts ProjectionOptions,
	metrics *Metrics,
	logger *logrus.Logger,
) *ProjectionService {
	return &ProjectionService{
		loader:   loader,
		info:     info,
		writer:   writer,
		settings: settings,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run projects the plan's target season. It fails only when no batting
// data exists or the batter merge fails; every other gap degrades.
func (s *ProjectionService) Run(ctx context.Context, plan models.SeasonPlan) (res *RunResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.runFinished(res, err, time.Since(started))
	}()

	res = &RunResult{RunID: uuid.New().String()}
	log := logger.WithRunContext(s.logger, res.RunID, plan.Target).WithField("component", "projection_service")
	log.WithField("historical", plan.Historical).Info("Starting projection run")

	ds, err := s.loader.LoadInputs(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("loading inputs: %w", err)
	}
	res.Plan = ds.Plan
	s.logSources(log, ds.Sources)

	leagueSB, estimated := s.settings.LeagueStolenBases(ds.Batters.Seasons[0])
	res.LeagueSB = leagueSB
	log.WithFields(logrus.Fields{
		"league_sb": leagueSB,
		"estimated": estimated,
	}).Info("League stolen base total")

	ageRef := res.Plan.AgeReference()

	batters, err := s.project(ctx, log, models.RoleBatter, ds.Batters, ageRef, leagueSB)
	if err != nil {
		return nil, fmt.Errorf("projecting batters: %w", err)
	}
	res.Batters = batters

	switch {
	case s.opts.SkipPitchers:
		log.Info("Pitcher projections disabled")
	case !ds.HasPitchers:
		log.Warn("No pitcher data, continuing with batters only")
	default:
		pitchers, err := s.project(ctx, log, models.RolePitcher, ds.Pitchers, ageRef, leagueSB)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warn("Pitcher projections failed, continuing with batters only")
		} else {
			res.Pitchers = pitchers
		}
	}

	res.Rows = projection.Concat(res.Batters, res.Pitchers)
	projection.Rank(res.Rows)
	log.WithField("players", len(res.Rows)).Info("Ranked projections")

	res.Artifacts, err = s.writer.WriteAll(res.Rows, res.Plan, !s.opts.SkipPlot)
	if err != nil {
		return nil, fmt.Errorf("writing artifacts: %w", err)
	}

	res.Summary = report.Summarize(res.Rows, res.Plan.Target, s.settings)
	res.Summary.Log(log)

	res.Duration = time.Since(started)
	log.WithFields(logrus.Fields{
		"players":  len(res.Rows),
		"output":   res.Artifacts.Projections,
		"duration": res.Duration.String(),
	}).Info("Projection run complete")
	return res, nil
}

func (s *ProjectionService) project(
	ctx context.Context,
	log *logrus.Entry,
	role models.Role,
	in projection.Inputs,
	ageRef time.Time,
	leagueSB int,
) (*projection.Batch, error) {
	batch, err := s.settings.Assemble(role, in)
	if err != nil {
		return nil, err
	}

	info, err := s.info.Enrich(ctx, projection.TrackingIDs(batch.Rows))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).WithField("role", role).Warn("Player info unavailable, ages and positions fall back to defaults")
		info = playerinfo.NewCache()
	}

	s.settings.Finish(batch, info, ageRef, leagueSB)

	c := batch.Coverage
	log.WithFields(logrus.Fields{
		"role":         role,
		"merged":       c.Merged,
		"tracking_ids": c.TrackingIDs,
		"player_info":  c.PlayerInfo,
		"expected":     c.Expected,
		"speed":        c.Speed,
		"projected_pt": c.ProjectedPT,
		"ages_imputed": c.AgesImputed,
		"dropped":      c.Dropped,
		"projected":    len(batch.Rows),
	}).Info("Role projected")
	return batch, nil
}

func (s *ProjectionService) logSources(log *logrus.Entry, sources []SourceStatus) {
	for _, src := range sources {
		s.metrics.sourceStatus(src)
		entry := log.WithFields(logrus.Fields{
			"source":  src.Source,
			"dataset": src.Label,
			"rows":    src.Rows,
		})
		if src.Year > 0 {
			entry = entry.WithField("year", src.Year)
		}
		if src.OK() {
			entry.Info("Source loaded")
		} else {
			entry.WithError(src.Err).Warn("Source unavailable")
		}
	}
}

func batchSize(b *projection.Batch) int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}
