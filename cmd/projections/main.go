package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/playerinfo"
	"github.com/stitts-dev/mlb-projections/internal/projection"
	"github.com/stitts-dev/mlb-projections/internal/providers"
	"github.com/stitts-dev/mlb-projections/internal/report"
	"github.com/stitts-dev/mlb-projections/internal/services"
	"github.com/stitts-dev/mlb-projections/pkg/config"
	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "projections",
	Short: "Season-ahead fantasy baseball projections",
	Long: `Projects fantasy points for the upcoming MLB season from the last three
completed seasons, park effects, an age curve, Statcast expected stats and
sprint speed. Raw inputs are cached; outputs are CSV files and a scatter plot.

Example usage:
  projections                          # project the next season
  projections --season 2026            # explicit target season
  projections --cache-backend redis    # share the raw cache through Redis
  projections --skip-pitchers --skip-plot
  projections schedule --cron "0 6 * * *"`,
	SilenceUsage: true,
	RunE:         runProjections,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Rerun projections on a cron schedule until interrupted",
	Long: `Keeps the process alive and reruns the full projection pass on a cron
schedule. The target season is derived from the date of each run unless
--season is set. Pair with CACHE_TTL so reruns pick up fresh data.`,
	SilenceUsage: true,
	RunE:         runSchedule,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Int("season", 0, "Target season (0 = derive from today's date)")
	flags.String("cache-dir", "", "Directory for cached raw payloads and player info")
	flags.String("output-dir", "", "Directory for output files")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after each run")
	flags.String("cache-backend", "", "Raw payload cache: file or redis")
	flags.String("redis-url", "", "Redis URL when --cache-backend=redis")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("skip-pitchers", false, "Project batters only")
	flags.Bool("skip-plot", false, "Do not render the scatter plot")

	for key, name := range map[string]string{
		"TARGET_SEASON": "season",
		"CACHE_DIR":     "cache-dir",
		"OUTPUT_DIR":    "output-dir",
		"METRICS_FILE":  "metrics-file",
		"CACHE_BACKEND": "cache-backend",
		"REDIS_URL":     "redis-url",
		"LOG_LEVEL":     "log-level",
		"SKIP_PITCHERS": "skip-pitchers",
		"SKIP_PLOT":     "skip-plot",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}

	scheduleCmd.Flags().String("cron", "", "Cron schedule, five fields or a descriptor such as @daily")
	if err := viper.BindPFlag("SCHEDULE", scheduleCmd.Flags().Lookup("cron")); err != nil {
		panic(fmt.Sprintf("binding flag cron: %v", err))
	}
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runProjections(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := services.NewMetrics()
	svc, cleanup, err := buildService(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Run(ctx, planFor(cfg, time.Now()))
	writeMetrics(cfg, metrics, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Projected %d players for %d (run %s)\n", len(res.Rows), res.Plan.Target, res.RunID)
	fmt.Fprintf(cmd.OutOrStdout(), "  Main output: %s\n", res.Artifacts.Projections)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := services.NewMetrics()
	svc, cleanup, err := buildService(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer cleanup()

	scheduler := services.NewScheduler(log)
	err = scheduler.AddJob("projections", cfg.Schedule, func(jobCtx context.Context) error {
		_, err := svc.Run(jobCtx, planFor(cfg, time.Now()))
		writeMetrics(cfg, metrics, log)
		return err
	})
	if err != nil {
		return err
	}

	scheduler.Start()
	<-ctx.Done()
	log.Info("Shutting down scheduler")
	scheduler.Stop()
	return nil
}

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	logger.WithService(log, "mlb-projections").WithFields(logrus.Fields{
		"environment":   cfg.Env,
		"cache_backend": cfg.CacheBackend,
		"output_dir":    cfg.OutputDir,
	}).Info("Starting projections")
	return cfg, log, nil
}

func writeMetrics(cfg *config.Config, metrics *services.Metrics, log *logrus.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.WithError(err).Warn("Failed to write metrics")
	}
}

func planFor(cfg *config.Config, now time.Time) models.SeasonPlan {
	if cfg.TargetSeason > 0 {
		return models.PlanForTarget(cfg.TargetSeason)
	}
	return models.PlanSeasons(now)
}

// buildService wires the pipeline from config. cleanup releases the Redis
// connection when one was opened.
func buildService(ctx context.Context, cfg *config.Config, metrics *services.Metrics, log *logrus.Logger) (*services.ProjectionService, func(), error) {
	cleanup := func() {}

	var cache services.RawCache
	switch cfg.CacheBackend {
	case "redis":
		client, err := services.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { client.Close() }
		cache = services.NewRedisCache(client, "mlbproj:", cfg.CacheTTL)
	default:
		fc, err := services.NewFileCache(filepath.Join(cfg.CacheDir, "raw"), cfg.CacheTTL)
		if err != nil {
			return nil, cleanup, err
		}
		cache = fc
	}
	log.WithField("cache", cache.Name()).Info("Raw payload cache ready")

	client := providers.NewClient(providers.ClientConfig{
		Timeout:           cfg.HTTPTimeout,
		RetryAttempts:     cfg.RetryAttempts,
		RetryDelay:        cfg.RetryDelay,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         cfg.UserAgent,
	}, log)
	breaker := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerTimeout, log)
	settings := projection.DefaultSettings()

	fetcher := services.NewDataFetcher(
		cache,
		breaker,
		providers.NewFangraphs(client, ""),
		providers.NewSavant(client, ""),
		providers.NewChadwick(client, ""),
		services.FetchConfig{MinPA: cfg.MinPA, MinIP: cfg.MinIP, MinXWOBAPA: cfg.MinXWOBAPA},
		settings,
		metrics,
		log,
	)

	enricher := playerinfo.NewEnricher(
		playerinfo.NewCSVStore(cfg.CacheDir),
		services.NewPlayerInfoFetcher(providers.NewMLBStats(client, ""), breaker),
		cfg.PlayerInfoBatchSize,
		log,
	)

	svc := services.NewProjectionService(
		fetcher,
		enricher,
		report.NewWriter(cfg.OutputDir, log),
		settings,
		services.ProjectionOptions{SkipPitchers: cfg.SkipPitchers, SkipPlot: cfg.SkipPlot},
		metrics,
		log,
	)
	return svc, cleanup, nil
}
