package services

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what each run pulled from where. Batch runs have no
// scrape endpoint, so the registry is written out as a node_exporter
// textfile after every run.
type Metrics struct {
	registry *prometheus.Registry

	SourceLoads      *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Gauge
	LastSuccess      prometheus.Gauge
	PlayersProjected *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SourceLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlbproj_source_loads_total",
				Help: "Upstream payload loads by source, dataset and outcome",
			},
			[]string{"source", "dataset", "outcome"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlbproj_cache_lookups_total",
				Help: "Raw payload cache lookups by result",
			},
			[]string{"result"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlbproj_runs_total",
				Help: "Projection runs by status",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mlbproj_last_run_duration_seconds",
				Help: "Duration of the last projection run",
			},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mlbproj_last_success_timestamp_seconds",
				Help: "Unix time of the last successful projection run",
			},
		),
		PlayersProjected: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mlbproj_players_projected",
				Help: "Players in the last run's output by role",
			},
			[]string{"role"},
		),
	}

	m.registry.MustRegister(
		m.SourceLoads,
		m.CacheLookups,
		m.Runs,
		m.RunDuration,
		m.LastSuccess,
		m.PlayersProjected,
	)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// A nil *Metrics records nothing, so callers never need to check.

func (m *Metrics) sourceStatus(s SourceStatus) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !s.OK() {
		outcome = "error"
	}
	m.SourceLoads.WithLabelValues(s.Source, s.Label, outcome).Inc()
}

func (m *Metrics) cacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) runFinished(res *RunResult, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Set(duration.Seconds())
	if err != nil {
		m.Runs.WithLabelValues("failed").Inc()
		return
	}
	m.Runs.WithLabelValues("completed").Inc()
	m.LastSuccess.Set(float64(time.Now().Unix()))
	m.PlayersProjected.WithLabelValues("batter").Set(float64(batchSize(res.Batters)))
	m.PlayersProjected.WithLabelValues("pitcher").Set(float64(batchSize(res.Pitchers)))
}

// WriteTextfile writes the registry in the text exposition format,
// replacing path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
