package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/projection"
)

// Artifacts are the paths written by one run. Scatter is empty when the
// plot was skipped or failed.
type Artifacts struct {
	Projections string
	Flags       string
	Breakouts   string
	Declines    string
	Scatter     string
}

// FileNames returns the artifact names for a plan. Runs resting on an older
// primary season carry the plan's suffix.
func FileNames(plan models.SeasonPlan) Artifacts {
	tag := fmt.Sprintf("%d%s", plan.Target, plan.Suffix())
	return Artifacts{
		Projections: fmt.Sprintf("fantasy_projections_%s.csv", tag),
		Flags:       fmt.Sprintf("projection_flags_%s.csv", tag),
		Breakouts:   fmt.Sprintf("breakout_candidates_%s.csv", tag),
		Declines:    fmt.Sprintf("decline_risks_%s.csv", tag),
		Scatter:     fmt.Sprintf("projection_scatter_%s.png", tag),
	}
}

type Writer struct {
	dir    string
	logger *logrus.Logger
}

func NewWriter(dir string, logger *logrus.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteAll writes every artifact for ranked rows. A failed plot is logged
// and skipped; any CSV failure is returned.
func (w *Writer) WriteAll(rows []*projection.MasterRow, plan models.SeasonPlan, withPlot bool) (Artifacts, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("failed to create output dir: %w", err)
	}
	names := FileNames(plan)
	out := Artifacts{
		Projections: filepath.Join(w.dir, names.Projections),
		Flags:       filepath.Join(w.dir, names.Flags),
		Breakouts:   filepath.Join(w.dir, names.Breakouts),
		Declines:    filepath.Join(w.dir, names.Declines),
	}
	log := w.logger.WithField("component", "report")

	if err := writeFile(out.Projections, func(f io.Writer) error { return WriteProjections(f, rows) }); err != nil {
		return out, err
	}
	log.WithFields(logrus.Fields{"file": names.Projections, "rows": len(rows)}).Info("Wrote projections")

	flags := Flags(rows)
	if err := writeFile(out.Flags, func(f io.Writer) error { return WriteFlags(f, flags) }); err != nil {
		return out, err
	}
	log.WithFields(logrus.Fields{"file": names.Flags, "entries": len(flags)}).Info("Wrote flags")

	breakouts := Breakouts(rows, ShortlistSize)
	if err := writeFile(out.Breakouts, func(f io.Writer) error { return WriteShortlist(f, breakouts) }); err != nil {
		return out, err
	}
	declines := Declines(rows, ShortlistSize)
	if err := writeFile(out.Declines, func(f io.Writer) error { return WriteShortlist(f, declines) }); err != nil {
		return out, err
	}
	log.WithFields(logrus.Fields{
		"breakouts": len(breakouts),
		"declines":  len(declines),
	}).Info("Wrote shortlists")

	if !withPlot {
		return out, nil
	}
	path := filepath.Join(w.dir, names.Scatter)
	if err := SaveScatter(path, rows, plan.Target, plan.Years[0]); err != nil {
		log.WithError(err).Warn("Scatter plot skipped")
		return out, nil
	}
	out.Scatter = path
	log.WithField("file", names.Scatter).Info("Wrote scatter plot")
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
