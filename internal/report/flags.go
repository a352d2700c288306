package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/stitts-dev/mlb-projections/internal/projection"
)

// Review thresholds.
const (
	LowPlayingTime     = 300.0
	LargeXWOBAAdj      = 30.0
	VeteranAge         = 35.0
	MinSeasonsForTrust = 2
)

// Flag marks a row a human should look at before trusting its projection.
type Flag struct {
	Name        string
	Value       float64
	ProjectedFP float64
	Reason      string
}

// Flags collects every review flag. A row can be flagged more than once.
// The result is ordered by ProjectedFP, highest first; ties keep the order
// of the checks below.
func Flags(rows []*projection.MasterRow) []Flag {
	var flags []Flag
	add := func(r *projection.MasterRow, value float64, reason string) {
		flags = append(flags, Flag{Name: r.Name, Value: value, ProjectedFP: r.ProjectedFP, Reason: reason})
	}

	for _, r := range rows {
		if r.ProjPT < LowPlayingTime {
			add(r, r.ProjPT, "Low projected PA/IP (injury/role concern)")
		}
	}
	for _, r := range rows {
		adj := r.XWOBAAdjustment
		if math.Abs(adj) <= LargeXWOBAAdj {
			continue
		}
		if adj > 0 {
			add(r, adj, fmt.Sprintf("Large positive xwOBA adj (+%.1f): due for positive regression", adj))
		} else {
			add(r, adj, fmt.Sprintf("Large negative xwOBA adj (%.1f): may underperform", adj))
		}
	}
	for _, r := range rows {
		if r.Age >= VeteranAge {
			add(r, r.Age, fmt.Sprintf("Age %.0f: heightened decline risk", r.Age))
		}
	}
	for _, r := range rows {
		prior := r.FantasyPoints[1]
		if !prior.Valid || prior.Float64 == 0 {
			add(r, r.FPMostRecent, fmt.Sprintf("Limited sample: fewer than %d years of data", MinSeasonsForTrust))
		}
	}

	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].ProjectedFP > flags[j].ProjectedFP
	})
	return flags
}

func WriteFlags(w io.Writer, flags []Flag) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "flag_value", "ProjectedFP", "flag"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, f := range flags {
		if err := cw.Write([]string{f.Name, formatOne(f.Value), formatOne(f.ProjectedFP), f.Reason}); err != nil {
			return fmt.Errorf("failed to write flag for %s: %w", f.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
