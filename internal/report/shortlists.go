package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/stitts-dev/mlb-projections/internal/projection"
)

const ShortlistSize = 20

// Breakouts are young players whose contact quality outran their results
// and who run well.
func Breakouts(rows []*projection.MasterRow, n int) []*projection.MasterRow {
	return shortlist(rows, n, func(r *projection.MasterRow) bool {
		return r.Age < 27 && r.XWOBAAdjustment > 0 && r.SpeedPct >= 70
	})
}

// Declines are veterans whose results outran their contact quality.
func Declines(rows []*projection.MasterRow, n int) []*projection.MasterRow {
	return shortlist(rows, n, func(r *projection.MasterRow) bool {
		return r.Age > 32 && r.XWOBAAdjustment < 0
	})
}

func shortlist(rows []*projection.MasterRow, n int, keep func(*projection.MasterRow) bool) []*projection.MasterRow {
	var out []*projection.MasterRow
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProjectedFP > out[j].ProjectedFP
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func WriteShortlist(w io.Writer, rows []*projection.MasterRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "age", "xwOBA_Adjustment", "ProjectedFP"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, formatOne(r.Age), formatOne(r.XWOBAAdjustment), formatOne(r.ProjectedFP)}); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
