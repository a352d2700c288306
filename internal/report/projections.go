// Package report turns ranked projection rows into the run's artifacts:
// the projections table, review flags, shortlists, a scatter plot and a
// logged validation summary.
package report

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stitts-dev/mlb-projections/internal/projection"
)

// ProjectionColumns is the header of the main projections file.
var ProjectionColumns = []string{
	"Player Name", "MLBAM ID", "Position", "Team", "Age", "Projected PA",
	"WeightedBase", "AgeMod", "ParkFactor", "PlayingTimeMod",
	"xwOBA_Adjustment", "SpeedBonus", "ProjectedFP",
	"FP_MostRecentYear", "Projection_vs_MostRecent", "Percentile",
}

// WriteProjections writes one line per row in the order given.
func WriteProjections(w io.Writer, rows []*projection.MasterRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProjectionColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Name,
			formatID(r.TrackingID),
			r.Position,
			r.Team,
			formatOne(r.Age),
			formatOne(r.ProjPT),
			formatOne(r.WeightedBase),
			formatOne(r.AgeMod),
			formatOne(r.ParkFactor),
			formatOne(r.PlayingTimeMod),
			formatOne(r.XWOBAAdjustment),
			formatOne(r.SpeedBonus),
			formatOne(r.ProjectedFP),
			formatOne(r.FPMostRecent),
			formatNullable(r.DeltaPct),
			formatOne(r.Percentile),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOne(v float64) string {
	return strconv.FormatFloat(projection.Round1(v), 'f', 1, 64)
}

func formatNullable(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return formatOne(v.Float64)
}

func formatID(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
