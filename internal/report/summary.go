package report

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/mlb-projections/internal/projection"
)

// Sanity band for the mean projection across everyone ranked.
const (
	MeanFPLow  = 250.0
	MeanFPHigh = 400.0
	TopN       = 20
)

// ParkCheck is a directional check that a known park pushes its hitters
// the expected way.
type ParkCheck struct {
	Team    string
	Above   bool // expected factor above 1.00
	Players int
	MeanPF  float64
	OK      bool
}

// Summary is the post-run validation report.
type Summary struct {
	Target     int
	Ranked     int
	Top        []*projection.MasterRow
	MeanFP     float64
	MeanInBand bool
	FPRange    [2]float64

	Parks []ParkCheck

	Young             int
	YoungExceptions   int
	Veterans          int
	VeteranExceptions int
}

var parkChecks = []struct {
	team  string
	above bool
}{
	{"COL", true},
	{"SF", false},
	{"MIA", false},
}

// Summarize computes the validation checks over ranked rows.
func Summarize(rows []*projection.MasterRow, target int, s projection.Settings) Summary {
	sum := Summary{Target: target, Ranked: len(rows)}
	if len(rows) == 0 {
		return sum
	}

	n := TopN
	if len(rows) < n {
		n = len(rows)
	}
	sum.Top = rows[:n]

	fp := make([]float64, len(rows))
	for i, r := range rows {
		fp[i] = r.ProjectedFP
	}
	sum.MeanFP = stat.Mean(fp, nil)
	sum.MeanInBand = sum.MeanFP >= MeanFPLow && sum.MeanFP <= MeanFPHigh
	sum.FPRange = [2]float64{floats.Min(fp), floats.Max(fp)}

	// Pitchers use inverted factors, so only hitters are checked.
	for _, pc := range parkChecks {
		var pfs []float64
		for _, r := range rows {
			if r.IsPitcher() || s.NormalizeTeam(r.Team) != pc.team {
				continue
			}
			pfs = append(pfs, r.ParkFactor)
			if len(pfs) == 5 {
				break
			}
		}
		check := ParkCheck{Team: pc.team, Above: pc.above, Players: len(pfs)}
		if len(pfs) > 0 {
			check.MeanPF = stat.Mean(pfs, nil)
			check.OK = (check.MeanPF > 1.0) == pc.above
		}
		sum.Parks = append(sum.Parks, check)
	}

	for _, r := range rows {
		switch {
		case r.Age < 27:
			sum.Young++
			if r.AgeMod <= 1.0 {
				sum.YoungExceptions++
			}
		case r.Age > 32:
			sum.Veterans++
			if r.AgeMod >= 1.0 {
				sum.VeteranExceptions++
			}
		}
	}
	return sum
}

// Log writes the summary; failed checks are logged at WARN.
func (sum Summary) Log(log *logrus.Entry) {
	log = log.WithField("component", "validation")
	for i, r := range sum.Top {
		delta := "N/A"
		if r.DeltaPct.Valid {
			delta = fmt.Sprintf("%+.1f%%", r.DeltaPct.Float64)
		}
		log.WithFields(logrus.Fields{
			"rank":       i + 1,
			"name":       r.Name,
			"team":       r.Team,
			"age":        r.Age,
			"projected":  projection.Round1(r.ProjectedFP),
			"actual":     projection.Round1(r.FPMostRecent),
			"delta":      delta,
			"percentile": fmt.Sprintf("%.0fth", r.Percentile),
		}).Info("Top projection")
	}

	meanLog := log.WithFields(logrus.Fields{
		"mean_fp": projection.Round1(sum.MeanFP),
		"min_fp":  projection.Round1(sum.FPRange[0]),
		"max_fp":  projection.Round1(sum.FPRange[1]),
		"band":    fmt.Sprintf("%.0f-%.0f", MeanFPLow, MeanFPHigh),
	})
	if sum.MeanInBand {
		meanLog.Info("Mean projected FP within expected band")
	} else {
		meanLog.Warn("Mean projected FP outside expected band")
	}

	for _, pc := range sum.Parks {
		expect := "<1.00"
		if pc.Above {
			expect = ">1.00"
		}
		pcLog := log.WithFields(logrus.Fields{
			"team":     pc.Team,
			"players":  pc.Players,
			"mean_pf":  fmt.Sprintf("%.3f", pc.MeanPF),
			"expected": expect,
		})
		switch {
		case pc.Players == 0:
			pcLog.Info("Park check: no players found")
		case pc.OK:
			pcLog.Info("Park check passed")
		default:
			pcLog.Warn("Park check failed")
		}
	}

	ageLog := log.WithFields(logrus.Fields{
		"young":              sum.Young,
		"young_exceptions":   sum.YoungExceptions,
		"veterans":           sum.Veterans,
		"veteran_exceptions": sum.VeteranExceptions,
	})
	if sum.YoungExceptions == 0 && sum.VeteranExceptions == 0 {
		ageLog.Info("Age modifier check passed")
	} else {
		ageLog.Warn("Age modifier check found exceptions")
	}
}
