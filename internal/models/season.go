package models

import (
	"fmt"
	"time"
)

// SeasonPlan names the season being projected and the three completed
// seasons feeding it, most recent first.
type SeasonPlan struct {
	Target     int
	Historical [3]int
	// Years holds Y1..Y3. It differs from Historical only after a shift
	// caused by missing data; zero marks an unusable slot.
	Years [3]int
}

// PlanSeasons derives the target season from the run date. From November
// on the upcoming season is projected from the one just finished.
func PlanSeasons(today time.Time) SeasonPlan {
	year := today.Year()
	if today.Month() >= time.November {
		return planFor(year + 1)
	}
	return planFor(year)
}

// PlanForTarget builds a plan for an explicit target season.
func PlanForTarget(target int) SeasonPlan {
	return planFor(target)
}

func planFor(target int) SeasonPlan {
	hist := [3]int{target - 1, target - 2, target - 3}
	return SeasonPlan{Target: target, Historical: hist, Years: hist}
}

// Shift re-points Y1..Y3 at the available years, newest first, when the
// most recent historical year is missing. Otherwise the plan is left alone
// and a gap in Y2 or Y3 stays an empty slot. Missing slots become zero.
func (p *SeasonPlan) Shift(available []int) {
	if len(available) > 0 && available[0] == p.Historical[0] {
		p.Years = p.Historical
		return
	}
	var years [3]int
	for i := 0; i < len(years) && i < len(available); i++ {
		years[i] = available[i]
	}
	p.Years = years
}

// Shifted reports whether Y1 is no longer the most recent historical year.
func (p SeasonPlan) Shifted() bool {
	return p.Years[0] != p.Historical[0]
}

// Suffix is appended to output file names when projections rest on older data.
func (p SeasonPlan) Suffix() string {
	if p.Shifted() {
		return fmt.Sprintf("_based_on_%d", p.Years[0])
	}
	return ""
}

// AgeReference is the date ages are computed at: opening week of the target season.
func (p SeasonPlan) AgeReference() time.Time {
	return time.Date(p.Target, time.April, 1, 0, 0, 0, 0, time.UTC)
}
