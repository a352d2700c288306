package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanSeasons(t *testing.T) {
	tests := []struct {
		name       string
		today      time.Time
		target     int
		historical [3]int
	}{
		{"spring projects current year", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 2026, [3]int{2025, 2024, 2023}},
		{"october still current year", time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC), 2026, [3]int{2025, 2024, 2023}},
		{"november rolls forward", time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC), 2027, [3]int{2026, 2025, 2024}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanSeasons(tt.today)
			assert.Equal(t, tt.target, plan.Target)
			assert.Equal(t, tt.historical, plan.Historical)
			assert.Equal(t, tt.historical, plan.Years)
			assert.False(t, plan.Shifted())
			assert.Empty(t, plan.Suffix())
		})
	}
}

func TestSeasonPlan_Shift(t *testing.T) {
	plan := PlanForTarget(2026)
	plan.Shift([]int{2024, 2023})

	assert.Equal(t, [3]int{2024, 2023, 0}, plan.Years)
	assert.True(t, plan.Shifted())
	assert.Equal(t, "_based_on_2024", plan.Suffix())
}

func TestSeasonPlan_ShiftKeepsSlotsWhenPrimaryYearPresent(t *testing.T) {
	plan := PlanForTarget(2026)
	plan.Shift([]int{2025, 2023})

	assert.Equal(t, [3]int{2025, 2024, 2023}, plan.Years)
	assert.False(t, plan.Shifted())
	assert.Empty(t, plan.Suffix())
}

func TestSeasonPlan_AgeReference(t *testing.T) {
	plan := PlanForTarget(2026)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), plan.AgeReference())
}
