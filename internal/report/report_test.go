package report

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/internal/projection"
	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

func row(name string, fp, recent, age, adj float64) *projection.MasterRow {
	return &projection.MasterRow{
		Role:            models.RoleBatter,
		Name:            name,
		Team:            "NYY",
		Age:             age,
		ProjPT:          600,
		AgeMod:          1.0,
		ParkFactor:      1.0,
		XWOBAAdjustment: adj,
		SpeedPct:        50,
		ProjectedFP:     fp,
		FPMostRecent:    recent,
		FantasyPoints:   [3]sql.NullFloat64{models.Some(recent), models.Some(recent), {}},
	}
}

func readAll(t *testing.T, data []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteProjections(t *testing.T) {
	r := row("Aaron Judge", 512.345, 480, 33.04, 4.26)
	r.TrackingID = models.SomeInt(592450)
	r.Position = "OF"
	r.DeltaPct = models.Some(6.7)
	r.Percentile = 100
	noID := row("Prospect Guy", 250, 0, 24, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteProjections(&buf, []*projection.MasterRow{r, noID}))

	recs := readAll(t, buf.Bytes())
	require.Len(t, recs, 3)
	assert.Equal(t, ProjectionColumns, recs[0])
	assert.Equal(t, []string{
		"Aaron Judge", "592450", "OF", "NYY", "33.0", "600.0",
		"0.0", "1.0", "1.0", "0.0", "4.3", "0.0", "512.3",
		"480.0", "6.7", "100.0",
	}, recs[1])
	assert.Equal(t, "", recs[2][1])
	assert.Equal(t, "", recs[2][14])
}

func TestFlags(t *testing.T) {
	low := row("Low Time", 300, 280, 29, 0)
	low.ProjPT = 250
	hot := row("Hot Bat", 400, 350, 29, 31.24)
	cold := row("Cold Bat", 350, 380, 29, -35)
	vet := row("Old Timer", 200, 220, 36.4, 0)
	rookie := row("New Guy", 450, 300, 24, 0)
	rookie.FantasyPoints[1] = sql.NullFloat64{}
	zero := row("Zero Prior", 100, 90, 30, 0)
	zero.FantasyPoints[1] = models.Some(0)
	fine := row("Solid Regular", 500, 480, 29, 5)

	flags := Flags([]*projection.MasterRow{low, hot, cold, vet, rookie, zero, fine})
	require.Len(t, flags, 6)

	var names []string
	for _, f := range flags {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"New Guy", "Hot Bat", "Cold Bat", "Low Time", "Old Timer", "Zero Prior"}, names)

	assert.Equal(t, "Limited sample: fewer than 2 years of data", flags[0].Reason)
	assert.Equal(t, 300.0, flags[0].Value)
	assert.Equal(t, "Large positive xwOBA adj (+31.2): due for positive regression", flags[1].Reason)
	assert.Equal(t, "Large negative xwOBA adj (-35.0): may underperform", flags[2].Reason)
	assert.Equal(t, 250.0, flags[3].Value)
	assert.Equal(t, "Age 36: heightened decline risk", flags[4].Reason)

	var buf bytes.Buffer
	require.NoError(t, WriteFlags(&buf, flags))
	recs := readAll(t, buf.Bytes())
	assert.Equal(t, []string{"Name", "flag_value", "ProjectedFP", "flag"}, recs[0])
	assert.Len(t, recs, 7)
}

func TestFlags_RowCanCarrySeveral(t *testing.T) {
	r := row("Everything Wrong", 150, 0, 38, -40)
	r.ProjPT = 100
	r.FantasyPoints[1] = sql.NullFloat64{}

	flags := Flags([]*projection.MasterRow{r})
	assert.Len(t, flags, 4)
}

func TestShortlists(t *testing.T) {
	fast := row("Fast Kid", 300, 250, 24, 10)
	fast.SpeedPct = 85
	slow := row("Slow Kid", 350, 300, 24, 10)
	slow.SpeedPct = 40
	unlucky := row("Unlucky Kid", 320, 300, 25, -5)
	unlucky.SpeedPct = 90
	vet := row("Vet", 280, 300, 34, -12)
	vetUp := row("Vet Up", 300, 300, 34, 12)

	rows := []*projection.MasterRow{fast, slow, unlucky, vet, vetUp}
	assert.Equal(t, []*projection.MasterRow{fast}, Breakouts(rows, ShortlistSize))
	assert.Equal(t, []*projection.MasterRow{vet}, Declines(rows, ShortlistSize))

	var many []*projection.MasterRow
	for i := 0; i < 30; i++ {
		r := row("Kid", float64(i), 0, 23, 1)
		r.SpeedPct = 75
		many = append(many, r)
	}
	top := Breakouts(many, ShortlistSize)
	require.Len(t, top, ShortlistSize)
	assert.Equal(t, 29.0, top[0].ProjectedFP)

	var buf bytes.Buffer
	require.NoError(t, WriteShortlist(&buf, []*projection.MasterRow{fast}))
	assert.Equal(t, "Name,age,xwOBA_Adjustment,ProjectedFP\nFast Kid,24.0,10.0,300.0\n", buf.String())
}

func TestLargestMovers(t *testing.T) {
	a := row("A Small", 300, 295, 28, 0)
	b := row("B Big", 300, 100, 28, 0)
	c := row("C Drop", 100, 400, 28, 0)
	movers := LargestMovers([]*projection.MasterRow{a, b, c}, 2)
	assert.Equal(t, []*projection.MasterRow{c, b}, movers)
	assert.Equal(t, "Drop", lastName(c.Name))
	assert.Equal(t, "", lastName(""))
}

func TestSummarize(t *testing.T) {
	s := projection.DefaultSettings()
	col := row("Rockies Hitter", 400, 380, 25, 0)
	col.Team = "COL"
	col.ParkFactor = 1.15
	col.AgeMod = 1.018
	colArm := row("Rockies Arm", 300, 300, 29, 0)
	colArm.Team = "COL"
	colArm.Role = models.RolePitcher
	colArm.ParkFactor = 0.85
	sf := row("Giants Hitter", 300, 300, 34, 0)
	sf.Team = "SFG"
	sf.ParkFactor = 1.02
	sf.AgeMod = 1.0

	sum := Summarize([]*projection.MasterRow{col, colArm, sf}, 2026, s)
	assert.Equal(t, 3, sum.Ranked)
	assert.Len(t, sum.Top, 3)
	assert.InDelta(t, 333.33, sum.MeanFP, 0.01)
	assert.True(t, sum.MeanInBand)
	assert.Equal(t, [2]float64{300, 400}, sum.FPRange)

	require.Len(t, sum.Parks, 3)
	assert.Equal(t, ParkCheck{Team: "COL", Above: true, Players: 1, MeanPF: 1.15, OK: true}, sum.Parks[0])
	assert.Equal(t, "SF", sum.Parks[1].Team)
	assert.False(t, sum.Parks[1].OK)
	assert.Zero(t, sum.Parks[2].Players)

	assert.Equal(t, 1, sum.Young)
	assert.Zero(t, sum.YoungExceptions)
	assert.Equal(t, 1, sum.Veterans)
	assert.Equal(t, 1, sum.VeteranExceptions)

	sum.Log(logger.NewDiscard().WithField("test", true))
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, 2026, projection.DefaultSettings())
	assert.Zero(t, sum.Ranked)
	assert.False(t, sum.MeanInBand)
}

func TestFileNames(t *testing.T) {
	plan := models.PlanForTarget(2026)
	assert.Equal(t, "fantasy_projections_2026.csv", FileNames(plan).Projections)

	plan.Shift([]int{2024, 2023})
	names := FileNames(plan)
	assert.Equal(t, "fantasy_projections_2026_based_on_2024.csv", names.Projections)
	assert.Equal(t, "projection_scatter_2026_based_on_2024.png", names.Scatter)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "out"), logger.NewDiscard())

	rows := []*projection.MasterRow{
		row("Aaron Judge", 520, 480, 33, 4),
		row("Shohei Ohtani", 510, 500, 31, 2),
	}
	projection.Rank(rows)

	arts, err := w.WriteAll(rows, models.PlanForTarget(2026), true)
	require.NoError(t, err)
	for _, p := range []string{arts.Projections, arts.Flags, arts.Breakouts, arts.Declines, arts.Scatter} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}

	arts, err = w.WriteAll(rows, models.PlanForTarget(2026), false)
	require.NoError(t, err)
	assert.Empty(t, arts.Scatter)
}

func TestScatter_NoRows(t *testing.T) {
	_, err := Scatter(nil, 2026, 2025)
	assert.ErrorIs(t, err, errNothingToPlot)
}
