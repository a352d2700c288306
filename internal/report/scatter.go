package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/stitts-dev/mlb-projections/internal/projection"
)

// Age range of the color scale; older and younger players take the end colors.
const (
	ScatterMinAge = 22.0
	ScatterMaxAge = 38.0
	// ScatterLabels is how many of the largest movers are named on the plot.
	ScatterLabels = 12
)

var errNothingToPlot = errors.New("no rows to plot")

// Scatter plots last season's actual points against the projection, colored
// by age, with a y = x reference line.
func Scatter(rows []*projection.MasterRow, target, recent int) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, errNothingToPlot
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d Fantasy Baseball Projections vs %d Actuals (color: age %.0f to %.0f)",
		target, recent, ScatterMinAge, ScatterMaxAge)
	p.X.Label.Text = fmt.Sprintf("%d Actual Fantasy Points", recent)
	p.Y.Label.Text = fmt.Sprintf("%d Projected Fantasy Points", target)
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rows))
	lim := 0.0
	for i, r := range rows {
		pts[i].X = r.FPMostRecent
		pts[i].Y = r.ProjectedFP
		lim = math.Max(lim, math.Max(r.FPMostRecent, r.ProjectedFP))
	}
	lim += 50

	ages := moreland.SmoothGreenRed()
	ages.SetMax(ScatterMaxAge)
	ages.SetMin(ScatterMinAge)
	ages.SetAlpha(0.5)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter: %w", err)
	}
	base := scatter.GlyphStyle
	base.Radius = vg.Points(3)
	base.Shape = draw.CircleGlyph{}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		style := base
		age := math.Min(math.Max(rows[i].Age, ScatterMinAge), ScatterMaxAge)
		if c, err := ages.At(age); err == nil {
			style.Color = c
		}
		return style
	}

	ref, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: lim, Y: lim}})
	if err != nil {
		return nil, fmt.Errorf("failed to build reference line: %w", err)
	}
	ref.LineStyle.Color = color.Gray{Y: 100}
	ref.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(scatter, ref)
	p.Legend.Add("No change", ref)
	p.Legend.Top = true
	p.Legend.Left = true

	movers := LargestMovers(rows, ScatterLabels)
	if len(movers) > 0 {
		lbl := plotter.XYLabels{XYs: make(plotter.XYs, len(movers)), Labels: make([]string, len(movers))}
		for i, r := range movers {
			lbl.XYs[i] = plotter.XY{X: r.FPMostRecent, Y: r.ProjectedFP}
			lbl.Labels[i] = lastName(r.Name)
		}
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return nil, fmt.Errorf("failed to build labels: %w", err)
		}
		labels.Offset = vg.Point{X: vg.Points(3), Y: vg.Points(3)}
		p.Add(labels)
	}
	return p, nil
}

// SaveScatter renders the plot to path; the extension picks the format.
func SaveScatter(path string, rows []*projection.MasterRow, target, recent int) error {
	p, err := Scatter(rows, target, recent)
	if err != nil {
		return err
	}
	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save scatter: %w", err)
	}
	return nil
}

// LargestMovers returns the n rows whose projection differs most from last
// season's points.
func LargestMovers(rows []*projection.MasterRow, n int) []*projection.MasterRow {
	out := make([]*projection.MasterRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ProjectedFP-out[i].FPMostRecent) > math.Abs(out[j].ProjectedFP-out[j].FPMostRecent)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func lastName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name
	}
	return parts[len(parts)-1]
}
