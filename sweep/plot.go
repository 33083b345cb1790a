package sweep

import (
	"fmt"

	"github.com/idossha/ti-opt-core/core"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WritePlot renders pareto_sweep_plot.png: one line per ROIPct, x-axis
// NonROIPct, y-axis focality score. Points with no score (failed or still
// pending) are skipped rather than plotted as zero.
func WritePlot(path string, result *Result) error {
	p := plot.New()
	p.Title.Text = "Pareto Threshold Sweep"
	p.X.Label.Text = "NonROI %"
	p.Y.Label.Text = "Focality Score"

	byROI := map[float64]plotter.XYs{}
	var order []float64
	for _, point := range result.Points {
		if point.Score == nil {
			continue
		}
		if _, ok := byROI[point.ROIPct]; !ok {
			order = append(order, point.ROIPct)
		}
		byROI[point.ROIPct] = append(byROI[point.ROIPct], plotter.XY{X: point.NonROIPct, Y: *point.Score})
	}

	for _, roiPct := range order {
		line, err := plotter.NewLine(byROI[roiPct])
		if err != nil {
			return core.Wrap(core.ErrIO, "build pareto plot line for roi=%g", roiPct)
		}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("ROI %g%%", roiPct), line)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return core.Wrap(core.ErrIO, "save pareto plot %s", path)
	}
	return nil
}
