package exsearch

import (
	"github.com/idossha/ti-opt-core/core"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteDistributionPlot renders montage_distributions.png: side-by-side
// histograms of TImax_ROI and TImean_ROI across every enumerated montage,
// recovered from the original analyzer's post-hoc diagnostic plots.
// Failed rows (Composite NaN) are excluded.
func WriteDistributionPlot(path string, rows []MontageResult) error {
	var maxVals, meanVals plotter.Values
	for _, r := range rows {
		if r.Status != "ok" {
			continue
		}
		maxVals = append(maxVals, r.TImaxROI)
		meanVals = append(meanVals, r.TImeanROI)
	}

	p := plot.New()
	p.Title.Text = "Montage TI Distributions"
	p.X.Label.Text = "V/m"
	p.Y.Label.Text = "Count"

	maxHist, err := plotter.NewHist(maxVals, 20)
	if err != nil {
		return core.Wrap(core.ErrIO, "build TImax histogram")
	}
	maxHist.FillColor = nil
	p.Add(maxHist)
	p.Legend.Add("TImax_ROI", maxHist)

	meanHist, err := plotter.NewHist(meanVals, 20)
	if err != nil {
		return core.Wrap(core.ErrIO, "build TImean histogram")
	}
	p.Add(meanHist)
	p.Legend.Add("TImean_ROI", meanHist)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return core.Wrap(core.ErrIO, "save montage distribution plot %s", path)
	}
	return nil
}
