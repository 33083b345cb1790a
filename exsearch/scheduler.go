// Package exsearch enumerates a Cartesian product of electrode tuples and
// current ratios, evaluating each via the field engine and accumulating
// per-montage metrics — the exhaustive counterpart to flex's evolutionary
// search.
package exsearch

import (
	"context"
	"math"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/field"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/sirupsen/logrus"
)

// MontageResult is one enumerated tuple's outcome.
type MontageResult struct {
	Montage   string
	I1MA      float64
	I2MA      float64
	TImaxROI  float64
	TImeanROI float64
	TImeanGM  float64
	Focality  float64
	Composite float64
	NElements int
	Status    string // "ok" or "failed"
}

// Result is a completed (or cancelled-partial) scheduler run.
type Result struct {
	Rows      []MontageResult
	Cancelled bool
}

// Run evaluates the full Cartesian product of cfg's electrode sets and
// current ratios in enumeration order, checking sink.IsCancelled() after
// every evaluation. On cancellation it returns the rows accumulated so far
// with core.ErrCancelled. A single evaluation's failure records a sentinel
// row (Composite NaN, Status "failed") and the sweep continues.
func Run(ctx context.Context, cfg Config, lf *leadfield.Leadfield, roiMask, gmMask *roi.Mask, sink core.ProgressSink) (*Result, error) {
	ratios := GenerateCurrentRatios(cfg)
	total := len(cfg.E1Plus) * len(cfg.E1Minus) * len(cfg.E2Plus) * len(cfg.E2Minus) * len(ratios)

	result := &Result{Rows: make([]MontageResult, 0, total)}
	index := 0

	for _, e1p := range cfg.E1Plus {
		for _, e1m := range cfg.E1Minus {
			for _, e2p := range cfg.E2Plus {
				for _, e2m := range cfg.E2Minus {
					for _, ratio := range ratios {
						select {
						case <-ctx.Done():
							result.Cancelled = true
							return result, core.ErrCancelled
						default:
						}

						row := evaluate(lf, roiMask, gmMask, e1p, e1m, e2p, e2m, ratio)
						result.Rows = append(result.Rows, row)
						index++

						sink.Log(core.LogInfo, row.Montage)
						if sink.IsCancelled() {
							result.Cancelled = true
							return result, core.ErrCancelled
						}
					}
				}
			}
		}
	}
	return result, nil
}

func evaluate(lf *leadfield.Leadfield, roiMask, gmMask *roi.Mask, e1p, e1m, e2p, e2m string, ratio CurrentRatio) MontageResult {
	montage := MontageName(e1p, e1m, e2p, e2m)

	anode1 := []leadfield.ElectrodeMeta{{Label: e1p}}
	cathode1 := []leadfield.ElectrodeMeta{{Label: e1m}}
	anode2 := []leadfield.ElectrodeMeta{{Label: e2p}}
	cathode2 := []leadfield.ElectrodeMeta{{Label: e2m}}

	i1A := ratio.I1MA / 1000.0
	i2A := ratio.I2MA / 1000.0

	e1 := field.ChannelField(lf, anode1, cathode1, i1A)
	e2 := field.ChannelField(lf, anode2, cathode2, i2A)
	envelope := field.TIEnvelope(e1, e2)

	roiMetrics, _, err := field.ReduceROI(envelope, roiMask, gmMask)
	if err != nil {
		logrus.WithError(err).WithField("montage", montage).Warn("exsearch evaluation failed")
		return MontageResult{
			Montage:   montage,
			I1MA:      ratio.I1MA,
			I2MA:      ratio.I2MA,
			Composite: math.NaN(),
			Status:    "failed",
		}
	}
	gmMetrics, _, err := field.ReduceROI(envelope, gmMask, gmMask)
	if err != nil {
		logrus.WithError(err).WithField("montage", montage).Warn("exsearch GM reduction failed")
		return MontageResult{
			Montage:   montage,
			I1MA:      ratio.I1MA,
			I2MA:      ratio.I2MA,
			Composite: math.NaN(),
			Status:    "failed",
		}
	}

	return MontageResult{
		Montage:   montage,
		I1MA:      ratio.I1MA,
		I2MA:      ratio.I2MA,
		TImaxROI:  roiMetrics.Max,
		TImeanROI: roiMetrics.VolumeWeightedMean,
		TImeanGM:  gmMetrics.VolumeWeightedMean,
		Focality:  roiMetrics.FocalityRatio,
		Composite: roiMetrics.VolumeWeightedMean * roiMetrics.FocalityRatio,
		NElements: roiMetrics.NElements,
		Status:    "ok",
	}
}
