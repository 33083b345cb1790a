package flex

import (
	"math"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/field"
)

// CostFunc is the only contract flex exposes to a solver backend: a
// dependency-free callable with no hidden state, so backends swap without
// touching the Field Engine or schedulers (solver.Method is the seam).
type CostFunc func(x []float64) float64

// infCost is returned by MeanCost and MaxCost whenever field.ReduceROI
// fails (an empty ROI or grey-matter mask, or a dimension mismatch) — the
// multi-start runner's argmin selection already treats +Inf as a failed
// trial, so the cost function itself never needs to signal failure any
// other way.
var infCost = math.Inf(1)

// MeanCost minimizes the negative volume-weighted ROI mean.
func MeanCost(p *Problem) CostFunc {
	return func(x []float64) float64 {
		envelope := p.Envelope(x)
		metrics, _, err := field.ReduceROI(envelope, p.ROIMask, p.GMMask)
		if err != nil {
			return infCost
		}
		return -metrics.VolumeWeightedMean
	}
}

// MaxCost minimizes the negative ROI maximum.
func MaxCost(p *Problem) CostFunc {
	return func(x []float64) float64 {
		envelope := p.Envelope(x)
		metrics, _, err := field.ReduceROI(envelope, p.ROIMask, p.GMMask)
		if err != nil {
			return infCost
		}
		return -metrics.Max
	}
}

// FocalityCost builds the piecewise focality penalty: a volume-weighted
// penalty for ROI elements below roiThr plus a volume-weighted penalty for
// non-ROI elements above nonroiThr, both minimized. Each term applies to its
// own mask only — a high-TI ROI element is never penalized by the non-ROI
// term, and a low-TI non-ROI element is never penalized by the ROI term.
// The non-ROI term uses p.NonROIMask, the independently-configured
// suppression region — not p.GMMask, the true grey-matter mask used
// elsewhere for the focality-ratio denominator.
func FocalityCost(p *Problem, roiThr, nonroiThr float64) CostFunc {
	return func(x []float64) float64 {
		envelope := p.Envelope(x)
		return focalityPenalty(envelope, p.ROIMask.Indices, p.ROIMask.Volumes, roiThr, belowThreshold) +
			focalityPenalty(envelope, p.NonROIMask.Indices, p.NonROIMask.Volumes, nonroiThr, aboveThreshold)
	}
}

// belowThreshold/aboveThreshold select focalityPenalty's one-sided
// condition: belowThreshold penalizes elements under threshold (the ROI
// term), aboveThreshold penalizes elements over it (the non-ROI term).
const (
	belowThreshold = true
	aboveThreshold = false
)

func focalityPenalty(envelope []float64, indices []uint32, volumes []float64, threshold float64, below bool) float64 {
	var penalty float64
	for k, idx := range indices {
		v := envelope[idx]
		if below {
			if v < threshold {
				penalty += volumes[k] * (threshold - v)
			}
		} else {
			if v > threshold {
				penalty += volumes[k] * (v - threshold)
			}
		}
	}
	return penalty
}

// NewCost builds the cost function for the named goal. goal must be one of
// "mean", "max", "focality" — an unrecognized goal is a fatal configuration
// error caught at the CLI boundary, not here, so NewCost panics on an
// unknown goal rather than returning a sentinel the caller must check
// inline with every other construction step.
func NewCost(p *Problem, goal string, roiThr, nonroiThr float64) CostFunc {
	switch goal {
	case "mean":
		return MeanCost(p)
	case "max":
		return MaxCost(p)
	case "focality":
		return FocalityCost(p, roiThr, nonroiThr)
	default:
		panic(core.Wrap(core.ErrInvalidInput, "unknown flex goal %q", goal))
	}
}
