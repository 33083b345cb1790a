package field

import (
	"math"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/sirupsen/logrus"
)

// RoiMetrics is the reduction of an envelope field over a region of
// interest, with a grey-matter mask supplying the focality denominator.
type RoiMetrics struct {
	Max                float64
	VolumeWeightedMean float64
	FocalityRatio      float64
	NElements          int
}

// ReduceROI reduces field over roiMask and gmMask. Max ignores NaN samples
// per element but the overall result is NaN (with a logged warning, and
// anyNaN returned true) if any were seen, per the "never silently mask
// invalid input" rule. FocalityRatio is 0 when the grey-matter mean is 0
// (undefined ratio, not a divide-by-zero panic).
func ReduceROI(field []float64, roiMask, gmMask *roi.Mask) (RoiMetrics, bool, error) {
	if len(roiMask.Indices) == 0 || len(gmMask.Indices) == 0 {
		return RoiMetrics{}, false, core.ErrEmptyRoi
	}

	roiMean, roiMax, roiNaN, err := weightedMeanAndMax(field, roiMask)
	if err != nil {
		return RoiMetrics{}, false, err
	}
	gmMean, _, gmNaN, err := weightedMeanAndMax(field, gmMask)
	if err != nil {
		return RoiMetrics{}, false, err
	}

	var focality float64
	if gmMean != 0 {
		focality = roiMean / gmMean
	}

	metrics := RoiMetrics{
		VolumeWeightedMean: roiMean,
		FocalityRatio:      focality,
		NElements:          len(roiMask.Indices),
	}
	anyNaN := roiNaN || gmNaN
	if anyNaN {
		logrus.Warn("NaN envelope values seen in ROI/grey-matter reduction; Max reported as NaN")
		metrics.Max = math.NaN()
	} else {
		metrics.Max = roiMax
	}
	return metrics, anyNaN, nil
}

func weightedMeanAndMax(field []float64, mask *roi.Mask) (mean, max float64, sawNaN bool, err error) {
	var weightedSum, totalVolume float64
	haveMax := false
	for k, idx := range mask.Indices {
		if int(idx) >= len(field) {
			return 0, 0, false, core.Wrap(core.ErrDimensionMismatch, "mask index %d out of range for field of length %d", idx, len(field))
		}
		v := field[idx]
		if math.IsNaN(v) {
			sawNaN = true
			continue
		}
		vol := mask.Volumes[k]
		weightedSum += v * vol
		totalVolume += vol
		if !haveMax || v > max {
			max = v
			haveMax = true
		}
	}
	if totalVolume > 0 {
		mean = weightedSum / totalVolume
	}
	return mean, max, sawNaN, nil
}
