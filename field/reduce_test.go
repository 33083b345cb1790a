package field

import (
	"math"
	"testing"

	"github.com/idossha/ti-opt-core/roi"
	"github.com/stretchr/testify/require"
)

func TestReduceROI_MaxGreaterOrEqualMean(t *testing.T) {
	field := []float64{1, 2, 3, 4, 5}
	roiMask := &roi.Mask{Indices: []uint32{0, 1, 2}, Volumes: []float64{1, 1, 1}}
	gmMask := &roi.Mask{Indices: []uint32{0, 1, 2, 3, 4}, Volumes: []float64{1, 1, 1, 1, 1}}

	metrics, anyNaN, err := ReduceROI(field, roiMask, gmMask)
	require.NoError(t, err)
	require.False(t, anyNaN)
	require.GreaterOrEqual(t, metrics.Max, metrics.VolumeWeightedMean)
	require.Equal(t, 3, metrics.NElements)
}

func TestReduceROI_FocalityZeroWhenGMZero(t *testing.T) {
	field := []float64{0, 0, 0, 5}
	roiMask := &roi.Mask{Indices: []uint32{3}, Volumes: []float64{1}}
	gmMask := &roi.Mask{Indices: []uint32{0, 1, 2}, Volumes: []float64{1, 1, 1}}

	metrics, _, err := ReduceROI(field, roiMask, gmMask)
	require.NoError(t, err)
	require.Equal(t, 0.0, metrics.FocalityRatio)
}

func TestReduceROI_NaNPropagatesButWarns(t *testing.T) {
	field := []float64{1, math.NaN(), 3}
	roiMask := &roi.Mask{Indices: []uint32{0, 1, 2}, Volumes: []float64{1, 1, 1}}
	gmMask := roiMask

	metrics, anyNaN, err := ReduceROI(field, roiMask, gmMask)
	require.NoError(t, err)
	require.True(t, anyNaN)
	require.True(t, math.IsNaN(metrics.Max))
}

func TestReduceROI_EmptyMaskIsFatal(t *testing.T) {
	field := []float64{1, 2, 3}
	empty := &roi.Mask{}
	full := &roi.Mask{Indices: []uint32{0, 1, 2}, Volumes: []float64{1, 1, 1}}

	_, _, err := ReduceROI(field, empty, full)
	require.Error(t, err)
}
