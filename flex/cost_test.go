package flex

import (
	"testing"

	"github.com/idossha/ti-opt-core/roi"
	"github.com/stretchr/testify/require"
)

func TestFocalityPenalty_OneSided(t *testing.T) {
	indices := []uint32{0, 1}
	volumes := []float64{1, 1}
	envelope := []float64{2.0, 0.5} // element 0 above thr, element 1 below thr

	// belowThreshold: only element 1 (0.5 < 1.0) is penalized.
	require.Equal(t, 0.5, focalityPenalty(envelope, indices, volumes, 1.0, belowThreshold))

	// aboveThreshold: only element 0 (2.0 > 1.0) is penalized.
	require.Equal(t, 1.0, focalityPenalty(envelope, indices, volumes, 1.0, aboveThreshold))
}

func TestFocalityCost_DoesNotCrossPenalizeMasks(t *testing.T) {
	roiMask := &roi.Mask{Indices: []uint32{0}, Volumes: []float64{1}}
	nonROIMask := &roi.Mask{Indices: []uint32{1}, Volumes: []float64{1}}

	// A high ROI value (never penalized by the below-threshold ROI term)
	// and a low non-ROI value (never penalized by the above-threshold
	// non-ROI term) must contribute zero total penalty.
	envelope := []float64{10.0, 0.0}
	penalty := focalityPenalty(envelope, roiMask.Indices, roiMask.Volumes, 1.0, belowThreshold) +
		focalityPenalty(envelope, nonROIMask.Indices, nonROIMask.Volumes, 1.0, aboveThreshold)
	require.Equal(t, 0.0, penalty)
}
