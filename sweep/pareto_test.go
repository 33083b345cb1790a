package sweep

import (
	"context"
	"testing"

	"github.com/idossha/ti-opt-core/core"
	"github.com/stretchr/testify/require"
)

// S5. Pareto grid rejection.
func TestValidateGrid_S5(t *testing.T) {
	require.Error(t, ValidateGrid([]float64{50}, []float64{50}))
	require.Error(t, ValidateGrid([]float64{40}, []float64{60}))

	err := ValidateGrid([]float64{80, 70}, []float64{20, 80})
	require.Error(t, err)
	require.Contains(t, err.Error(), "(80,80)")
	require.Contains(t, err.Error(), "(70,80)")

	require.NoError(t, ValidateGrid([]float64{80, 70}, []float64{20, 30}))
}

// S6. Pareto grid construction.
func TestComputeGrid_S6(t *testing.T) {
	cfg := Config{ROIPcts: []float64{80, 70}, NonROIPcts: []float64{20, 30}, AchievableROIMean: 2.0, BaseOutputFolder: "/out"}
	points := ComputeGrid(cfg)
	require.Len(t, points, 4)

	want := []Point{
		{ROIPct: 80, NonROIPct: 20, ROIThresholdAbs: 1.6, NonROIThresholdAbs: 0.4},
		{ROIPct: 80, NonROIPct: 30, ROIThresholdAbs: 1.6, NonROIThresholdAbs: 0.6},
		{ROIPct: 70, NonROIPct: 20, ROIThresholdAbs: 1.4, NonROIThresholdAbs: 0.4},
		{ROIPct: 70, NonROIPct: 30, ROIThresholdAbs: 1.4, NonROIThresholdAbs: 0.6},
	}
	wantDirs := []string{"/out/01_roi80_nonroi20", "/out/02_roi80_nonroi30", "/out/03_roi70_nonroi20", "/out/04_roi70_nonroi30"}
	for i, w := range want {
		require.Equal(t, w.ROIPct, points[i].ROIPct)
		require.Equal(t, w.NonROIPct, points[i].NonROIPct)
		require.InDelta(t, w.ROIThresholdAbs, points[i].ROIThresholdAbs, 1e-9)
		require.InDelta(t, w.NonROIThresholdAbs, points[i].NonROIThresholdAbs, 1e-9)
		require.Equal(t, wantDirs[i], points[i].OutputFolder)
	}
}

// S7. Grid iteration order: point k has roi_pct = roiPcts[k/S], nonroi_pct
// = nonroiPcts[k%S], S = len(nonroiPcts).
func TestComputeGrid_S7_IterationOrder(t *testing.T) {
	roiPcts := []float64{90, 80, 70}
	nonroiPcts := []float64{10, 20}
	s := len(nonroiPcts)
	cfg := Config{ROIPcts: roiPcts, NonROIPcts: nonroiPcts, AchievableROIMean: 1.0}
	points := ComputeGrid(cfg)
	for k, p := range points {
		require.Equal(t, roiPcts[k/s], p.ROIPct)
		require.Equal(t, nonroiPcts[k%s], p.NonROIPct)
	}
}

// S9. Log parser exact match.
func TestParseSweepLine_S9(t *testing.T) {
	v, ok := ParseSweepLine("Final goal function value:   -42.123")
	require.True(t, ok)
	require.Equal(t, -42.123, v)
}

func TestParseSweepLine_FallbackPattern(t *testing.T) {
	v, ok := ParseSweepLine("goal function value for run 3: 7.5")
	require.True(t, ok)
	require.Equal(t, 7.5, v)
}

func TestParseSweepLine_NoMatch(t *testing.T) {
	_, ok := ParseSweepLine("unrelated log line")
	require.False(t, ok)
}

func TestRun_PartialFailuresContinueToCompletion(t *testing.T) {
	cfg := Config{ROIPcts: []float64{80}, NonROIPcts: []float64{10, 20}, AchievableROIMean: 1.0, BaseOutputFolder: "/out"}
	runOne := func(p Point) (float64, error) {
		if p.NonROIPct == 20 {
			return 0, core.ErrNumericalFailure
		}
		return 0.5, nil
	}
	result, err := Run(context.Background(), cfg, runOne, core.NullSink{})
	require.NoError(t, err)
	require.Equal(t, "done", result.Points[0].Status)
	require.Equal(t, "failed", result.Points[1].Status)
}

func TestRun_CancellationLeavesPending(t *testing.T) {
	cfg := Config{ROIPcts: []float64{80, 70}, NonROIPcts: []float64{10}, AchievableROIMean: 1.0, BaseOutputFolder: "/out"}
	cancel := &core.CancelFlag{}
	sink := core.NewStdoutSink(nil, cancel)
	calls := 0
	runOne := func(p Point) (float64, error) {
		calls++
		cancel.Cancel()
		return 1.0, nil
	}
	result, err := Run(context.Background(), cfg, runOne, sink)
	require.ErrorIs(t, err, core.ErrCancelled)
	require.True(t, result.Cancelled)
	require.Equal(t, "done", result.Points[0].Status)
	require.Equal(t, "pending", result.Points[1].Status)
}
