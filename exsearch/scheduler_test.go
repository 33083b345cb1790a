package exsearch

import (
	"context"
	"testing"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/stretchr/testify/require"
)

func testLeadfield(t *testing.T) *leadfield.Leadfield {
	t.Helper()
	electrodes := []leadfield.ElectrodeMeta{{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"}}
	e, n := len(electrodes), 3
	l := make([]float32, e*n*3)
	for ei := 0; ei < e; ei++ {
		for ni := 0; ni < n; ni++ {
			base := (ei*n + ni) * 3
			l[base] = float32(ei + 1)
			l[base+1] = float32(ni + 1)
			l[base+2] = 0
		}
	}
	return &leadfield.Leadfield{
		L:          l,
		E:          e,
		N:          n,
		Positions:  []float64{0, 0, 0, 1, 0, 0, 2, 0, 0},
		Volumes:    []float64{1, 1, 1},
		Electrodes: electrodes,
	}
}

func allMask(lf *leadfield.Leadfield) *roi.Mask {
	mask := &roi.Mask{Indices: make([]uint32, lf.N), Volumes: make([]float64, lf.N)}
	for i := 0; i < lf.N; i++ {
		mask.Indices[i] = uint32(i)
		mask.Volumes[i] = lf.Volumes[i]
	}
	return mask
}

func TestRun_EnumeratesInOrderAndWritesResults(t *testing.T) {
	lf := testLeadfield(t)
	mask := allMask(lf)

	cfg := Config{
		E1Plus: []string{"A"}, E1Minus: []string{"B"},
		E2Plus: []string{"C"}, E2Minus: []string{"D"},
		TotalCurrentMA: 2.0, CurrentStepMA: 1.0, ChannelLimitMA: 1.5,
	}

	result, err := Run(context.Background(), cfg, lf, mask, mask, core.NullSink{})
	require.NoError(t, err)
	require.False(t, result.Cancelled)
	require.NotEmpty(t, result.Rows)
	for _, row := range result.Rows {
		require.Equal(t, "A_B <> C_D", row.Montage)
		require.Equal(t, "ok", row.Status)
	}
}

func TestRun_CancellationStopsEarly(t *testing.T) {
	lf := testLeadfield(t)
	mask := allMask(lf)
	cfg := Config{
		E1Plus: []string{"A"}, E1Minus: []string{"B"},
		E2Plus: []string{"C"}, E2Minus: []string{"D"},
		TotalCurrentMA: 2.0, CurrentStepMA: 0.2, ChannelLimitMA: 1.6,
	}

	cancel := &core.CancelFlag{}
	cancel.Cancel()
	sink := core.NewStdoutSink(nil, cancel)

	result, err := Run(context.Background(), cfg, lf, mask, mask, sink)
	require.ErrorIs(t, err, core.ErrCancelled)
	require.True(t, result.Cancelled)
	require.Len(t, result.Rows, 1)
}
