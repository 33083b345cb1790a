package exsearch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S4. total=2.0, step=0.2, limit=1.6 -> 7 descending (I1,I2) pairs.
func TestGenerateCurrentRatios_S4(t *testing.T) {
	cfg := Config{TotalCurrentMA: 2.0, CurrentStepMA: 0.2, ChannelLimitMA: 1.6}
	got := GenerateCurrentRatios(cfg)

	want := []CurrentRatio{
		{1.6, 0.4}, {1.4, 0.6}, {1.2, 0.8}, {1.0, 1.0}, {0.8, 1.2}, {0.6, 1.4}, {0.4, 1.6},
	}
	require.Len(t, got, 7)
	for i, w := range want {
		require.InDelta(t, w.I1MA, got[i].I1MA, 1e-9)
		require.InDelta(t, w.I2MA, got[i].I2MA, 1e-9)
	}
}

func TestGenerateCurrentRatios_AllWithinBounds(t *testing.T) {
	cfg := Config{TotalCurrentMA: 2.0, CurrentStepMA: 0.2, ChannelLimitMA: 1.6}
	for _, r := range GenerateCurrentRatios(cfg) {
		require.Greater(t, r.I1MA, 0.0)
		require.Greater(t, r.I2MA, 0.0)
		require.LessOrEqual(t, r.I1MA, cfg.ChannelLimitMA+1e-9)
		require.LessOrEqual(t, r.I2MA, cfg.ChannelLimitMA+1e-9)
		require.InDelta(t, cfg.TotalCurrentMA, r.I1MA+r.I2MA, 1e-9)
	}
}

func TestMontageName(t *testing.T) {
	require.Equal(t, "F3_F4 <> P3_P4", MontageName("F3", "F4", "P3", "P4"))
}
