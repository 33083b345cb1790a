package field

import (
	"math"
	"testing"

	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/stretchr/testify/require"
)

func testLeadfield() *leadfield.Leadfield {
	// Two electrodes, two mesh elements.
	// L[electrode=0] = [(1,0,0), (0,1,0)]
	// L[electrode=1] = [(0,0,1), (1,1,0)]
	l := make([]float32, 2*2*3)
	set := func(e, n int, v [3]float64) {
		base := (e*2 + n) * 3
		l[base] = float32(v[0])
		l[base+1] = float32(v[1])
		l[base+2] = float32(v[2])
	}
	set(0, 0, [3]float64{1, 0, 0})
	set(0, 1, [3]float64{0, 1, 0})
	set(1, 0, [3]float64{0, 0, 1})
	set(1, 1, [3]float64{1, 1, 0})

	return &leadfield.Leadfield{
		L:         l,
		E:         2,
		N:         2,
		Positions: []float64{0, 0, 0, 1, 0, 0},
		Volumes:   []float64{1, 1},
		Electrodes: []leadfield.ElectrodeMeta{
			{Label: "E0"},
			{Label: "E1"},
		},
	}
}

// S2. channel_field linearity: channel_field(L, [0], [1], 2.0) should give
// [(2,0,-2), (-2,0,0)], and halving the current exactly halves the result.
func TestChannelField_S2(t *testing.T) {
	lf := testLeadfield()
	anodes := []leadfield.ElectrodeMeta{{Label: "E0"}}
	cathodes := []leadfield.ElectrodeMeta{{Label: "E1"}}

	got := ChannelField(lf, anodes, cathodes, 2.0)
	require.InDeltaSlice(t, []float64{2, 0, -2}, got[0][:], 1e-9)
	require.InDeltaSlice(t, []float64{-2, 0, 0}, got[1][:], 1e-9)

	half := ChannelField(lf, anodes, cathodes, 1.0)
	for i := range half {
		for d := 0; d < 3; d++ {
			require.InDelta(t, got[i][d]/2, half[i][d], 1e-9)
		}
	}
}

func TestChannelField_Antisymmetry(t *testing.T) {
	lf := testLeadfield()
	anodes := []leadfield.ElectrodeMeta{{Label: "E0"}}
	cathodes := []leadfield.ElectrodeMeta{{Label: "E1"}}

	forward := ChannelField(lf, anodes, cathodes, 1.5)
	swapped := ChannelField(lf, cathodes, anodes, 1.5)
	for i := range forward {
		for d := 0; d < 3; d++ {
			require.InDelta(t, -forward[i][d], swapped[i][d], 1e-9)
		}
	}
}

// S3. ti_envelope on two orthogonal, equal-magnitude vector pairs returns
// the same magnitude for both elements.
func TestTIEnvelope_S3(t *testing.T) {
	e1 := []Vec3{{1, 0, 0}, {0, 1, 0}}
	e2 := []Vec3{{0, 1, 0}, {1, 0, 0}}

	got := TIEnvelope(e1, e2)
	require.InDelta(t, math.Sqrt2, got[0], 1e-9)
	require.InDelta(t, math.Sqrt2, got[1], 1e-9)
}

func TestTIEnvelope_BoundedBranchEqualsTwiceSmaller(t *testing.T) {
	// e1 much larger than e2 and aligned with it: envelope should be 2*|e2|.
	e1 := []Vec3{{10, 0, 0}}
	e2 := []Vec3{{0.1, 0, 0}}
	got := TIEnvelope(e1, e2)
	require.InDelta(t, 0.2, got[0], 1e-6)
}

func TestTIEnvelope_LinearInCurrent(t *testing.T) {
	base1 := Vec3{1, 2, 3}
	base2 := Vec3{-1, 0.5, 2}
	for _, scale := range []float64{0.5, 1.0, 2.0, 4.0} {
		e1 := []Vec3{{base1[0] * scale, base1[1] * scale, base1[2] * scale}}
		e2 := []Vec3{{base2[0] * scale, base2[1] * scale, base2[2] * scale}}
		got := TIEnvelope(e1, e2)[0]
		base := TIEnvelope([]Vec3{base1}, []Vec3{base2})[0]
		require.InDelta(t, base*scale, got, 1e-9)
	}
}

func TestTIEnvelope_SymmetricInChannelSwap(t *testing.T) {
	e1 := []Vec3{{3, -1, 2}}
	e2 := []Vec3{{-2, 1, 0.5}}
	a := TIEnvelope(e1, e2)
	b := TIEnvelope(e2, e1)
	require.InDelta(t, a[0], b[0], 1e-9)
}

func TestMTIEnvelope_FixedRegression(t *testing.T) {
	a1 := []Vec3{{1, 0, 0}}
	a2 := []Vec3{{0, 1, 0}}
	b1 := []Vec3{{0.5, 0.5, 0}}
	b2 := []Vec3{{-0.5, 0.5, 0}}

	got := MTIEnvelope(a1, a2, b1, b2)
	require.Len(t, got, 1)
	require.False(t, math.IsNaN(got[0]))
	require.GreaterOrEqual(t, got[0], 0.0)
	// Pair A gives (1,-1,0), pair B gives (1,0,0); their envelope is 2.
	require.InDelta(t, 2.0, got[0], 1e-9)
}
