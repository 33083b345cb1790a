// Package flex wraps an evolutionary solver behind a single cost callable,
// drives N independent multi-start runs, and selects the best finite
// result — the continuous counterpart to exsearch's exhaustive enumeration.
package flex

import (
	"math"

	"github.com/idossha/ti-opt-core/field"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
)

// dimsPerElectrode is (theta, phi): a point on the head's 2-manifold skin
// surface, expressed in spherical coordinates around the electrode set's
// centroid rather than raw xyz, so any solver sample projects onto the
// surface by construction.
const dimsPerElectrode = 2

// NDims is the full decision-vector length: four electrode positions plus
// two channel currents.
const NDims = 4*dimsPerElectrode + 2

// Problem binds a leadfield, ROI/grey-matter/non-ROI masks, and a
// total-current budget into the fixed encoding every cost function decodes
// against. GMMask is the true grey-matter mask (field.ReduceROI's focality
// denominator); NonROIMask is the independently-configured suppression
// region FocalityCost penalizes above nonroiThr — the two are distinct
// regions and neither is derived from the other.
type Problem struct {
	Leadfield     *leadfield.Leadfield
	ROIMask       *roi.Mask
	GMMask        *roi.Mask
	NonROIMask    *roi.Mask
	TotalCurrentA float64
	ChannelLimitA float64
	surfaceRadius float64
	surfaceCenter leadfield.Vec3
}

// NewProblem derives the surface parameterization's center and radius from
// the mean position and mean distance of the leadfield's electrode set.
func NewProblem(lf *leadfield.Leadfield, roiMask, gmMask, nonROIMask *roi.Mask, totalCurrentA, channelLimitA float64) *Problem {
	center := leadfield.Vec3{}
	for _, e := range lf.Electrodes {
		center[0] += e.Position[0]
		center[1] += e.Position[1]
		center[2] += e.Position[2]
	}
	n := float64(len(lf.Electrodes))
	if n > 0 {
		center[0] /= n
		center[1] /= n
		center[2] /= n
	}
	var radius float64
	for _, e := range lf.Electrodes {
		dx, dy, dz := e.Position[0]-center[0], e.Position[1]-center[1], e.Position[2]-center[2]
		radius += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	if n > 0 {
		radius /= n
	}
	return &Problem{
		Leadfield:     lf,
		ROIMask:       roiMask,
		GMMask:        gmMask,
		NonROIMask:    nonROIMask,
		TotalCurrentA: totalCurrentA,
		ChannelLimitA: channelLimitA,
		surfaceCenter: center,
		surfaceRadius: radius,
	}
}

// Bounds returns the decision-variable bounds: theta in [0, pi], phi in
// [0, 2*pi] for each of the four electrode positions, then two current
// entries, each in [max(0, TotalCurrentA-ChannelLimitA), ChannelLimitA].
// Decode reads only the first of them (x[8]) as channel 1's current and
// gives channel 2 the remainder of TotalCurrentA; x[9] does not affect the
// decoded montage.
func (p *Problem) Bounds() [][2]float64 {
	bounds := make([][2]float64, 0, NDims)
	for i := 0; i < 4; i++ {
		bounds = append(bounds, [2]float64{0, math.Pi}, [2]float64{0, 2 * math.Pi})
	}
	lo := math.Max(0, p.TotalCurrentA-p.ChannelLimitA)
	bounds = append(bounds, [2]float64{lo, p.ChannelLimitA})
	bounds = append(bounds, [2]float64{lo, p.ChannelLimitA})
	return bounds
}

// surfacePoint converts spherical coordinates to a point on the
// parameterized head surface.
func (p *Problem) surfacePoint(theta, phi float64) leadfield.Vec3 {
	return leadfield.Vec3{
		p.surfaceCenter[0] + p.surfaceRadius*math.Sin(theta)*math.Cos(phi),
		p.surfaceCenter[1] + p.surfaceRadius*math.Sin(theta)*math.Sin(phi),
		p.surfaceCenter[2] + p.surfaceRadius*math.Cos(theta),
	}
}

// Decode maps a decision vector to the four electrodes (via nearest-
// physical-electrode snapping) and the two channel currents in amps. The
// second channel's current is i1's complement against TotalCurrentA,
// matching the ex-search unit convention of a fixed total split two ways.
func (p *Problem) Decode(x []float64) (e1p, e1m, e2p, e2m leadfield.ElectrodeMeta, i1A, i2A float64) {
	e1p = p.Leadfield.NearestElectrode(p.surfacePoint(x[0], x[1]))
	e1m = p.Leadfield.NearestElectrode(p.surfacePoint(x[2], x[3]))
	e2p = p.Leadfield.NearestElectrode(p.surfacePoint(x[4], x[5]))
	e2m = p.Leadfield.NearestElectrode(p.surfacePoint(x[6], x[7]))
	i1A = x[8]
	i2A = p.TotalCurrentA - i1A
	if i2A < 0 {
		i2A = 0
	}
	return
}

// Envelope decodes x and computes the full TI envelope field. ROI and
// grey-matter masks are fixed at Problem construction (not re-resolved per
// x), so unlike the source's position-driven resolution, decoding never
// yields an empty ROI here — there is nothing for the cost function to
// recover from mid-evaluation.
func (p *Problem) Envelope(x []float64) []float64 {
	e1p, e1m, e2p, e2m, i1A, i2A := p.Decode(x)
	e1 := field.ChannelField(p.Leadfield, []leadfield.ElectrodeMeta{e1p}, []leadfield.ElectrodeMeta{e1m}, i1A)
	e2 := field.ChannelField(p.Leadfield, []leadfield.ElectrodeMeta{e2p}, []leadfield.ElectrodeMeta{e2m}, i2A)
	return field.TIEnvelope(e1, e2)
}
