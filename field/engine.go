// Package field is the numerical heart of the optimization core: it
// composes per-electrode leadfield contributions into channel fields,
// reduces two interfering channels into the TI envelope, and reduces that
// envelope over a region of interest. All reductions run in float64; the
// leadfield tensor itself stays float32 on disk and is upconverted here,
// once, at assembly time.
package field

import (
	"math"

	"github.com/idossha/ti-opt-core/leadfield"
)

// Vec3 aliases leadfield.Vec3 so field math stays in one vector type across
// package boundaries.
type Vec3 = leadfield.Vec3

// ChannelField composes one stimulation channel's field as
// current_A * (sum over anodes of L[a] - sum over cathodes of L[c]),
// supporting multi-pad channels (more than one electrode per pole).
func ChannelField(lf *leadfield.Leadfield, anodes, cathodes []leadfield.ElectrodeMeta, currentA float64) []Vec3 {
	out := make([]Vec3, lf.N)
	anodeIdx := electrodeIndices(lf, anodes)
	cathodeIdx := electrodeIndices(lf, cathodes)

	for n := 0; n < lf.N; n++ {
		var sum Vec3
		for _, a := range anodeIdx {
			v := lf.ElectrodeVec(a, n)
			sum[0] += v[0]
			sum[1] += v[1]
			sum[2] += v[2]
		}
		for _, c := range cathodeIdx {
			v := lf.ElectrodeVec(c, n)
			sum[0] -= v[0]
			sum[1] -= v[1]
			sum[2] -= v[2]
		}
		out[n] = Vec3{sum[0] * currentA, sum[1] * currentA, sum[2] * currentA}
	}
	return out
}

// electrodeIndices assumes every label already names a real electrode;
// callers that take labels from outside the process (CLI flags, config
// files) must validate against lf.Electrodes before reaching here.
func electrodeIndices(lf *leadfield.Leadfield, electrodes []leadfield.ElectrodeMeta) []int {
	idx := make([]int, len(electrodes))
	for i, e := range electrodes {
		idx[i] = lf.ElectrodeIndex(e.Label)
	}
	return idx
}

const envelopeEps = 1e-12

func norm(v Vec3) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func dot(a, b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a Vec3, s float64) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}

// envelopeMagnitude is the standard closed-form maximum TI modulation
// amplitude (Grossman et al. 2017): with e1 the larger-magnitude vector and
// alpha the angle between e1 and (possibly flipped) e2,
//
//	AM = 2|e2|                         if |e2| <= |e1| cos(alpha)
//	AM = 2 |e1 x e2| / |e1 - e2|        otherwise
func envelopeMagnitude(e1, e2 Vec3) float64 {
	n1, n2 := norm(e1), norm(e2)
	if n2 > n1 {
		e1, e2 = e2, e1
		n1, n2 = n2, n1
	}
	if n1 < envelopeEps {
		return 0
	}
	cosAlpha := dot(e1, e2) / (n1*n2 + envelopeEps)
	if cosAlpha < 0 {
		e2 = scale(e2, -1)
		cosAlpha = -cosAlpha
	}
	if n2 <= n1*cosAlpha {
		return 2 * n2
	}
	diff := sub(e1, e2)
	dn := norm(diff)
	if dn < envelopeEps {
		return 0
	}
	return 2 * norm(cross(e1, e2)) / dn
}

// TIEnvelope computes the per-element TI envelope magnitude for two
// interfering channel fields. NaN inputs propagate to NaN outputs — never
// silently masked (ReduceROI logs a warning; see reduce.go).
func TIEnvelope(e1, e2 []Vec3) []float64 {
	out := make([]float64, len(e1))
	for i := range e1 {
		out[i] = envelopeMagnitude(e1[i], e2[i])
	}
	return out
}

// TIVectors returns, per element, a vector whose magnitude equals
// envelopeMagnitude(e1, e2) and whose direction matches the branch that
// produced it: 2*e2 when the envelope is bounded by the smaller channel
// (the well-documented branch of the closed form), or 2*|e1 x e2|/|e1-e2|
// along unit(e1 - e2) — the oscillation axis of the interference pattern —
// in the other branch. Used to combine TI pairs into a multi-TI (mTI)
// envelope of envelopes (see mti.go); this vector extension is this
// implementation's resolution of an undocumented upstream formula, pinned
// by a fixed-input regression test rather than re-derived from a black box.
func TIVectors(e1, e2 []Vec3) []Vec3 {
	out := make([]Vec3, len(e1))
	for i := range e1 {
		out[i] = envelopeVector(e1[i], e2[i])
	}
	return out
}

func envelopeVector(e1, e2 Vec3) Vec3 {
	n1, n2 := norm(e1), norm(e2)
	if n2 > n1 {
		e1, e2 = e2, e1
		n1, n2 = n2, n1
	}
	if n1 < envelopeEps {
		return Vec3{}
	}
	flippedE2 := e2
	cosAlpha := dot(e1, e2) / (n1*n2 + envelopeEps)
	if cosAlpha < 0 {
		flippedE2 = scale(e2, -1)
		cosAlpha = -cosAlpha
	}
	if n2 <= n1*cosAlpha {
		return scale(flippedE2, 2)
	}
	diff := sub(e1, flippedE2)
	dn := norm(diff)
	if dn < envelopeEps {
		return Vec3{}
	}
	mag := 2 * norm(cross(e1, flippedE2)) / dn
	return scale(diff, mag/dn)
}

// TINormal is the directional component of the envelope projected onto a
// surface normal per element (used for cortical-surface reporting).
func TINormal(e1, e2 []Vec3, normals []Vec3) []float64 {
	vecs := TIVectors(e1, e2)
	out := make([]float64, len(vecs))
	for i := range vecs {
		out[i] = math.Abs(dot(vecs[i], normals[i]))
	}
	return out
}
