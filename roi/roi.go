// Package roi resolves declarative region-of-interest specs (sphere, atlas
// surface label, subcortical volume) into concrete element masks over a
// leadfield's mesh.
package roi

import (
	"sort"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/leadfield"
)

// Spec is a sealed variant set: Sphere, SurfaceLabel, or Volume. The
// marker method closes the set at compile time — a type switch in
// Resolve is exhaustive and any new variant must be added here.
type Spec interface {
	isSpec()
}

// Sphere selects elements whose centroid is within Radius of Center.
// A tie at exactly Radius is inclusive.
type Sphere struct {
	Center leadfield.Vec3
	Radius float64
}

func (Sphere) isSpec() {}

// SurfaceLabel selects cortical-surface nodes matching an atlas label.
type SurfaceLabel struct {
	Hemisphere string
	AtlasPath  string
	LabelID    int
}

func (SurfaceLabel) isSpec() {}

// Volume selects volumetric elements of a subcortical parcel.
type Volume struct {
	AtlasPath string
	LabelID   int
}

func (Volume) isSpec() {}

// Mask is a resolved ROI: a sorted list of element indices and the volume
// at each one. Invariant: len(Indices) == len(Volumes) > 0.
type Mask struct {
	Indices []uint32
	Volumes []float64
}

// Resolve computes the element mask for spec against lf. Returns
// core.ErrEmptyRoi if the resulting mask is empty — fatal at this call
// site. Masks are resolved once, before any search starts; flex's cost
// functions reuse them and never call Resolve mid-evaluation.
func Resolve(spec Spec, lf *leadfield.Leadfield) (*Mask, error) {
	var indices []int
	var err error

	switch s := spec.(type) {
	case Sphere:
		indices = resolveSphere(s, lf)
	case SurfaceLabel:
		indices, err = resolveLabelled(s.AtlasPath, s.LabelID, lf)
	case Volume:
		indices, err = resolveLabelled(s.AtlasPath, s.LabelID, lf)
	default:
		return nil, core.Wrap(core.ErrInvalidInput, "unknown roi spec type %T", spec)
	}
	if err != nil {
		return nil, err
	}

	return buildMask(indices, lf)
}

// buildMask sorts indices and pairs each with its element volume,
// rejecting an empty result. Shared by Resolve and FromTissueTags so both
// mask-construction paths enforce the same non-empty invariant.
func buildMask(indices []int, lf *leadfield.Leadfield) (*Mask, error) {
	sort.Ints(indices)

	if len(indices) == 0 {
		return nil, core.Wrap(core.ErrEmptyRoi, "roi resolved to zero elements")
	}

	mask := &Mask{
		Indices: make([]uint32, len(indices)),
		Volumes: make([]float64, len(indices)),
	}
	for k, idx := range indices {
		mask.Indices[k] = uint32(idx)
		mask.Volumes[k] = lf.Volumes[idx]
	}
	return mask, nil
}
