// Package leadfield loads the precomputed leadfield artifact: the dense
// (electrode, mesh element, axis) tensor, mesh geometry, and electrode
// metadata every other component evaluates against. The loader never
// subsets or interpolates — that is ROI Resolver's and Field Engine's job —
// which keeps it trivially testable and cache-friendly.
package leadfield

import (
	"fmt"

	"github.com/idossha/ti-opt-core/core"
)

// Vec3 is a point or vector in subject/MNI space.
type Vec3 [3]float64

// ElectrodeMeta is one electrode's opaque label and 3-D position.
type ElectrodeMeta struct {
	Label    string
	Position Vec3
}

// Leadfield is the immutable, process-owned dataset every evaluator reads.
// Shared read-only across optimization evaluations; never mutated after
// Load returns.
type Leadfield struct {
	// L is the dense (E, N, 3) tensor, flattened row-major:
	// L[((e*N)+n)*3+axis]. Kept float32 on disk (spec §6); upconverted to
	// float64 only inside Field Engine's per-evaluation accumulation.
	L []float32

	E int // electrode count
	N int // mesh element count

	Positions  []float64 // (N, 3) flattened, float64
	Volumes    []float64 // (N,) float64, all > 0
	Electrodes []ElectrodeMeta
	TissueTags []int32 // (N,)
}

// Load opens path, validates every array, and returns the immutable
// dataset. E >= 2, N > 0, all volumes > 0, electrode labels unique, and
// len(Electrodes) == E.
func Load(path string) (*Leadfield, error) {
	c, err := readContainer(path)
	if err != nil {
		return nil, err
	}

	lfSec, err := c.require("/leadfield")
	if err != nil {
		return nil, err
	}
	if len(lfSec.header.Dims) != 3 || lfSec.header.Dims[2] != 3 {
		return nil, core.Wrap(core.ErrInvalidShape, "/leadfield must be rank-3 (E,N,3), got dims %v", lfSec.header.Dims)
	}
	e := int(lfSec.header.Dims[0])
	n := int(lfSec.header.Dims[1])

	posSec, err := c.require("/positions")
	if err != nil {
		return nil, err
	}
	if len(posSec.header.Dims) != 2 || int(posSec.header.Dims[0]) != n || posSec.header.Dims[1] != 3 {
		return nil, core.Wrap(core.ErrInvalidShape, "/positions must be (N,3) matching /leadfield's N=%d, got dims %v", n, posSec.header.Dims)
	}

	volSec, err := c.require("/volumes")
	if err != nil {
		return nil, err
	}
	if len(volSec.float64) != n {
		return nil, core.Wrap(core.ErrInvalidShape, "/volumes must have N=%d entries, got %d", n, len(volSec.float64))
	}

	labelSec, err := c.require("/electrodes/labels")
	if err != nil {
		return nil, err
	}
	posESec, err := c.require("/electrodes/positions")
	if err != nil {
		return nil, err
	}
	if len(labelSec.strings) != e {
		return nil, core.Wrap(core.ErrInvalidShape, "/electrodes/labels must have E=%d entries, got %d", e, len(labelSec.strings))
	}
	if len(posESec.header.Dims) != 2 || int(posESec.header.Dims[0]) != e || posESec.header.Dims[1] != 3 {
		return nil, core.Wrap(core.ErrInvalidShape, "/electrodes/positions must be (E,3) matching E=%d, got dims %v", e, posESec.header.Dims)
	}

	tagsSec, err := c.require("/tissue_tags")
	if err != nil {
		return nil, err
	}
	if len(tagsSec.int32) != n {
		return nil, core.Wrap(core.ErrInvalidShape, "/tissue_tags must have N=%d entries, got %d", n, len(tagsSec.int32))
	}

	if e < 2 {
		return nil, core.Wrap(core.ErrInvalidShape, "electrode count E=%d must be >= 2", e)
	}
	if n <= 0 {
		return nil, core.Wrap(core.ErrInvalidShape, "mesh element count N=%d must be > 0", n)
	}
	for i, v := range volSec.float64 {
		if v <= 0 {
			return nil, core.Wrap(core.ErrInvalidFormat, "volumes[%d]=%g must be > 0", i, v)
		}
	}

	electrodes := make([]ElectrodeMeta, e)
	seen := make(map[string]bool, e)
	for i := 0; i < e; i++ {
		label := labelSec.strings[i]
		if seen[label] {
			return nil, core.Wrap(core.ErrInvalidFormat, "duplicate electrode label %q", label)
		}
		seen[label] = true
		electrodes[i] = ElectrodeMeta{
			Label: label,
			Position: Vec3{
				posESec.float64[i*3+0],
				posESec.float64[i*3+1],
				posESec.float64[i*3+2],
			},
		}
	}

	return &Leadfield{
		L:          lfSec.float32,
		E:          e,
		N:          n,
		Positions:  posSec.float64,
		Volumes:    volSec.float64,
		Electrodes: electrodes,
		TissueTags: tagsSec.int32,
	}, nil
}

// Position returns the centroid of mesh element i.
func (lf *Leadfield) Position(i int) Vec3 {
	return Vec3{lf.Positions[i*3+0], lf.Positions[i*3+1], lf.Positions[i*3+2]}
}

// ElectrodeIndex returns the index of the electrode with the given label,
// or -1 if not found.
func (lf *Leadfield) ElectrodeIndex(label string) int {
	for i, e := range lf.Electrodes {
		if e.Label == label {
			return i
		}
	}
	return -1
}

// ElectrodeVec returns the field vector L[electrodeIdx, meshIdx, :].
func (lf *Leadfield) ElectrodeVec(electrodeIdx, meshIdx int) [3]float64 {
	base := (electrodeIdx*lf.N + meshIdx) * 3
	return [3]float64{
		float64(lf.L[base+0]),
		float64(lf.L[base+1]),
		float64(lf.L[base+2]),
	}
}

func (lf *Leadfield) String() string {
	return fmt.Sprintf("Leadfield{E=%d, N=%d, electrodes=%d}", lf.E, lf.N, len(lf.Electrodes))
}
