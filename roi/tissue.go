package roi

import "github.com/idossha/ti-opt-core/leadfield"

// FromTissueTags builds a mask from the leadfield's own mesh tissue tags
// rather than a declarative Spec: an element is included if its tag is any
// of grayMatterTags. This is the true grey-matter mask (mirroring the
// original toolchain's find_grey_matter_indices(mesh, grey_matter_tags=[2])),
// distinct from the flex optimizer's non-ROI threshold region — a
// grey-matter element can lie inside or outside that user-configured
// non-ROI sphere/atlas/volume. Returns core.ErrEmptyRoi if no element
// carries any of the given tags.
func FromTissueTags(lf *leadfield.Leadfield, grayMatterTags []int32) (*Mask, error) {
	want := make(map[int32]bool, len(grayMatterTags))
	for _, tag := range grayMatterTags {
		want[tag] = true
	}

	indices := make([]int, 0, lf.N)
	for i, tag := range lf.TissueTags {
		if want[tag] {
			indices = append(indices, i)
		}
	}

	return buildMask(indices, lf)
}
