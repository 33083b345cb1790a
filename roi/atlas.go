package roi

import (
	"github.com/idossha/ti-opt-core/leadfield"
)

// resolveLabelled loads the per-element atlas label array and selects
// indices where label[i] == labelID. Shared by SurfaceLabel and Volume —
// both are "match this integer label against a co-indexed array", differing
// only in which atlas file is supplied.
func resolveLabelled(atlasPath string, labelID int, lf *leadfield.Leadfield) ([]int, error) {
	labels, err := leadfield.LoadLabelArray(atlasPath, lf.N)
	if err != nil {
		return nil, err
	}
	var indices []int
	for i, l := range labels {
		if int(l) == labelID {
			indices = append(indices, i)
		}
	}
	return indices, nil
}
