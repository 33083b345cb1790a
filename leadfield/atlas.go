package leadfield

import "github.com/idossha/ti-opt-core/core"

// LoadLabelArray reads a per-element integer label array from an atlas
// file sharing the leadfield container format (§6) under the "/labels"
// section. Used by roi.SurfaceLabel and roi.Volume so atlas files and
// leadfield files go through the same binary reader.
func LoadLabelArray(path string, n int) ([]int32, error) {
	c, err := readContainer(path)
	if err != nil {
		return nil, err
	}
	sec, err := c.require("/labels")
	if err != nil {
		return nil, err
	}
	if len(sec.int32) != n {
		return nil, core.Wrap(core.ErrInvalidShape, "atlas %s has %d labels, expected %d", path, len(sec.int32), n)
	}
	return sec.int32, nil
}
