package roi

import (
	"github.com/idossha/ti-opt-core/leadfield"
)

// resolveSphere selects elements whose centroid distance to center is <=
// radius. Euclidean distance; a tie at exactly radius is inclusive.
func resolveSphere(s Sphere, lf *leadfield.Leadfield) []int {
	var indices []int
	r2 := s.Radius * s.Radius
	for i := 0; i < lf.N; i++ {
		p := lf.Position(i)
		dx := p[0] - s.Center[0]
		dy := p[1] - s.Center[1]
		dz := p[2] - s.Center[2]
		d2 := dx*dx + dy*dy + dz*dz
		if d2 <= r2 {
			indices = append(indices, i)
		}
	}
	return indices
}
