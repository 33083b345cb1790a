package leadfield

import "gonum.org/v1/gonum/floats"

// NearestElectrode maps a free-form optimized position back to the closest
// physical electrode in the cap, by Euclidean distance. E is small
// (typically <= 256), so brute force is simpler and fast enough — no
// spatial index is warranted.
func (lf *Leadfield) NearestElectrode(pos Vec3) ElectrodeMeta {
	best := 0
	bestDist := distance(lf.Electrodes[0].Position, pos)
	for i := 1; i < len(lf.Electrodes); i++ {
		d := distance(lf.Electrodes[i].Position, pos)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return lf.Electrodes[best]
}

func distance(a, b Vec3) float64 {
	return floats.Distance(a[:], b[:], 2)
}
