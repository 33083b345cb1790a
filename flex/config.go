package flex

import "github.com/idossha/ti-opt-core/flex/solver"

// Config is flex's explicit, keyword-free configuration struct, replacing
// the source's scattered optional keyword arguments (design note: explicit
// config structs with documented defaults).
type Config struct {
	Goal            string // "mean", "max", "focality"
	ROIThreshold    float64
	NonROIThreshold float64

	NMultistart    int
	MaxGenerations int
	PopulationSize int
	Mutation       float64
	Recombination  float64
	Tolerance      float64
	CPUs           int

	SessionSeed int64
}

// Defaults returns the documented baseline configuration: 200 generations,
// population 30, mutation 0.8, recombination 0.9, a single multistart run,
// one worker.
func Defaults() Config {
	return Config{
		Goal:           "mean",
		NMultistart:    1,
		MaxGenerations: 200,
		PopulationSize: 30,
		Mutation:       0.8,
		Recombination:  0.9,
		Tolerance:      1e-6,
		CPUs:           1,
	}
}

func (c Config) solverOptions() solver.Options {
	return solver.Options{
		MaxGenerations: c.MaxGenerations,
		PopulationSize: c.PopulationSize,
		Mutation:       c.Mutation,
		Recombination:  c.Recombination,
		Tolerance:      c.Tolerance,
		Workers:        c.CPUs,
	}
}
