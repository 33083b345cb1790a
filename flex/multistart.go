package flex

import (
	"context"
	"fmt"
	"math"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/flex/solver"
	"github.com/sirupsen/logrus"
)

// RunResult is one multi-start trial's outcome.
type RunResult struct {
	Index  int
	X      []float64
	Value  float64
	Failed bool
}

// MultiStartResult is the selection across all trials.
type MultiStartResult struct {
	Runs     []RunResult
	BestIdx  int
	BestX    []float64
	BestCost float64
}

// RunMultiStart runs cfg.NMultistart independent DifferentialEvolution
// invocations over bounds with per-run seeds deterministically derived
// from cfg.SessionSeed (core.RunSeed's master-seed XOR fnv1a64 derivation),
// recording +Inf and continuing past any single run's panic or
// EmptyRoi-flavored failure.
// Returns core.ErrNoValidRuns if every run ends at +Inf.
func RunMultiStart(ctx context.Context, cfg Config, bounds [][2]float64, cost CostFunc, sink core.ProgressSink) (*MultiStartResult, error) {
	n := cfg.NMultistart
	if n < 1 {
		n = 1
	}
	method := solver.DifferentialEvolution{}
	opts := cfg.solverOptions()

	runs := make([]RunResult, 0, n)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, core.ErrCancelled
		default:
		}
		if sink.IsCancelled() {
			return nil, core.ErrCancelled
		}

		run := runOne(i, method, bounds, cost, opts, cfg.SessionSeed)
		runs = append(runs, run)
		sink.Log(core.LogInfo, fmt.Sprintf("multistart run %d/%d: value=%v", i+1, n, run.Value))
	}

	bestIdx := -1
	bestVal := math.Inf(1)
	for i, r := range runs {
		if r.Failed || math.IsInf(r.Value, 1) || math.IsNaN(r.Value) {
			continue
		}
		if bestIdx == -1 || r.Value < bestVal {
			bestIdx = i
			bestVal = r.Value
		}
	}
	if bestIdx == -1 {
		return nil, core.ErrNoValidRuns
	}

	return &MultiStartResult{
		Runs:     runs,
		BestIdx:  bestIdx,
		BestX:    runs[bestIdx].X,
		BestCost: runs[bestIdx].Value,
	}, nil
}

// runOne invokes the solver for one trial, recovering from any panic (the
// Go translation of the source's try/except around EmptyRoi and other
// mid-evaluation exceptions) and scoring it +Inf instead of propagating.
func runOne(index int, method solver.Method, bounds [][2]float64, cost CostFunc, opts solver.Options, sessionSeed int64) (result RunResult) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("run", index).WithField("panic", r).Warn("flex multistart run recovered from panic")
			result = RunResult{Index: index, Value: math.Inf(1), Failed: true}
		}
	}()

	rng := core.NewRunRNG(sessionSeed, index)
	x, fx, err := method.Minimize(func(x []float64) float64 { return cost(x) }, bounds, opts, rng)
	if err != nil {
		return RunResult{Index: index, Value: math.Inf(1), Failed: true}
	}
	return RunResult{Index: index, X: x, Value: fx}
}
