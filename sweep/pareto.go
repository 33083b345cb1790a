// Package sweep builds and drives the Pareto threshold sweep: a Cartesian
// grid over (ROI%, nonROI%) threshold pairs, each point handed to flex's
// multi-start focality optimization.
package sweep

import (
	"context"
	"fmt"

	"github.com/idossha/ti-opt-core/core"
)

// Config is the sweep's explicit configuration.
type Config struct {
	ROIPcts           []float64
	NonROIPcts        []float64
	AchievableROIMean float64
	BaseOutputFolder  string
}

// Point is one grid cell: percentages, their absolute thresholds, and the
// mutable run state filled in during Run.
type Point struct {
	ROIPct             float64
	NonROIPct          float64
	ROIThresholdAbs    float64
	NonROIThresholdAbs float64
	RunIndex           int
	Status             string // "pending", "done", "failed"
	Score              *float64
	OutputFolder       string
}

// Result is a completed (possibly partial) sweep.
type Result struct {
	Points    []Point
	Cancelled bool
}

// ValidateGrid rejects the whole grid up front if any pair has
// nonroi_pct >= roi_pct, listing every invalid pair in the error message.
func ValidateGrid(roiPcts, nonroiPcts []float64) error {
	var invalid [][2]float64
	for _, roiPct := range roiPcts {
		for _, nonroiPct := range nonroiPcts {
			if nonroiPct >= roiPct {
				invalid = append(invalid, [2]float64{roiPct, nonroiPct})
			}
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	msg := "invalid (roi_pct, nonroi_pct) pairs with nonroi >= roi: "
	for i, pair := range invalid {
		if i > 0 {
			msg += ", "
		}
		msg += fmt.Sprintf("(%g,%g)", pair[0], pair[1])
	}
	return core.Wrap(core.ErrInvalidInput, "%s", msg)
}

// ComputeGrid builds the grid in contract order: outer roi_pcts, inner
// nonroi_pcts. Directory names follow "{idx+1:02d}_roi{int}_nonroi{int}".
func ComputeGrid(cfg Config) []Point {
	points := make([]Point, 0, len(cfg.ROIPcts)*len(cfg.NonROIPcts))
	idx := 0
	for _, roiPct := range cfg.ROIPcts {
		for _, nonroiPct := range cfg.NonROIPcts {
			points = append(points, Point{
				ROIPct:             roiPct,
				NonROIPct:          nonroiPct,
				ROIThresholdAbs:    roiPct / 100 * cfg.AchievableROIMean,
				NonROIThresholdAbs: nonroiPct / 100 * cfg.AchievableROIMean,
				RunIndex:           idx,
				Status:             "pending",
				OutputFolder:       fmt.Sprintf("%s/%02d_roi%d_nonroi%d", cfg.BaseOutputFolder, idx+1, int(roiPct), int(nonroiPct)),
			})
			idx++
		}
	}
	return points
}

// RunOne evaluates a single grid point with goal "focality" and its
// computed thresholds, returning the focality score.
type RunOne func(point Point) (float64, error)

// Run drives runOne over every grid point in contract order, checking
// sink.IsCancelled() between points. Cancellation leaves remaining points
// at status "pending" and persists everything evaluated so far.
func Run(ctx context.Context, cfg Config, runOne RunOne, sink core.ProgressSink) (*Result, error) {
	points := ComputeGrid(cfg)
	result := &Result{Points: points}

	for i := range result.Points {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, core.ErrCancelled
		default:
		}
		if sink.IsCancelled() {
			result.Cancelled = true
			return result, core.ErrCancelled
		}

		score, err := runOne(result.Points[i])
		if err != nil {
			result.Points[i].Status = "failed"
			sink.Log(core.LogWarning, fmt.Sprintf("pareto point %d failed: %v", i, err))
			continue
		}
		s := score
		result.Points[i].Score = &s
		result.Points[i].Status = "done"
	}
	return result, nil
}
