package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/idossha/ti-opt-core/core"
)

// resultsDoc is pareto_results.json's top-level shape.
type resultsDoc struct {
	AchievableROIMeanVM float64      `json:"achievable_roi_mean_vm"`
	ROIPcts             []float64    `json:"roi_pcts"`
	NonROIPcts          []float64    `json:"nonroi_pcts"`
	Points              []pointEntry `json:"points"`
}

type pointEntry struct {
	ROIPct          float64  `json:"roi_pct"`
	NonROIPct       float64  `json:"nonroi_pct"`
	ROIThresholdVM  float64  `json:"roi_threshold_vm"`
	NonROIThreshold float64  `json:"nonroi_threshold_vm"`
	FocalityScore   *float64 `json:"focality_score"`
	Status          string   `json:"status"`
	OutputFolder    string   `json:"output_folder"`
}

// WriteResultsJSON writes pareto_results.json for a completed (or partial)
// sweep.
func WriteResultsJSON(path string, cfg Config, result *Result) error {
	doc := resultsDoc{
		AchievableROIMeanVM: cfg.AchievableROIMean,
		ROIPcts:             cfg.ROIPcts,
		NonROIPcts:          cfg.NonROIPcts,
		Points:              make([]pointEntry, len(result.Points)),
	}
	for i, p := range result.Points {
		doc.Points[i] = pointEntry{
			ROIPct:          p.ROIPct,
			NonROIPct:       p.NonROIPct,
			ROIThresholdVM:  p.ROIThresholdAbs,
			NonROIThreshold: p.NonROIThresholdAbs,
			FocalityScore:   p.Score,
			Status:          p.Status,
			OutputFolder:    p.OutputFolder,
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return core.Wrap(core.ErrIO, "marshal pareto results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.Wrap(core.ErrIO, "write %s", path)
	}
	return nil
}

// WriteSummaryText writes pareto_summary.txt: an ASCII table with columns
// ROI%, NonROI%, ROI thr(V/m), NR thr(V/m), Score, Status. Scores are
// formatted to three decimals; a missing score renders as the Unicode
// em-dash.
func WriteSummaryText(path string, result *Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-8s %-14s %-14s %-10s %-8s\n", "ROI%", "NonROI%", "ROI thr(V/m)", "NR thr(V/m)", "Score", "Status")
	for _, p := range result.Points {
		score := "—"
		if p.Score != nil {
			score = fmt.Sprintf("%.3f", *p.Score)
		}
		fmt.Fprintf(&b, "%-6g %-8g %-14.4f %-14.4f %-10s %-8s\n",
			p.ROIPct, p.NonROIPct, p.ROIThresholdAbs, p.NonROIThresholdAbs, score, p.Status)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return core.Wrap(core.ErrIO, "write %s", path)
	}
	return nil
}
