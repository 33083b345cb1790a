package store

import (
	"encoding/json"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/idossha/ti-opt-core/core"
)

// WriteRunJSON persists a RunRecord as structured JSON — never an untyped
// map — alongside the run's other artifacts.
func WriteRunJSON(path string, run RunRecord) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return core.Wrap(core.ErrIO, "marshal run record %s", run.ID)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.Wrap(core.ErrIO, "write %s", path)
	}
	return nil
}

// WriteSingleOptimizationSummary writes optimization_summary.txt: a small
// fixed-layout block, formatted directly with fmt.Fprintf rather than a
// template, the same way a block this size gets hand-formatted elsewhere
// in this codebase.
func WriteSingleOptimizationSummary(path string, run RunRecord, generatedAt time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return core.Wrap(core.ErrIO, "create %s", path)
	}
	defer f.Close()

	fmt.Fprintf(f, "Optimization Summary\n")
	fmt.Fprintf(f, "====================\n")
	fmt.Fprintf(f, "Run ID        : %s\n", run.ID)
	fmt.Fprintf(f, "Subject       : %s\n", run.SubjectID)
	fmt.Fprintf(f, "Goal          : %s\n", run.Goal)
	fmt.Fprintf(f, "ROI           : %s\n", run.ROIDescription)
	fmt.Fprintf(f, "Electrode set : %s\n", run.ElectrodeSetID)
	fmt.Fprintf(f, "Seed          : %d\n", run.Seed)
	fmt.Fprintf(f, "Status        : %s\n", run.Status)
	if run.Score != nil {
		fmt.Fprintf(f, "Score         : %.6f\n", *run.Score)
	} else {
		fmt.Fprintf(f, "Score         : (none)\n")
	}
	fmt.Fprintf(f, "Generated     : %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// multistartSummaryTemplate drives the larger, multi-section multistart
// summary — the one case in this package where text/template earns its
// keep over fmt.Fprintf, since the per-run table has a variable number of
// rows.
var multistartSummaryTemplate = template.Must(template.New("multistart_summary").Parse(
	`Multi-Start Optimization Summary
================================
Goal          : {{.Goal}}
N multistart  : {{.NRuns}}
Best run      : {{.BestIndex}}
Best score    : {{.BestScore}}

Per-run results:
{{range .Runs}}  run {{.Index}}: value={{.Value}} failed={{.Failed}}
{{end}}`))

// MultistartSummaryData feeds the multistart summary template.
type MultistartSummaryData struct {
	Goal      string
	NRuns     int
	BestIndex int
	BestScore float64
	Runs      []MultistartRunRow
}

// MultistartRunRow is one per-run line of the summary table.
type MultistartRunRow struct {
	Index  int
	Value  float64
	Failed bool
}

// WriteMultistartSummary renders multistart_optimization_summary.txt.
func WriteMultistartSummary(path string, data MultistartSummaryData) error {
	f, err := os.Create(path)
	if err != nil {
		return core.Wrap(core.ErrIO, "create %s", path)
	}
	defer f.Close()

	if err := multistartSummaryTemplate.Execute(f, data); err != nil {
		return core.Wrap(core.ErrIO, "render multistart summary")
	}
	return nil
}
