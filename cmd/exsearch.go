package cmd

import (
	"context"
	"path/filepath"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/exsearch"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/idossha/ti-opt-core/store"
	"github.com/spf13/cobra"
)

var exArgs struct {
	subject      string
	leadfield    string
	roiMethod    string
	roiName      string
	e1Plus       []string
	e1Minus      []string
	e2Plus       []string
	e2Minus      []string
	current      float64
	currentStep  float64
	channelLimit float64
	outDir       string
	seed         int64
	runIndexDB   string
}

var exsearchCmd = &cobra.Command{
	Use:   "exsearch",
	Short: "Exhaustively enumerate electrode/current tuples and rank by composite index",
	RunE:  runExsearch,
}

func runExsearch(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}
	mergeString(cmd, "subject", fileCfg.Subject, &exArgs.subject)
	mergeString(cmd, "leadfield", fileCfg.Leadfield, &exArgs.leadfield)
	mergeString(cmd, "roi-method", fileCfg.ROIMethod, &exArgs.roiMethod)
	mergeString(cmd, "roi-name", fileCfg.ROIName, &exArgs.roiName)
	mergeFloat(cmd, "current", fileCfg.Current, &exArgs.current)
	mergeFloat(cmd, "channel-limit", fileCfg.ChannelLimit, &exArgs.channelLimit)
	mergeString(cmd, "out-dir", fileCfg.OutDir, &exArgs.outDir)
	mergeInt64(cmd, "seed", fileCfg.Seed, &exArgs.seed)

	session := loadSession(exArgs.seed)

	lf, err := leadfield.Load(exArgs.leadfield)
	if err != nil {
		return err
	}

	if err := validateElectrodeLabels(lf, []labelGroup{
		{"e1-plus", exArgs.e1Plus},
		{"e1-minus", exArgs.e1Minus},
		{"e2-plus", exArgs.e2Plus},
		{"e2-minus", exArgs.e2Minus},
	}); err != nil {
		return err
	}

	roiSpec, err := resolveSpec(exArgs.roiMethod, session, false)
	if err != nil {
		return err
	}
	roiMask, err := roi.Resolve(roiSpec, lf)
	if err != nil {
		return err
	}
	gmMask, err := resolveGMMask(lf, session)
	if err != nil {
		return err
	}

	cfg := exsearch.Config{
		E1Plus: exArgs.e1Plus, E1Minus: exArgs.e1Minus,
		E2Plus: exArgs.e2Plus, E2Minus: exArgs.e2Minus,
		TotalCurrentMA: exArgs.current,
		CurrentStepMA:  exArgs.currentStep,
		ChannelLimitMA: exArgs.channelLimit,
	}

	cancel := &core.CancelFlag{}
	sink := core.NewStdoutSink(nil, cancel)

	result, err := exsearch.Run(context.Background(), cfg, lf, roiMask, gmMask, sink)
	if err != nil && err != core.ErrCancelled {
		return err
	}

	if err := exsearch.WriteCSV(filepath.Join(exArgs.outDir, "final_output.csv"), result.Rows); err != nil {
		return err
	}
	if err := exsearch.WriteJSON(filepath.Join(exArgs.outDir, "analysis_results.json"), result.Rows); err != nil {
		return err
	}
	if err := exsearch.WriteDistributionPlot(filepath.Join(exArgs.outDir, "montage_distributions.png"), result.Rows); err != nil {
		return err
	}

	run := store.NewRunRecord(exArgs.subject, "exsearch", exArgs.roiName, "eeg-cap", exArgs.seed)
	run.Status = store.StatusDone
	run.OutputPath = exArgs.outDir
	if err := recordRunIndex(exArgs.runIndexDB, run); err != nil {
		return err
	}
	return store.WriteRunJSON(filepath.Join(exArgs.outDir, "run.json"), run)
}

// labelGroup names one --e1-plus/--e1-minus/--e2-plus/--e2-minus flag for
// validateElectrodeLabels' error messages.
type labelGroup struct {
	flag   string
	labels []string
}

// validateElectrodeLabels rejects any label not present in lf.Electrodes
// before the sweep starts. A typo'd label would otherwise fail identically
// on every enumerated tuple (or, absent this check, index the leadfield
// tensor with ElectrodeIndex's -1 sentinel and panic) — one upfront error
// is more useful than either.
func validateElectrodeLabels(lf *leadfield.Leadfield, groups []labelGroup) error {
	for _, g := range groups {
		for _, label := range g.labels {
			if lf.ElectrodeIndex(label) < 0 {
				return core.Wrap(core.ErrInvalidInput, "--%s: unknown electrode label %q", g.flag, label)
			}
		}
	}
	return nil
}

func init() {
	f := exsearchCmd.Flags()
	f.StringVar(&exArgs.subject, "subject", "", "Subject identifier")
	f.StringVar(&exArgs.leadfield, "leadfield", "", "Path to the leadfield container")
	f.StringVar(&exArgs.roiMethod, "roi-method", "spherical", "ROI resolution method: spherical, atlas, subcortical")
	f.StringVar(&exArgs.roiName, "roi-name", "", "ROI label, for logging/output naming only")
	f.StringSliceVar(&exArgs.e1Plus, "e1-plus", nil, "Candidate anode labels for channel 1")
	f.StringSliceVar(&exArgs.e1Minus, "e1-minus", nil, "Candidate cathode labels for channel 1")
	f.StringSliceVar(&exArgs.e2Plus, "e2-plus", nil, "Candidate anode labels for channel 2")
	f.StringSliceVar(&exArgs.e2Minus, "e2-minus", nil, "Candidate cathode labels for channel 2")
	f.Float64Var(&exArgs.current, "current", 2.0, "Total injected current, mA")
	f.Float64Var(&exArgs.currentStep, "current-step", 0.2, "Current ratio grid step, mA")
	f.Float64Var(&exArgs.channelLimit, "channel-limit", 2.0, "Per-channel current limit, mA")
	f.StringVar(&exArgs.outDir, "out-dir", ".", "Output directory for CSV/JSON/plot artifacts")
	f.Int64Var(&exArgs.seed, "seed", 1, "Session seed (unused by ex-search, kept for session symmetry with flex/pareto)")
	f.StringVar(&exArgs.runIndexDB, "run-index-db", "", "Optional SQLite run index path; recorded alongside run.json when set")

	for _, name := range []string{"subject", "leadfield"} {
		exsearchCmd.MarkFlagRequired(name)
	}
}
