package cmd

import (
	"context"
	"path/filepath"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/flex"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/idossha/ti-opt-core/store"
	"github.com/idossha/ti-opt-core/sweep"
	"github.com/spf13/cobra"
)

var paretoArgs struct {
	subject        string
	leadfieldPath  string
	roiMethod      string
	roiPcts        []float64
	nonroiPcts     []float64
	current        float64
	channelLimit   float64
	nMultistart    int
	populationSize int
	maxIterations  int
	cpus           int
	outDir         string
	seed           int64
	runIndexDB     string
}

var paretoCmd = &cobra.Command{
	Use:   "pareto",
	Short: "Sweep a grid of (ROI%, nonROI%) focality thresholds",
	RunE:  runPareto,
}

func runPareto(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}
	mergeString(cmd, "subject", fileCfg.Subject, &paretoArgs.subject)
	mergeString(cmd, "leadfield", fileCfg.Leadfield, &paretoArgs.leadfieldPath)
	mergeString(cmd, "roi-method", fileCfg.ROIMethod, &paretoArgs.roiMethod)
	mergeFloatSlice(cmd, "roi-pcts", fileCfg.ROIPcts, &paretoArgs.roiPcts)
	mergeFloatSlice(cmd, "nonroi-pcts", fileCfg.NonROIPcts, &paretoArgs.nonroiPcts)
	mergeFloat(cmd, "current", fileCfg.Current, &paretoArgs.current)
	mergeFloat(cmd, "channel-limit", fileCfg.ChannelLimit, &paretoArgs.channelLimit)
	mergeInt(cmd, "n-multistart", fileCfg.NMultistart, &paretoArgs.nMultistart)
	mergeInt(cmd, "population-size", fileCfg.PopulationSize, &paretoArgs.populationSize)
	mergeInt(cmd, "max-iterations", fileCfg.MaxIterations, &paretoArgs.maxIterations)
	mergeInt(cmd, "cpus", fileCfg.CPUs, &paretoArgs.cpus)
	mergeString(cmd, "out-dir", fileCfg.OutDir, &paretoArgs.outDir)
	mergeInt64(cmd, "seed", fileCfg.Seed, &paretoArgs.seed)

	if err := sweep.ValidateGrid(paretoArgs.roiPcts, paretoArgs.nonroiPcts); err != nil {
		return err
	}

	session := loadSession(paretoArgs.seed)

	lf, err := leadfield.Load(paretoArgs.leadfieldPath)
	if err != nil {
		return err
	}
	roiSpec, err := resolveSpec(paretoArgs.roiMethod, session, false)
	if err != nil {
		return err
	}
	nonROISpec, err := resolveSpec(paretoArgs.roiMethod, session, true)
	if err != nil {
		return err
	}
	roiMask, err := roi.Resolve(roiSpec, lf)
	if err != nil {
		return err
	}
	nonROIMask, err := roi.Resolve(nonROISpec, lf)
	if err != nil {
		return err
	}
	gmMask, err := resolveGMMask(lf, session)
	if err != nil {
		return err
	}

	problem := flex.NewProblem(lf, roiMask, gmMask, nonROIMask, paretoArgs.current/1000.0, paretoArgs.channelLimit/1000.0)

	achievable, err := achievableROIMean(problem, paretoArgs.seed)
	if err != nil {
		return err
	}

	cfg := sweep.Config{
		ROIPcts: paretoArgs.roiPcts, NonROIPcts: paretoArgs.nonroiPcts,
		AchievableROIMean: achievable, BaseOutputFolder: paretoArgs.outDir,
	}

	cancel := &core.CancelFlag{}
	sink := core.NewStdoutSink(nil, cancel)

	runOne := func(point sweep.Point) (float64, error) {
		flexCfg := flex.Defaults()
		flexCfg.Goal = "focality"
		flexCfg.ROIThreshold = point.ROIThresholdAbs
		flexCfg.NonROIThreshold = point.NonROIThresholdAbs
		flexCfg.NMultistart = paretoArgs.nMultistart
		flexCfg.PopulationSize = paretoArgs.populationSize
		flexCfg.MaxGenerations = paretoArgs.maxIterations
		flexCfg.CPUs = paretoArgs.cpus
		flexCfg.SessionSeed = paretoArgs.seed + int64(point.RunIndex)

		cost := flex.NewCost(problem, "focality", point.ROIThresholdAbs, point.NonROIThresholdAbs)
		result, err := flex.RunMultiStart(context.Background(), flexCfg, problem.Bounds(), cost, sink)
		if err != nil {
			return 0, err
		}
		return result.BestCost, nil
	}

	result, err := sweep.Run(context.Background(), cfg, runOne, sink)
	if err != nil && err != core.ErrCancelled {
		return err
	}

	if err := sweep.WriteResultsJSON(filepath.Join(paretoArgs.outDir, "pareto_results.json"), cfg, result); err != nil {
		return err
	}
	if err := sweep.WriteSummaryText(filepath.Join(paretoArgs.outDir, "pareto_summary.txt"), result); err != nil {
		return err
	}

	run := store.NewRunRecord(paretoArgs.subject, "pareto", paretoArgs.roiMethod, "eeg-cap", paretoArgs.seed)
	run.Status = store.StatusDone
	run.OutputPath = paretoArgs.outDir
	if err := recordRunIndex(paretoArgs.runIndexDB, run); err != nil {
		return err
	}

	return sweep.WritePlot(filepath.Join(paretoArgs.outDir, "pareto_sweep_plot.png"), result)
}

// achievableROIMean runs a single unconstrained "mean" optimization to
// establish the 100% reference point the grid's percentages are taken
// against.
func achievableROIMean(problem *flex.Problem, seed int64) (float64, error) {
	cfg := flex.Defaults()
	cfg.Goal = "mean"
	cfg.SessionSeed = seed
	cost := flex.NewCost(problem, "mean", 0, 0)
	result, err := flex.RunMultiStart(context.Background(), cfg, problem.Bounds(), cost, core.NullSink{})
	if err != nil {
		return 0, err
	}
	return -result.BestCost, nil
}

func init() {
	f := paretoCmd.Flags()
	f.StringVar(&paretoArgs.subject, "subject", "", "Subject identifier")
	f.StringVar(&paretoArgs.leadfieldPath, "leadfield", "", "Path to the leadfield container")
	f.StringVar(&paretoArgs.roiMethod, "roi-method", "spherical", "ROI resolution method: spherical, atlas, subcortical")
	f.Float64SliceVar(&paretoArgs.roiPcts, "roi-pcts", []float64{80, 70}, "ROI percentage grid")
	f.Float64SliceVar(&paretoArgs.nonroiPcts, "nonroi-pcts", []float64{20, 30}, "NonROI percentage grid")
	f.Float64Var(&paretoArgs.current, "current", 2.0, "Total injected current, mA")
	f.Float64Var(&paretoArgs.channelLimit, "channel-limit", 2.0, "Per-channel current limit, mA")
	f.IntVar(&paretoArgs.nMultistart, "n-multistart", 1, "Multi-start runs per grid point")
	f.IntVar(&paretoArgs.populationSize, "population-size", 30, "DE population size")
	f.IntVar(&paretoArgs.maxIterations, "max-iterations", 200, "DE generation budget")
	f.IntVar(&paretoArgs.cpus, "cpus", 1, "Worker goroutines per DE generation")
	f.StringVar(&paretoArgs.outDir, "out-dir", ".", "Base output directory for grid-point subfolders")
	f.Int64Var(&paretoArgs.seed, "seed", 1, "Session master seed")
	f.StringVar(&paretoArgs.runIndexDB, "run-index-db", "", "Optional SQLite run index path; recorded alongside pareto_results.json when set")

	for _, name := range []string{"subject", "leadfield"} {
		paretoCmd.MarkFlagRequired(name)
	}
}
