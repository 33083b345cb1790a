package cmd

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/flex"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/idossha/ti-opt-core/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var flexArgs struct {
	subject        string
	leadfieldPath  string
	goal           string
	postproc       string
	roiMethod      string
	roiName        string
	thresholds     string
	electrodeShape string
	dimensions     string
	thickness      float64
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

var flexCmd = &cobra.Command{
	Use:   "flex",
	Short: "Multi-start evolutionary optimization over electrode position and current",
	RunE:  runFlex,
}

func runFlex(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}
	mergeString(cmd, "subject", fileCfg.Subject, &flexArgs.subject)
	mergeString(cmd, "leadfield", fileCfg.Leadfield, &flexArgs.leadfieldPath)
	mergeString(cmd, "goal", fileCfg.Goal, &flexArgs.goal)
	mergeString(cmd, "roi-method", fileCfg.ROIMethod, &flexArgs.roiMethod)
	mergeString(cmd, "roi-name", fileCfg.ROIName, &flexArgs.roiName)
	mergeString(cmd, "thresholds", fileCfg.Thresholds, &flexArgs.thresholds)
	mergeFloat(cmd, "current", fileCfg.Current, &flexArgs.current)
	mergeFloat(cmd, "channel-limit", fileCfg.ChannelLimit, &flexArgs.channelLimit)
	mergeInt(cmd, "n-multistart", fileCfg.NMultistart, &flexArgs.nMultistart)
	mergeInt(cmd, "population-size", fileCfg.PopulationSize, &flexArgs.populationSize)
	mergeInt(cmd, "max-iterations", fileCfg.MaxIterations, &flexArgs.maxIterations)
	mergeInt(cmd, "cpus", fileCfg.CPUs, &flexArgs.cpus)
	mergeString(cmd, "out-dir", fileCfg.OutDir, &flexArgs.outDir)
	mergeInt64(cmd, "seed", fileCfg.Seed, &flexArgs.seed)

	if flexArgs.postproc != "" && flexArgs.postproc != "max_TI" {
		logrus.Warnf("postproc %q requested; this core computes max_TI only, falling back", flexArgs.postproc)
	}
	logrus.WithFields(logrus.Fields{
		"electrode_shape": flexArgs.electrodeShape,
		"dimensions":      flexArgs.dimensions,
		"thickness_mm":    flexArgs.thickness,
	}).Debug("physical electrode geometry recorded for this run (not consumed by the leadfield, which already bakes it in)")

	session := loadSession(flexArgs.seed)

	lf, err := leadfield.Load(flexArgs.leadfieldPath)
	if err != nil {
		return err
	}

	roiSpec, err := resolveSpec(flexArgs.roiMethod, session, false)
	if err != nil {
		return err
	}
	nonROISpec, err := resolveSpec(flexArgs.roiMethod, session, true)
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

	nonroiThr, roiThr, err := parseThresholds(flexArgs.thresholds)
	if err != nil {
		return err
	}

	problem := flex.NewProblem(lf, roiMask, gmMask, nonROIMask, flexArgs.current/1000.0, flexArgs.channelLimit/1000.0)
	cost := flex.NewCost(problem, flexArgs.goal, roiThr, nonroiThr)

	cfg := flex.Defaults()
	cfg.Goal = flexArgs.goal
	cfg.ROIThreshold = roiThr
	cfg.NonROIThreshold = nonroiThr
	cfg.NMultistart = flexArgs.nMultistart
	cfg.PopulationSize = flexArgs.populationSize
	cfg.MaxGenerations = flexArgs.maxIterations
	cfg.CPUs = flexArgs.cpus
	cfg.SessionSeed = flexArgs.seed

	cancel := &core.CancelFlag{}
	sink := core.NewStdoutSink(nil, cancel)

	result, err := flex.RunMultiStart(context.Background(), cfg, problem.Bounds(), cost, sink)
	if err != nil {
		return err
	}

	run := store.NewRunRecord(flexArgs.subject, flexArgs.goal, flexArgs.roiName, "eeg-cap", flexArgs.seed)
	run.Status = store.StatusDone
	score := result.BestCost
	run.Score = &score
	run.OutputPath = flexArgs.outDir

	if err := recordRunIndex(flexArgs.runIndexDB, run); err != nil {
		return err
	}
	if err := store.WriteRunJSON(filepath.Join(flexArgs.outDir, "run.json"), run); err != nil {
		return err
	}
	if err := store.WriteSingleOptimizationSummary(filepath.Join(flexArgs.outDir, "optimization_summary.txt"), run, time.Now()); err != nil {
		return err
	}
	if cfg.NMultistart > 1 {
		rows := make([]store.MultistartRunRow, len(result.Runs))
		for i, r := range result.Runs {
			rows[i] = store.MultistartRunRow{Index: r.Index, Value: r.Value, Failed: r.Failed}
		}
		summary := store.MultistartSummaryData{
			Goal: flexArgs.goal, NRuns: len(result.Runs),
			BestIndex: result.BestIdx, BestScore: result.BestCost, Runs: rows,
		}
		if err := store.WriteMultistartSummary(filepath.Join(flexArgs.outDir, "multistart_optimization_summary.txt"), summary); err != nil {
			return err
		}
	}

	e1p, e1m, e2p, e2m, _, _ := problem.Decode(result.BestX)
	positions := []leadfield.Vec3{e1p.Position, e1m.Position, e2p.Position, e2m.Position}
	pairs := [][2]int{{0, 1}, {2, 3}}
	return store.WriteElectrodePositions(filepath.Join(flexArgs.outDir, "electrode_positions.json"), positions, pairs)
}

// parseThresholds parses "--thresholds <nr,roi>" into (nonROI, roi) absolute
// thresholds.
func parseThresholds(s string) (nonroi, roi float64, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, core.Wrap(core.ErrInvalidInput, "--thresholds must be \"nr,roi\", got %q", s)
	}
	nonroi, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	roi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, core.Wrap(core.ErrInvalidInput, "--thresholds must be two floats, got %q", s)
	}
	return nonroi, roi, nil
}

func init() {
	f := flexCmd.Flags()
	f.StringVar(&flexArgs.subject, "subject", "", "Subject identifier")
	f.StringVar(&flexArgs.leadfieldPath, "leadfield", "", "Path to the leadfield container")
	f.StringVar(&flexArgs.goal, "goal", "mean", "Optimization goal: mean, max, focality")
	f.StringVar(&flexArgs.postproc, "postproc", "max_TI", "Post-processing: max_TI, dir_TI_normal, dir_TI_tangential")
	f.StringVar(&flexArgs.roiMethod, "roi-method", "spherical", "ROI resolution method: spherical, atlas, subcortical")
	f.StringVar(&flexArgs.roiName, "roi-name", "", "ROI label, for output naming only")
	f.StringVar(&flexArgs.thresholds, "thresholds", "", "Focality thresholds \"nr,roi\" (absolute V/m), required when --goal=focality")
	f.StringVar(&flexArgs.electrodeShape, "electrode-shape", "disc", "Physical electrode shape (forwarded to artifacts only)")
	f.StringVar(&flexArgs.dimensions, "dimensions", "", "Physical electrode dimensions (forwarded to artifacts only)")
	f.Float64Var(&flexArgs.thickness, "thickness", 0, "Physical electrode thickness, mm (forwarded to artifacts only)")
	f.Float64Var(&flexArgs.current, "current", 2.0, "Total injected current, mA")
	f.Float64Var(&flexArgs.channelLimit, "channel-limit", 2.0, "Per-channel current limit, mA")
	f.IntVar(&flexArgs.nMultistart, "n-multistart", 1, "Number of independent multi-start runs")
	f.IntVar(&flexArgs.populationSize, "population-size", 30, "DE population size")
	f.IntVar(&flexArgs.maxIterations, "max-iterations", 200, "DE generation budget")
	f.IntVar(&flexArgs.cpus, "cpus", 1, "Worker goroutines per DE generation")
	f.StringVar(&flexArgs.outDir, "out-dir", ".", "Output directory for run artifacts")
	f.Int64Var(&flexArgs.seed, "seed", 1, "Session master seed")
	f.StringVar(&flexArgs.runIndexDB, "run-index-db", "", "Optional SQLite run index path; recorded alongside run.json when set")

	for _, name := range []string{"subject", "leadfield"} {
		flexCmd.MarkFlagRequired(name)
	}
}
