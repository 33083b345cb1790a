package cmd

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/idossha/ti-opt-core/roi"
	"github.com/idossha/ti-opt-core/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// loadSession reads every environment variable this core consumes exactly
// once, at the CLI boundary, into a Session — core packages downstream
// never call os.Getenv themselves (spec's no-global-state design note).
func loadSession(seed int64) *core.Session {
	s := core.NewSession(os.Getenv("PROJECT_DIR"), os.Getenv("LOG_FILE"), seed)

	s.ROICoords = [3]float64{
		getenvFloat("ROI_X"), getenvFloat("ROI_Y"), getenvFloat("ROI_Z"),
	}
	s.ROIRadius = getenvFloat("ROI_RADIUS")
	s.UseMNICoords = getenvBool("USE_MNI_COORDS")

	s.NonROICoords = [3]float64{
		getenvFloat("NONROI_X"), getenvFloat("NONROI_Y"), getenvFloat("NONROI_Z"),
	}
	s.NonROIRadius = getenvFloat("NONROI_RADIUS")
	s.UseMNICoordsNon = getenvBool("USE_MNI_COORDS_NON")

	s.AtlasPath = os.Getenv("ATLAS_PATH")
	s.AtlasLabel = getenvInt("ATLAS_LABEL")
	s.NonROIAtlasPath = os.Getenv("NONROI_ATLAS_PATH")
	s.NonROIAtlasLabel = getenvInt("NONROI_ATLAS_LABEL")

	s.VolumeAtlasPath = os.Getenv("VOLUME_ATLAS_PATH")
	s.VolumeAtlasLabel = getenvInt("VOLUME_ATLAS_LABEL")

	s.GreyMatterTags = getenvInt32Slice("GM_TISSUE_TAGS", defaultGreyMatterTags)

	return s
}

// defaultGreyMatterTags is the mesh tissue tag identifying grey matter when
// GM_TISSUE_TAGS is unset, matching the upstream toolchain's own default.
var defaultGreyMatterTags = []int32{2}

func getenvFloat(name string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil {
		return 0
	}
	return v
}

func getenvInt(name string) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return v
}

func getenvBool(name string) bool {
	v, _ := strconv.ParseBool(os.Getenv(name))
	return v
}

// getenvInt32Slice parses a comma-separated list of integers, returning def
// if the variable is unset or empty.
func getenvInt32Slice(name string, def []int32) []int32 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return def
		}
		out = append(out, int32(v))
	}
	return out
}

// RunConfig is the YAML shape accepted by --config. Every subcommand shares
// one struct; a field a given subcommand doesn't use is simply left zero.
// All fields must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Subject        string    `yaml:"subject"`
	Leadfield      string    `yaml:"leadfield"`
	ROIMethod      string    `yaml:"roi_method"`
	ROIName        string    `yaml:"roi_name"`
	Current        float64   `yaml:"current"`
	ChannelLimit   float64   `yaml:"channel_limit"`
	OutDir         string    `yaml:"out_dir"`
	Seed           int64     `yaml:"seed"`
	Goal           string    `yaml:"goal"`
	Thresholds     string    `yaml:"thresholds"`
	NMultistart    int       `yaml:"n_multistart"`
	PopulationSize int       `yaml:"population_size"`
	MaxIterations  int       `yaml:"max_iterations"`
	CPUs           int       `yaml:"cpus"`
	ROIPcts        []float64 `yaml:"roi_pcts"`
	NonROIPcts     []float64 `yaml:"nonroi_pcts"`
}

// loadRunConfig parses --config's YAML file, if one was given. An empty
// path is not an error: config files are optional, flags/defaults suffice
// on their own.
func loadRunConfig(path string) (RunConfig, error) {
	var cfg RunConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, core.Wrap(core.ErrIO, "read config %s", path)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, core.Wrap(core.ErrInvalidFormat, "parse config %s", path)
	}
	return cfg, nil
}

// mergeString/mergeFloat/mergeInt/mergeInt64/mergeFloatSlice fill dest from
// a config value only when the user did not pass the corresponding flag
// explicitly — flags always win over the config file.
func mergeString(cmd *cobra.Command, flag, cfgVal string, dest *string) {
	if !cmd.Flags().Changed(flag) && cfgVal != "" {
		*dest = cfgVal
	}
}

func mergeFloat(cmd *cobra.Command, flag string, cfgVal float64, dest *float64) {
	if !cmd.Flags().Changed(flag) && cfgVal != 0 {
		*dest = cfgVal
	}
}

func mergeInt(cmd *cobra.Command, flag string, cfgVal int, dest *int) {
	if !cmd.Flags().Changed(flag) && cfgVal != 0 {
		*dest = cfgVal
	}
}

func mergeInt64(cmd *cobra.Command, flag string, cfgVal int64, dest *int64) {
	if !cmd.Flags().Changed(flag) && cfgVal != 0 {
		*dest = cfgVal
	}
}

func mergeFloatSlice(cmd *cobra.Command, flag string, cfgVal []float64, dest *[]float64) {
	if !cmd.Flags().Changed(flag) && len(cfgVal) > 0 {
		*dest = cfgVal
	}
}

// resolveSpec builds a roi.Spec for the named region (either the primary
// ROI or its independently-configured non-ROI suppression region) given
// --roi-method and the session's coordinate/atlas fields. For
// "subcortical" the session has no separate non-ROI fields, so nonROI=true
// returns the same Volume spec as the primary ROI. Grey matter is a
// separate, mesh-intrinsic concept resolved by resolveGMMask, not by this
// function.
func resolveSpec(method string, session *core.Session, nonROI bool) (roi.Spec, error) {
	switch method {
	case "spherical":
		center, radius := session.ROICoords, session.ROIRadius
		if nonROI {
			center, radius = session.NonROICoords, session.NonROIRadius
		}
		return roi.Sphere{Center: leadfield.Vec3(center), Radius: radius}, nil
	case "atlas":
		path, label := session.AtlasPath, session.AtlasLabel
		if nonROI {
			path, label = session.NonROIAtlasPath, session.NonROIAtlasLabel
		}
		return roi.SurfaceLabel{AtlasPath: path, LabelID: label}, nil
	case "subcortical":
		return roi.Volume{AtlasPath: session.VolumeAtlasPath, LabelID: session.VolumeAtlasLabel}, nil
	default:
		return nil, core.Wrap(core.ErrInvalidInput, "unknown --roi-method %q", method)
	}
}

// resolveGMMask builds the true grey-matter mask from the leadfield's own
// mesh tissue tags (session.GreyMatterTags), independent of --roi-method —
// unlike resolveSpec's regions, grey matter is not configured per ROI
// method.
func resolveGMMask(lf *leadfield.Leadfield, session *core.Session) (*roi.Mask, error) {
	return roi.FromTissueTags(lf, session.GreyMatterTags)
}

// recordRunIndex upserts run into the SQLite-backed run index at dbPath, in
// addition to the run.json/summary artifacts every subcommand already
// writes directly to --out-dir. A blank dbPath (the default) skips the
// index entirely — it is opt-in, not a replacement for the JSON artifacts.
func recordRunIndex(dbPath string, run store.RunRecord) error {
	if dbPath == "" {
		return nil
	}
	idx, err := store.OpenRunIndex(dbPath)
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.Upsert(run)
}
