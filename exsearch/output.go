package exsearch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/idossha/ti-opt-core/core"
)

// csvHeader matches spec's fixed column order exactly.
var csvHeader = []string{
	"Montage", "Current_Ch1_mA", "Current_Ch2_mA",
	"TImax_ROI", "TImean_ROI", "TImean_GM", "Focality", "Composite_Index", "n_elements",
}

// WriteCSV writes final_output.csv: rows in enumeration order, floats
// formatted to four decimals.
func WriteCSV(path string, rows []MontageResult) error {
	f, err := os.Create(path)
	if err != nil {
		return core.Wrap(core.ErrIO, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return core.Wrap(core.ErrIO, "write csv header")
	}
	for _, r := range rows {
		record := []string{
			r.Montage,
			fmt.Sprintf("%.4f", r.I1MA),
			fmt.Sprintf("%.4f", r.I2MA),
			fmt.Sprintf("%.4f", r.TImaxROI),
			fmt.Sprintf("%.4f", r.TImeanROI),
			fmt.Sprintf("%.4f", r.TImeanGM),
			fmt.Sprintf("%.4f", r.Focality),
			fmt.Sprintf("%.4f", r.Composite),
			fmt.Sprintf("%d", r.NElements),
		}
		if err := w.Write(record); err != nil {
			return core.Wrap(core.ErrIO, "write csv row for %s", r.Montage)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return core.Wrap(core.ErrIO, "flush csv")
	}
	return nil
}

// montageEntry is one value in analysis_results.json, keyed by
// "TI_field_<montage>.msh".
type montageEntry struct {
	CurrentCh1MA float64 `json:"current_ch1_mA"`
	CurrentCh2MA float64 `json:"current_ch2_mA"`
	TImaxROI     float64 `json:"TImax_ROI"`
	TImeanROI    float64 `json:"TImean_ROI"`
	TImeanGM     float64 `json:"TImean_GM"`
	Focality     float64 `json:"focality"`
	Composite    float64 `json:"composite_index"`
	NElements    int     `json:"n_elements"`
	Status       string  `json:"status"`
}

// WriteJSON writes analysis_results.json: object keyed by
// "TI_field_<montage>.msh" containing the same metrics plus currents.
func WriteJSON(path string, rows []MontageResult) error {
	out := make(map[string]montageEntry, len(rows))
	for _, r := range rows {
		key := fmt.Sprintf("TI_field_%s.msh", r.Montage)
		out[key] = montageEntry{
			CurrentCh1MA: r.I1MA,
			CurrentCh2MA: r.I2MA,
			TImaxROI:     r.TImaxROI,
			TImeanROI:    r.TImeanROI,
			TImeanGM:     r.TImeanGM,
			Focality:     r.Focality,
			Composite:    r.Composite,
			NElements:    r.NElements,
			Status:       r.Status,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return core.Wrap(core.ErrIO, "marshal analysis_results.json")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.Wrap(core.ErrIO, "write %s", path)
	}
	return nil
}
