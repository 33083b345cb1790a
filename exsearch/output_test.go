package exsearch

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRows() []MontageResult {
	return []MontageResult{
		{Montage: "A_B <> C_D", I1MA: 1.5, I2MA: 0.5, TImaxROI: 0.2, TImeanROI: 0.15, TImeanGM: 0.05, Focality: 3.0, Composite: 0.45, NElements: 2, Status: "ok"},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "final_output.csv")
	require.NoError(t, WriteCSV(path, sampleRows()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, csvHeader, records[0])
	require.Equal(t, "A_B <> C_D", records[1][0])
	require.Equal(t, "1.5000", records[1][1])
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis_results.json")
	require.NoError(t, WriteJSON(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]montageEntry
	require.NoError(t, json.Unmarshal(data, &out))
	entry, ok := out["TI_field_A_B <> C_D.msh"]
	require.True(t, ok)
	require.Equal(t, 0.45, entry.Composite)
}
