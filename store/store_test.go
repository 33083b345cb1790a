package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/stretchr/testify/require"
)

func TestNewRunRecord_StartsPending(t *testing.T) {
	run := NewRunRecord("sub-01", "mean", "sphere(10,20,30,5)", "eeg10-10", 42)
	require.NotEmpty(t, run.ID)
	require.Equal(t, StatusPending, run.Status)
	require.Nil(t, run.Score)
}

func TestWriteRunJSON_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	run := NewRunRecord("sub-01", "focality", "atlas(DK,precentral)", "eeg10-10", 7)
	run.Status = StatusDone
	score := 0.873
	run.Score = &score

	path := filepath.Join(dir, "run.json")
	require.NoError(t, WriteRunJSON(path, run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got RunRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, run.ID, got.ID)
	require.Equal(t, StatusDone, got.Status)
	require.InDelta(t, score, *got.Score, 1e-9)
}

func TestWriteSingleOptimizationSummary_ContainsFields(t *testing.T) {
	dir := t.TempDir()
	run := NewRunRecord("sub-02", "max", "sphere(0,0,0,10)", "eeg10-10", 1)
	run.Status = StatusFailed

	path := filepath.Join(dir, "optimization_summary.txt")
	require.NoError(t, WriteSingleOptimizationSummary(path, run, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, run.ID)
	require.Contains(t, text, "failed")
	require.Contains(t, text, "(none)")
}

func TestWriteMultistartSummary_RendersPerRunRows(t *testing.T) {
	dir := t.TempDir()
	data := MultistartSummaryData{
		Goal:      "mean",
		NRuns:     3,
		BestIndex: 1,
		BestScore: 1.23,
		Runs: []MultistartRunRow{
			{Index: 0, Value: 2.0, Failed: false},
			{Index: 1, Value: 1.23, Failed: false},
			{Index: 2, Value: 0, Failed: true},
		},
	}
	path := filepath.Join(dir, "multistart_optimization_summary.txt")
	require.NoError(t, WriteMultistartSummary(path, data))

	text, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(text), "run 1: value=1.23 failed=false")
	require.Contains(t, string(text), "run 2: value=0 failed=true")
}

func TestRunIndex_UpsertAndGet(t *testing.T) {
	idx, err := OpenRunIndex(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	run := NewRunRecord("sub-03", "mean", "sphere(1,2,3,4)", "eeg10-10", 99)
	require.NoError(t, idx.Upsert(run))

	got, err := idx.Get(run.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)

	run.Status = StatusDone
	score := 0.5
	run.Score = &score
	require.NoError(t, idx.Upsert(run))

	got, err = idx.Get(run.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, got.Status)
	require.InDelta(t, score, *got.Score, 1e-9)
}

func TestRunIndex_ListBySubject(t *testing.T) {
	idx, err := OpenRunIndex(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	r1 := NewRunRecord("sub-04", "mean", "roi-a", "set-a", 1)
	r2 := NewRunRecord("sub-04", "max", "roi-b", "set-a", 2)
	r3 := NewRunRecord("sub-05", "mean", "roi-c", "set-b", 3)
	require.NoError(t, idx.Upsert(r1))
	require.NoError(t, idx.Upsert(r2))
	require.NoError(t, idx.Upsert(r3))

	runs, err := idx.ListBySubject("sub-04")
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestWriteElectrodePositions_SchemaMatchesContract(t *testing.T) {
	dir := t.TempDir()
	positions := []leadfield.Vec3{
		{10, 20, 30},
		{-10, 20, 30},
		{0, -20, 30},
		{0, 20, -30},
	}
	pairs := [][2]int{{0, 1}, {2, 3}}

	path := filepath.Join(dir, "electrode_positions.json")
	require.NoError(t, WriteElectrodePositions(path, positions, pairs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		OptimizedPositions  [][3]float64 `json:"optimized_positions"`
		ChannelArrayIndices [][2]int     `json:"channel_array_indices"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.OptimizedPositions, 4)
	require.Equal(t, [3]float64{10, 20, 30}, doc.OptimizedPositions[0])
	require.Equal(t, pairs, doc.ChannelArrayIndices)
}
