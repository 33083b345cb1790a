// Package testutil provides shared test infrastructure for the TI
// optimization core: golden fixed-input/fixed-output regression cases and
// float assertion helpers, used by the field/ tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset is the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Cases []GoldenCase `json:"cases"`
}

// GoldenCase pins one field-math scenario and its expected envelope
// output. Vectors are three-node, three-axis field samples: small enough
// to hand-derive, large enough to exercise the envelope formula's branch
// points (aligned unequal channels, perpendicular equal-magnitude
// channels, anti-parallel channels).
type GoldenCase struct {
	Name             string       `json:"name"`
	PairAChannel1    [][3]float64 `json:"pair_a_channel1"`
	PairAChannel2    [][3]float64 `json:"pair_a_channel2"`
	PairBChannel1    [][3]float64 `json:"pair_b_channel1,omitempty"`
	PairBChannel2    [][3]float64 `json:"pair_b_channel2,omitempty"`
	ExpectedEnvelope []float64    `json:"expected_envelope"`
}

// LoadGoldenDataset loads testdata/goldendataset.json, resolved relative to
// this source file regardless of which package's test invokes it.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve testutil source path")
	}
	// internal/testutil/ -> repo root -> testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("parse golden dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance,
// treating want == got == 0 as an exact match (relative diff is undefined
// there).
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFloat64SliceEqual applies AssertFloat64Equal element-wise, failing
// fast on a length mismatch.
func AssertFloat64SliceEqual(t *testing.T, name string, want, got []float64, relTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length mismatch, want %d got %d", name, len(want), len(got))
	}
	for i := range want {
		AssertFloat64Equal(t, name, want[i], got[i], relTol)
	}
}
