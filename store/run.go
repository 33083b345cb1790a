// Package store persists run configuration, metrics, and artifacts: the
// Result Store component every scheduler (ex-search, flex, Pareto) writes
// through.
package store

import (
	"github.com/google/uuid"
)

// RunStatus mirrors the run-record lifecycle from the data model: pending
// at creation, running while a solver invocation is in flight, done or
// failed at completion.
type RunStatus string

const (
	StatusPending RunStatus = "pending"
	StatusRunning RunStatus = "running"
	StatusDone    RunStatus = "done"
	StatusFailed  RunStatus = "failed"
)

// RunRecord is one optimizer invocation's immutable metadata plus mutable
// completion state.
type RunRecord struct {
	ID             string
	SubjectID      string
	Goal           string
	ROIDescription string
	ElectrodeSetID string
	Seed           int64

	Status     RunStatus
	Score      *float64
	OutputPath string
}

// NewRunRecord allocates a fresh pending run record with a generated ID.
func NewRunRecord(subjectID, goal, roiDescription, electrodeSetID string, seed int64) RunRecord {
	return RunRecord{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		Goal:           goal,
		ROIDescription: roiDescription,
		ElectrodeSetID: electrodeSetID,
		Seed:           seed,
		Status:         StatusPending,
	}
}
