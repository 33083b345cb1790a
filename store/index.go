package store

import (
	"database/sql"

	"github.com/idossha/ti-opt-core/core"

	_ "modernc.org/sqlite"
)

// RunIndex is an optional, session-local queryable ledger of RunRecords,
// backed by SQLite. Every other artifact (JSON, summaries, electrode
// positions) is written directly to the output folder regardless of
// whether a RunIndex is in use; this is purely for listing and filtering
// past runs without re-walking the filesystem.
type RunIndex struct {
	db *sql.DB
}

// OpenRunIndex opens (creating if necessary) the SQLite-backed run index
// at dsn, e.g. a file path or ":memory:".
func OpenRunIndex(dsn string) (*RunIndex, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.Wrap(core.ErrIO, "open run index %s", dsn)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, core.Wrap(core.ErrIO, "set WAL mode on %s", dsn)
	}

	idx := &RunIndex{db: db}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *RunIndex) createSchema() error {
	_, err := idx.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		subject_id       TEXT NOT NULL,
		goal             TEXT NOT NULL,
		roi_description  TEXT NOT NULL,
		electrode_set_id TEXT NOT NULL,
		seed             INTEGER NOT NULL,
		status           TEXT NOT NULL,
		score            REAL,
		output_path      TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return core.Wrap(core.ErrIO, "create runs table")
	}
	return nil
}

// Close closes the underlying database handle.
func (idx *RunIndex) Close() error {
	return idx.db.Close()
}

// Upsert inserts or replaces a run record by ID.
func (idx *RunIndex) Upsert(run RunRecord) error {
	_, err := idx.db.Exec(`INSERT INTO runs
		(id, subject_id, goal, roi_description, electrode_set_id, seed, status, score, output_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			output_path = excluded.output_path`,
		run.ID, run.SubjectID, run.Goal, run.ROIDescription, run.ElectrodeSetID,
		run.Seed, string(run.Status), run.Score, run.OutputPath)
	if err != nil {
		return core.Wrap(core.ErrIO, "upsert run %s", run.ID)
	}
	return nil
}

// Get fetches one run record by ID.
func (idx *RunIndex) Get(id string) (RunRecord, error) {
	var run RunRecord
	var status string
	row := idx.db.QueryRow(`SELECT id, subject_id, goal, roi_description, electrode_set_id, seed, status, score, output_path
		FROM runs WHERE id = ?`, id)
	if err := row.Scan(&run.ID, &run.SubjectID, &run.Goal, &run.ROIDescription, &run.ElectrodeSetID,
		&run.Seed, &status, &run.Score, &run.OutputPath); err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, core.Wrap(core.ErrNotFound, "run %s", id)
		}
		return RunRecord{}, core.Wrap(core.ErrIO, "get run %s", id)
	}
	run.Status = RunStatus(status)
	return run, nil
}

// ListBySubject returns every run recorded for a subject, most recent
// insertion order last (SQLite's implicit rowid order).
func (idx *RunIndex) ListBySubject(subjectID string) ([]RunRecord, error) {
	rows, err := idx.db.Query(`SELECT id, subject_id, goal, roi_description, electrode_set_id, seed, status, score, output_path
		FROM runs WHERE subject_id = ? ORDER BY rowid`, subjectID)
	if err != nil {
		return nil, core.Wrap(core.ErrIO, "list runs for subject %s", subjectID)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var run RunRecord
		var status string
		if err := rows.Scan(&run.ID, &run.SubjectID, &run.Goal, &run.ROIDescription, &run.ElectrodeSetID,
			&run.Seed, &status, &run.Score, &run.OutputPath); err != nil {
			return nil, core.Wrap(core.ErrIO, "scan run row")
		}
		run.Status = RunStatus(status)
		out = append(out, run)
	}
	return out, nil
}
