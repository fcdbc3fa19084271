// ABOUTME: Local sqlite journal of multi-step workflow runs
// ABOUTME: Records per-step outcomes so partial failures can be reconciled by hand
package workflow

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Step outcomes recorded in the journal.
const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// Run outcomes.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	workflow    TEXT NOT NULL,
	subject     TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT
);
CREATE TABLE IF NOT EXISTS steps (
	run_id TEXT NOT NULL REFERENCES runs(id),
	seq    INTEGER NOT NULL,
	name   TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT,
	at     TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Journal persists workflow runs and their step outcomes to a local sqlite
// file. The remote store has no transactions, so a run that fails midway
// leaves earlier steps committed; the journal is the record an operator uses
// to find and reconcile those partial runs.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (and if needed initializes) the journal database.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow journal %s: %w", path, err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize workflow journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the journal database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// StartRun records the beginning of a workflow run and returns its ID.
// A nil journal is a no-op, so workflows stay usable without local storage.
func (j *Journal) StartRun(workflow, subject string) string {
	runID := uuid.NewString()
	if j == nil || j.db == nil {
		return runID
	}
	j.db.Exec(`INSERT INTO runs (id, workflow, subject, status, started_at) VALUES (?, ?, ?, 'running', ?)`,
		runID, workflow, subject, stamp())
	return runID
}

// RecordStep records the outcome of one step of a run.
func (j *Journal) RecordStep(runID string, seq int, name, status, detail string) {
	if j == nil || j.db == nil {
		return
	}
	j.db.Exec(`INSERT OR REPLACE INTO steps (run_id, seq, name, status, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, seq, name, status, detail, stamp())
}

// FinishRun records the final status of a run.
func (j *Journal) FinishRun(runID, status string) {
	if j == nil || j.db == nil {
		return
	}
	j.db.Exec(`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`, status, stamp(), runID)
}

// RunStep is one journaled step, surfaced to the operator inspection command.
type RunStep struct {
	Seq    int
	Name   string
	Status string
	Detail string
	At     string
}

// FailedRuns lists the run IDs that finished failed, oldest first.
func (j *Journal) FailedRuns() ([]string, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	rows, err := j.db.Query(`SELECT id FROM runs WHERE status = ? ORDER BY started_at`, RunFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Steps returns the journaled steps of one run in order.
func (j *Journal) Steps(runID string) ([]RunStep, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	rows, err := j.db.Query(`SELECT seq, name, status, COALESCE(detail, ''), at FROM steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var s RunStep
		if err := rows.Scan(&s.Seq, &s.Name, &s.Status, &s.Detail, &s.At); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}
