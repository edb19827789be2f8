// CLAUDE:SUMMARY SQLite run log: one row per clone run plus async stage-event recorder.
// Package store persists the clone run history: a summary row per run and
// an asynchronous stage-event stream. Recording is fire-and-forget so a
// slow or broken log store never blocks the pipeline.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/maquette/dbopen"
)

// Schema for the runs and run_events tables.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	framework TEXT NOT NULL DEFAULT '',
	components_count INTEGER NOT NULL DEFAULT 0,
	layout_type TEXT NOT NULL DEFAULT '',
	similarity REAL,
	output_path TEXT NOT NULL DEFAULT '',
	project_tag TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'running',
	error TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

CREATE TABLE IF NOT EXISTS run_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id);
`

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run is one clone run's summary row.
type Run struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Framework       string   `json:"framework"`
	ComponentsCount int      `json:"components_count"`
	LayoutType      string   `json:"layout_type"`
	Similarity      *float64 `json:"similarity,omitempty"`
	OutputPath      string   `json:"output_path"`
	ProjectTag      string   `json:"project_tag,omitempty"`
	Status          string   `json:"status"`
	Error           string   `json:"error,omitempty"`
	DurationMs      int64    `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// StageEvent is one pipeline stage boundary, recorded asynchronously.
type StageEvent struct {
	RunID      string    `json:"run_id"`
	Stage      string    `json:"stage"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store wraps the runs database.
type Store struct {
	db       *sql.DB
	recorder *Recorder
}

// Open opens (or creates) the runs database at path and starts the async
// event recorder.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already-open database. The schema must be applied.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, recorder: NewRecorder(db)}
}

// Close drains the event recorder and closes the database.
func (s *Store) Close() error {
	s.recorder.Close()
	return s.db.Close()
}

// InsertRun records the start of a run.
func (s *Store) InsertRun(ctx context.Context, r *Run) error {
	if r.Status == "" {
		r.Status = StatusRunning
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO runs (id, url, framework, components_count, layout_type,
			similarity, output_path, project_tag, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.URL, r.Framework, r.ComponentsCount, r.LayoutType,
		r.Similarity, r.OutputPath, r.ProjectTag, r.Status, r.Error, r.DurationMs,
		r.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, r *Run) error {
	_, err := dbopen.Exec(ctx, s.db, `
		UPDATE runs SET framework = ?, components_count = ?, layout_type = ?,
			similarity = ?, output_path = ?, status = ?, error = ?, duration_ms = ?
		WHERE id = ?`,
		r.Framework, r.ComponentsCount, r.LayoutType,
		r.Similarity, r.OutputPath, r.Status, r.Error, r.DurationMs, r.ID)
	if err != nil {
		return fmt.Errorf("store: finish run: %w", err)
	}
	return nil
}

// GetRun returns a run by ID, or nil when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, framework, components_count, layout_type, similarity,
			output_path, project_tag, status, error, duration_ms, created_at
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, framework, components_count, layout_type, similarity,
			output_path, project_tag, status, error, duration_ms, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var result []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListEvents returns the stage events of a run, oldest first.
func (s *Store) ListEvents(ctx context.Context, runID string) ([]*StageEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, stage, detail, duration_ms, timestamp
		FROM run_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	defer rows.Close()

	var result []*StageEvent
	for rows.Next() {
		var e StageEvent
		var ts int64
		if err := rows.Scan(&e.RunID, &e.Stage, &e.Detail, &e.DurationMs, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ts)
		result = append(result, &e)
	}
	return result, rows.Err()
}

// RecordStage queues a stage event for async persistence. Non-blocking.
func (s *Store) RecordStage(e *StageEvent) {
	s.recorder.RecordAsync(e)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var createdAt int64
	err := row.Scan(&r.ID, &r.URL, &r.Framework, &r.ComponentsCount, &r.LayoutType,
		&r.Similarity, &r.OutputPath, &r.ProjectTag, &r.Status, &r.Error,
		&r.DurationMs, &createdAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMilli(createdAt)
	return &r, nil
}
