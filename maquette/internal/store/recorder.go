package store

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"
)

const (
	recorderBuffer = 1024
	batchSize      = 64
)

// Recorder persists stage events asynchronously: buffered channel in,
// batched transactions out. Recording never blocks the pipeline; when the
// buffer is full events are dropped.
type Recorder struct {
	db   *sql.DB
	ch   chan *StageEvent
	done chan struct{}
	once sync.Once
}

// NewRecorder creates a recorder and starts its flush goroutine.
func NewRecorder(db *sql.DB) *Recorder {
	r := &Recorder{
		db:   db,
		ch:   make(chan *StageEvent, recorderBuffer),
		done: make(chan struct{}),
	}
	go r.flushLoop()
	return r
}

// RecordAsync queues an event. Non-blocking; drops if the buffer is full.
func (r *Recorder) RecordAsync(e *StageEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case r.ch <- e:
	default:
		// buffer full, drop rather than backpressure the pipeline
	}
}

// Close drains the buffer and stops the flush goroutine.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		close(r.ch)
		<-r.done
	})
	return nil
}

func (r *Recorder) flushLoop() {
	defer close(r.done)

	batch := make([]*StageEvent, 0, batchSize)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-r.ch:
			if !ok {
				r.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= batchSize {
				r.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *Recorder) flushBatch(batch []*StageEvent) {
	if len(batch) == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		slog.Error("run recorder: begin tx", "error", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO run_events (run_id, stage, detail, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Error("run recorder: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.RunID, e.Stage, e.Detail, e.DurationMs, e.Timestamp.UnixMilli()); err != nil {
			slog.Error("run recorder: insert", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("run recorder: commit", "error", err)
	}
}
