package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AppendEvent durably appends a progress record for a job and returns its
// per-job sequence number. Sequence numbers are strictly increasing within a
// job; the insert computes the next value inside a transaction so concurrent
// writers cannot interleave.
func (s *Store) AppendEvent(ctx context.Context, jobID, content string, completed bool) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin event tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM transcript_events WHERE job_id = ?`, jobID)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next event seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transcript_events (job_id, seq, content, completed, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		jobID, seq, content, boolToInt(completed), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit event: %w", err)
	}
	return seq, nil
}

// EventsSince returns a job's events with seq greater than afterSeq in append
// order. Pass zero to recover the full history.
func (s *Store) EventsSince(ctx context.Context, jobID string, afterSeq int64) ([]TranscriptEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, seq, content, completed, created_at
         FROM transcript_events WHERE job_id = ? AND seq > ? ORDER BY seq`,
		jobID, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []TranscriptEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (TranscriptEvent, error) {
	var (
		event      TranscriptEvent
		completed  int
		createdRaw string
	)
	if err := rows.Scan(&event.ID, &event.JobID, &event.Seq, &event.Content, &completed, &createdRaw); err != nil {
		return TranscriptEvent{}, fmt.Errorf("scan event: %w", err)
	}
	event.Completed = completed != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		event.CreatedAt = created
	}
	return event, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
