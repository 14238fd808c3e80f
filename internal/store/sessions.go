package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session states tracked for the owning API layer. The pipeline only ever
// marks sessions completed.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// EnsureSession creates a session record when one does not exist yet.
func (s *Store) EnsureSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, status, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		id, SessionActive, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// MarkSessionCompleted records that a session's transcription finished. The
// pipeline treats this as fire-and-forget; failures are logged by the caller.
func (s *Store) MarkSessionCompleted(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		SessionCompleted, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark session completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// SessionStatus returns the recorded status for a session, or empty when the
// session is unknown.
func (s *Store) SessionStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = ?`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("session status: %w", err)
	}
	return status, nil
}
