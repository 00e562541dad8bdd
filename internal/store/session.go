package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetDMSession returns the serialized state for a user's direct-message flow
// session, or ("", false, nil) when no session exists.
func (s *Store) GetDMSession(ctx context.Context, userID, flow string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT state FROM dm_sessions WHERE user_id = ? AND flow = ?",
		userID, flow)

	var state string
	err := row.Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read dm session %s/%s: %w", userID, flow, err)
	}
	return state, true, nil
}

func (s *Store) PutDMSession(ctx context.Context, userID, flow, state string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dm_sessions (user_id, flow, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, flow) DO UPDATE SET
			state      = excluded.state,
			updated_at = excluded.updated_at`,
		userID, flow, state, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write dm session %s/%s: %w", userID, flow, err)
	}
	return nil
}

func (s *Store) DeleteDMSession(ctx context.Context, userID, flow string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM dm_sessions WHERE user_id = ? AND flow = ?", userID, flow)
	if err != nil {
		return fmt.Errorf("delete dm session %s/%s: %w", userID, flow, err)
	}
	return nil
}

func (s *Store) SetMemberTimezone(ctx context.Context, userID, tz string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO member_timezones (user_id, timezone)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET timezone = excluded.timezone`,
		userID, tz)
	if err != nil {
		return fmt.Errorf("set timezone for %s: %w", userID, err)
	}
	return nil
}

func (s *Store) AddSubmission(ctx context.Context, userID, body string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (user_id, body, created_at)
		VALUES (?, ?, ?)`,
		userID, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add submission for %s: %w", userID, err)
	}
	return nil
}
