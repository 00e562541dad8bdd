package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrChronoInstanceNotFound is returned when an enable/disable targets a
// (community, chrono) pair with no instance row.
var ErrChronoInstanceNotFound = errors.New("chrono instance not found")

// ChronoDef mirrors one in-process chrono definition for syncing into the
// chronos table, which the due-instance join reads.
type ChronoDef struct {
	Handle  string
	UTCHour int
	Feature string
}

// DueChrono is one (community, chrono) pair currently eligible to run.
type DueChrono struct {
	CommunityID string
	Handle      string
	UTCHour     int
}

// SyncChronos upserts the registry's definitions so instance rows can join
// against target hour and required feature.
func (s *Store) SyncChronos(ctx context.Context, defs []ChronoDef) error {
	for _, def := range defs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO chronos (handle, utc_hour, feature)
			VALUES (?, ?, ?)
			ON CONFLICT(handle) DO UPDATE SET
				utc_hour = excluded.utc_hour,
				feature  = excluded.feature`,
			def.Handle, def.UTCHour, def.Feature)
		if err != nil {
			return fmt.Errorf("sync chrono %s: %w", def.Handle, err)
		}
	}
	return nil
}

// EnsureChronoInstances creates missing (community, chrono) instance rows for
// every known definition. Existing rows keep their enabled flag and
// watermark.
func (s *Store) EnsureChronoInstances(ctx context.Context, communityID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chrono_instances (community_id, chrono_id, enabled)
		SELECT ?, id, 1 FROM chronos`, communityID)
	if err != nil {
		return fmt.Errorf("ensure chrono instances for %s: %w", communityID, err)
	}
	return nil
}

const dueChronosQuery = `
	SELECT ci.community_id, c.handle, c.utc_hour
	FROM chrono_instances ci
	JOIN chronos c ON c.id = ci.chrono_id
	LEFT JOIN features f
		ON f.community_id = ci.community_id AND f.feature = c.feature
	WHERE ci.enabled = 1
	  AND (ci.last_run IS NULL OR ci.last_run < ?)
	  AND c.utc_hour <= ?
	  AND (c.feature = '' OR COALESCE(f.enabled, 0) = 1)
	ORDER BY c.utc_hour ASC`

// ListDueChronos returns every (community, chrono) pair whose watermark is
// before today, whose target UTC hour has been reached, and whose enablement
// and feature gates pass. Rows come back in ascending target-hour order.
// today is a UTC calendar date formatted "2006-01-02"; utcHour the current
// UTC hour.
func (s *Store) ListDueChronos(ctx context.Context, today string, utcHour int) ([]DueChrono, error) {
	rows, err := s.db.QueryContext(ctx, dueChronosQuery, today, utcHour)
	if err != nil {
		return nil, fmt.Errorf("query due chronos: %w", err)
	}
	defer rows.Close()

	var due []DueChrono
	for rows.Next() {
		var d DueChrono
		if err := rows.Scan(&d.CommunityID, &d.Handle, &d.UTCHour); err != nil {
			return nil, fmt.Errorf("scan due chrono: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// MarkChronoRun writes the watermark: the sole Pending -> Done transition.
func (s *Store) MarkChronoRun(ctx context.Context, communityID, handle, day string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE chrono_instances SET last_run = ?
		WHERE community_id = ?
		  AND chrono_id = (SELECT id FROM chronos WHERE handle = ?)`,
		day, communityID, handle)
	if err != nil {
		return fmt.Errorf("mark chrono %s run for %s: %w", handle, communityID, err)
	}
	return nil
}

// SetChronoEnabled flips a single instance's enabled flag.
func (s *Store) SetChronoEnabled(ctx context.Context, communityID, handle string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chrono_instances SET enabled = ?
		WHERE community_id = ?
		  AND chrono_id = (SELECT id FROM chronos WHERE handle = ?)`,
		boolToInt(enabled), communityID, handle)
	if err != nil {
		return fmt.Errorf("set chrono %s enabled for %s: %w", handle, communityID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrChronoInstanceNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
