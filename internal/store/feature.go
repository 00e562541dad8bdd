package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FeatureEnabled reports whether a feature flag is on for a community.
// Absence of a row means disabled.
func (s *Store) FeatureEnabled(ctx context.Context, communityID, feature string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT enabled FROM features WHERE community_id = ? AND feature = ?",
		communityID, feature)

	var enabled int
	err := row.Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read feature %s for %s: %w", feature, communityID, err)
	}
	return enabled != 0, nil
}

func (s *Store) SetFeature(ctx context.Context, communityID, feature string, enabled bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO features (community_id, feature, enabled)
		VALUES (?, ?, ?)
		ON CONFLICT(community_id, feature) DO UPDATE SET enabled = excluded.enabled`,
		communityID, feature, boolToInt(enabled))
	if err != nil {
		return fmt.Errorf("set feature %s for %s: %w", feature, communityID, err)
	}
	return nil
}
