package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrCommunityNotFound is returned when a community row does not exist.
var ErrCommunityNotFound = errors.New("community not found")

// CommunityRow is the persisted per-community configuration.
type CommunityRow struct {
	ID                string
	Prefix            string
	AdminRoleID       string
	OperatorChannelID string
	AnnounceChannelID string
	Timezone          string // IANA name used for member-facing date rendering
}

const communityColumns = "id, prefix, admin_role_id, operator_channel_id, announce_channel_id, timezone"

func (c *CommunityRow) timezoneOrUTC() string {
	if c.Timezone == "" {
		return "UTC"
	}
	return c.Timezone
}

func (s *Store) GetCommunity(ctx context.Context, id string) (*CommunityRow, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+communityColumns+" FROM communities WHERE id = ?", id)

	var c CommunityRow
	err := row.Scan(&c.ID, &c.Prefix, &c.AdminRoleID, &c.OperatorChannelID, &c.AnnounceChannelID, &c.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read community %s: %w", id, err)
	}
	return &c, nil
}

// UpsertCommunity creates or replaces a community configuration row.
func (s *Store) UpsertCommunity(ctx context.Context, c *CommunityRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO communities (`+communityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			prefix              = excluded.prefix,
			admin_role_id       = excluded.admin_role_id,
			operator_channel_id = excluded.operator_channel_id,
			announce_channel_id = excluded.announce_channel_id,
			timezone            = excluded.timezone`,
		c.ID, c.Prefix, c.AdminRoleID, c.OperatorChannelID, c.AnnounceChannelID, c.timezoneOrUTC())
	if err != nil {
		return fmt.Errorf("upsert community %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) SetPrefix(ctx context.Context, communityID, prefix string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE communities SET prefix = ? WHERE id = ?", prefix, communityID)
	if err != nil {
		return fmt.Errorf("set prefix for %s: %w", communityID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCommunityNotFound
	}
	return nil
}

func (s *Store) ListCommunityIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM communities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan community id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) RemoveCommunity(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM communities WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove community %s: %w", id, err)
	}
	return nil
}
