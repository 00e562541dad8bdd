package store

import (
	"context"
	"fmt"
)

type Birthday struct {
	CommunityID string
	UserID      string
	Month       int
	Day         int
}

func (s *Store) SetBirthday(ctx context.Context, b *Birthday) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO birthdays (community_id, user_id, month, day)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(community_id, user_id) DO UPDATE SET
			month = excluded.month,
			day   = excluded.day`,
		b.CommunityID, b.UserID, b.Month, b.Day)
	if err != nil {
		return fmt.Errorf("set birthday for %s: %w", b.UserID, err)
	}
	return nil
}

// BirthdaysOn returns user IDs with a birthday on the given calendar day in
// one community.
func (s *Store) BirthdaysOn(ctx context.Context, communityID string, month, day int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM birthdays
		WHERE community_id = ? AND month = ? AND day = ?
		ORDER BY user_id`,
		communityID, month, day)
	if err != nil {
		return nil, fmt.Errorf("query birthdays: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan birthday row: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
