package store

import "fmt"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS communities (
		id                  TEXT PRIMARY KEY,
		prefix              TEXT NOT NULL DEFAULT '!',
		admin_role_id       TEXT NOT NULL DEFAULT '',
		operator_channel_id TEXT NOT NULL DEFAULT '',
		announce_channel_id TEXT NOT NULL DEFAULT '',
		timezone            TEXT NOT NULL DEFAULT 'UTC'
	)`,
	`CREATE TABLE IF NOT EXISTS chronos (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		handle   TEXT NOT NULL UNIQUE,
		utc_hour INTEGER NOT NULL,
		feature  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS chrono_instances (
		community_id TEXT NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
		chrono_id    INTEGER NOT NULL REFERENCES chronos(id),
		enabled      INTEGER NOT NULL DEFAULT 1,
		last_run     TEXT,
		PRIMARY KEY (community_id, chrono_id)
	)`,
	`CREATE TABLE IF NOT EXISTS features (
		community_id TEXT NOT NULL,
		feature      TEXT NOT NULL,
		enabled      INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (community_id, feature)
	)`,
	`CREATE TABLE IF NOT EXISTS dm_sessions (
		user_id    TEXT NOT NULL,
		flow       TEXT NOT NULL,
		state      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, flow)
	)`,
	`CREATE TABLE IF NOT EXISTS birthdays (
		community_id TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		month        INTEGER NOT NULL,
		day          INTEGER NOT NULL,
		PRIMARY KEY (community_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS member_timezones (
		user_id  TEXT PRIMARY KEY,
		timezone TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// Migrate applies the schema. Statements are idempotent so Migrate is safe
// to run at every startup.
func (s *Store) Migrate() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
