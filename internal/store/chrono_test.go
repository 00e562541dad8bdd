package store

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection so the in-memory database survives pool churn.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func seedCommunity(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.UpsertCommunity(context.Background(), &CommunityRow{ID: id, Prefix: "!"}))
}

func seedChronos(t *testing.T, s *Store, defs ...ChronoDef) {
	t.Helper()
	require.NoError(t, s.SyncChronos(context.Background(), defs))
}

func TestListDueChronos_HourGateAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedChronos(t, s,
		ChronoDef{Handle: "late", UTCHour: 21},
		ChronoDef{Handle: "early", UTCHour: 3},
		ChronoDef{Handle: "mid", UTCHour: 9},
	)
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))

	// At hour 10 only the 03:00 and 09:00 chronos have reached their target.
	due, err := s.ListDueChronos(ctx, "2026-01-15", 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "early", due[0].Handle)
	assert.Equal(t, "mid", due[1].Handle)

	// At hour 0 nothing is due yet; hour 21 picks up all three.
	due, err = s.ListDueChronos(ctx, "2026-01-15", 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = s.ListDueChronos(ctx, "2026-01-15", 21)
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestListDueChronos_WatermarkExcludesToday(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 9})
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))

	due, err := s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, s.MarkChronoRun(ctx, "g1", "digest", "2026-01-15"))

	// Same day: Done, not Pending.
	due, err = s.ListDueChronos(ctx, "2026-01-15", 23)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Next day the string comparison makes it Pending again.
	due, err = s.ListDueChronos(ctx, "2026-01-16", 12)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestListDueChronos_FeatureGate(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedChronos(t, s, ChronoDef{Handle: "birthday-announce", UTCHour: 7, Feature: "birthdays"})
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))

	// No feature row means disabled.
	due, err := s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, s.SetFeature(ctx, "g1", "birthdays", true))
	due, err = s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	assert.Len(t, due, 1)

	require.NoError(t, s.SetFeature(ctx, "g1", "birthdays", false))
	due, err = s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestListDueChronos_DisabledInstanceExcluded(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 9})
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))

	require.NoError(t, s.SetChronoEnabled(ctx, "g1", "digest", false))
	due, err := s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, s.SetChronoEnabled(ctx, "g1", "digest", true))
	due, err = s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestSetChronoEnabled_MissingInstance(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 9})

	// The chrono definition exists but g1 was never onboarded, so there is
	// no instance row to flip.
	err := s.SetChronoEnabled(ctx, "g1", "digest", false)
	assert.ErrorIs(t, err, ErrChronoInstanceNotFound)

	err = s.SetChronoEnabled(ctx, "g1", "no-such-handle", true)
	assert.ErrorIs(t, err, ErrChronoInstanceNotFound)

	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))
	require.NoError(t, s.SetChronoEnabled(ctx, "g1", "digest", false))
}

func TestListDueChronos_MultipleCommunities(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedCommunity(t, s, "g2")
	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 9})
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))
	require.NoError(t, s.EnsureChronoInstances(ctx, "g2"))

	require.NoError(t, s.MarkChronoRun(ctx, "g1", "digest", "2026-01-15"))

	// The watermark is per (community, chrono): g2 stays Pending.
	due, err := s.ListDueChronos(ctx, "2026-01-15", 12)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "g2", due[0].CommunityID)
}

func TestEnsureChronoInstances_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g1")
	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 9})
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))

	require.NoError(t, s.MarkChronoRun(ctx, "g1", "digest", "2026-01-14"))
	require.NoError(t, s.SetChronoEnabled(ctx, "g1", "digest", false))

	// Re-running onboarding must not reset existing flags or watermarks.
	require.NoError(t, s.EnsureChronoInstances(ctx, "g1"))

	var enabled int
	var lastRun sql.NullString
	row := s.DB().QueryRow(`
		SELECT ci.enabled, ci.last_run FROM chrono_instances ci
		JOIN chronos c ON c.id = ci.chrono_id
		WHERE ci.community_id = 'g1' AND c.handle = 'digest'`)
	require.NoError(t, row.Scan(&enabled, &lastRun))
	assert.Equal(t, 0, enabled)
	assert.Equal(t, "2026-01-14", lastRun.String)
}

func TestSyncChronos_UpdatesExisting(t *testing.T) {
	s := setupStore(t)

	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 9})
	seedChronos(t, s, ChronoDef{Handle: "digest", UTCHour: 11, Feature: "digests"})

	var hour int
	var feature string
	row := s.DB().QueryRow("SELECT utc_hour, feature FROM chronos WHERE handle = 'digest'")
	require.NoError(t, row.Scan(&hour, &feature))
	assert.Equal(t, 11, hour)
	assert.Equal(t, "digests", feature)
}
