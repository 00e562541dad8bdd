package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunityRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.GetCommunity(ctx, "g1")
	assert.ErrorIs(t, err, ErrCommunityNotFound)

	row := &CommunityRow{
		ID:                "g1",
		Prefix:            "p!",
		AdminRoleID:       "mods",
		OperatorChannelID: "ops",
		AnnounceChannelID: "general",
		Timezone:          "Europe/Amsterdam",
	}
	require.NoError(t, s.UpsertCommunity(ctx, row))

	got, err := s.GetCommunity(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, row, got)

	// Upsert replaces in place.
	row.Prefix = "!"
	require.NoError(t, s.UpsertCommunity(ctx, row))
	got, err = s.GetCommunity(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "!", got.Prefix)
}

func TestSetPrefix(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	assert.ErrorIs(t, s.SetPrefix(ctx, "missing", "!"), ErrCommunityNotFound)

	seedCommunity(t, s, "g1")
	require.NoError(t, s.SetPrefix(ctx, "g1", "b?"))

	got, err := s.GetCommunity(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "b?", got.Prefix)
}

func TestListAndRemoveCommunities(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	seedCommunity(t, s, "g2")
	seedCommunity(t, s, "g1")

	ids, err := s.ListCommunityIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, ids)

	require.NoError(t, s.RemoveCommunity(ctx, "g1"))
	ids, err = s.ListCommunityIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2"}, ids)
}

func TestFeatureFlags(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	enabled, err := s.FeatureEnabled(ctx, "g1", "birthdays")
	require.NoError(t, err)
	assert.False(t, enabled, "absent row means disabled")

	require.NoError(t, s.SetFeature(ctx, "g1", "birthdays", true))
	enabled, err = s.FeatureEnabled(ctx, "g1", "birthdays")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.SetFeature(ctx, "g1", "birthdays", false))
	enabled, err = s.FeatureEnabled(ctx, "g1", "birthdays")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestDMSessions(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, ok, err := s.GetDMSession(ctx, "u1", "timezone")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutDMSession(ctx, "u1", "timezone", `{"step":"asked"}`))
	state, ok, err := s.GetDMSession(ctx, "u1", "timezone")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"step":"asked"}`, state)

	// Sessions are keyed per flow.
	_, ok, err = s.GetDMSession(ctx, "u1", "submit")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.DeleteDMSession(ctx, "u1", "timezone"))
	_, ok, err = s.GetDMSession(ctx, "u1", "timezone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBirthdays(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	require.NoError(t, s.SetBirthday(ctx, &Birthday{CommunityID: "g1", UserID: "u2", Month: 12, Day: 5}))
	require.NoError(t, s.SetBirthday(ctx, &Birthday{CommunityID: "g1", UserID: "u1", Month: 12, Day: 5}))
	require.NoError(t, s.SetBirthday(ctx, &Birthday{CommunityID: "g1", UserID: "u3", Month: 1, Day: 1}))
	require.NoError(t, s.SetBirthday(ctx, &Birthday{CommunityID: "g2", UserID: "u4", Month: 12, Day: 5}))

	users, err := s.BirthdaysOn(ctx, "g1", 12, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)

	// Re-setting moves the date.
	require.NoError(t, s.SetBirthday(ctx, &Birthday{CommunityID: "g1", UserID: "u1", Month: 6, Day: 30}))
	users, err = s.BirthdaysOn(ctx, "g1", 12, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, users)
}
