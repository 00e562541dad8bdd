package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Driver-level failures are awkward to provoke on a real database; sqlmock
// covers the error propagation paths.

func TestListDueChronos_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("database is locked")
	mock.ExpectQuery("SELECT ci.community_id").WillReturnError(dbErr)

	s := New(db)
	_, err = s.ListDueChronos(context.Background(), "2026-01-15", 10)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkChronoRun_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("disk I/O error")
	mock.ExpectExec("UPDATE chrono_instances").WillReturnError(dbErr)

	s := New(db)
	err = s.MarkChronoRun(context.Background(), "g1", "digest", "2026-01-15")
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCommunity_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT id, prefix").WillReturnError(dbErr)

	s := New(db)
	_, err = s.GetCommunity(context.Background(), "g1")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrCommunityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
