package cache

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockSQLBackend(t *testing.T) (*SQLBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLBackend(sqlx.NewDb(db, "mysql")), mock
}

func TestSQLBackendGetMiss(t *testing.T) {
	backend, mock := newMockSQLBackend(t)

	mock.ExpectQuery("SELECT value, created_at, ttl_nanos, access_count FROM cache_entries").
		WithArgs("missing").
		WillReturnError(sqlmock.ErrCancelled)

	_, ok := backend.Get("missing")
	require.False(t, ok)
}

func TestSQLBackendGetHit(t *testing.T) {
	backend, mock := newMockSQLBackend(t)

	createdAt := time.Now().Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"value", "created_at", "ttl_nanos", "access_count"}).
		AddRow([]byte("payload"), createdAt.UnixNano(), int64(time.Hour), int64(0))

	mock.ExpectQuery("SELECT value, created_at, ttl_nanos, access_count FROM cache_entries").
		WithArgs("k").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE cache_entries SET access_count").
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry, ok := backend.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("payload"), entry.Value)
}

func TestSQLBackendSetIssuesUpsert(t *testing.T) {
	backend, mock := newMockSQLBackend(t)

	mock.ExpectExec("INSERT INTO cache_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))

	backend.Set(&Entry{Key: "k", Value: []byte("v"), CreatedAt: time.Now(), TTL: time.Minute})

	require.NoError(t, mock.ExpectationsWereMet())
}
