// SQL-backed cache backend, adapted from the teacher's internal/database
// helper (a thin sqlx/go-sql-driver-mysql connection opener). Here it grows
// into a full Backend implementation: a shared, persistent cache table that
// multiple confstack processes can read and write, which the file backend
// cannot offer across hosts.
package cache

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// SQLBackend stores entries in a `cache_entries` table:
//
//	CREATE TABLE cache_entries (
//	    cache_key   VARCHAR(255) PRIMARY KEY,
//	    value       MEDIUMBLOB NOT NULL,
//	    created_at  BIGINT NOT NULL,
//	    ttl_nanos   BIGINT NOT NULL,
//	    access_count BIGINT NOT NULL DEFAULT 0
//	)
type SQLBackend struct {
	db *sqlx.DB
}

// OpenSQLBackend opens a MySQL-compatible connection pool the way the
// teacher's database.Open did (15 max open, 5 idle, 30-minute connection
// lifetime), pinging before returning so callers fail fast at startup.
func OpenSQLBackend(dsn string) (*SQLBackend, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return NewSQLBackend(db), nil
}

// NewSQLBackend wraps an already-open *sqlx.DB, allowing tests to inject a
// go-sqlmock-backed connection.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

type sqlRow struct {
	Value       []byte `db:"value"`
	CreatedAt   int64  `db:"created_at"`
	TTLNanos    int64  `db:"ttl_nanos"`
	AccessCount int64  `db:"access_count"`
}

func (s *SQLBackend) Get(key string) (*Entry, bool) {
	var row sqlRow
	err := s.db.Get(&row, `SELECT value, created_at, ttl_nanos, access_count FROM cache_entries WHERE cache_key = ?`, key)
	if err != nil {
		return nil, false
	}

	entry := &Entry{
		Key:       key,
		Value:     row.Value,
		CreatedAt: time.Unix(0, row.CreatedAt),
		TTL:       time.Duration(row.TTLNanos),
		Accesses:  row.AccessCount,
		Size:      int64(len(row.Value)),
	}
	if entry.expired(time.Now()) {
		s.Delete(key)
		return nil, false
	}

	_, _ = s.db.Exec(`UPDATE cache_entries SET access_count = access_count + 1 WHERE cache_key = ?`, key)
	return entry, true
}

func (s *SQLBackend) Set(entry *Entry) {
	_, _ = s.db.Exec(`
		INSERT INTO cache_entries (cache_key, value, created_at, ttl_nanos, access_count)
		VALUES (?, ?, ?, ?, 0)
		ON DUPLICATE KEY UPDATE value = VALUES(value), created_at = VALUES(created_at), ttl_nanos = VALUES(ttl_nanos)`,
		entry.Key, entry.Value, entry.CreatedAt.UnixNano(), int64(entry.TTL))
}

func (s *SQLBackend) Delete(key string) {
	_, _ = s.db.Exec(`DELETE FROM cache_entries WHERE cache_key = ?`, key)
}

func (s *SQLBackend) Clear() {
	_, _ = s.db.Exec(`DELETE FROM cache_entries`)
}

func (s *SQLBackend) Exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Close releases the underlying connection pool.
func (s *SQLBackend) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
