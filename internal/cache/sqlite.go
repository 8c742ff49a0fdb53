package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/medishare/medlabel/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS extraction_cache (
	key        TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_cache_expires ON extraction_cache(expires_at);
`

// SQLite is a file-backed Store that survives process restarts. Records are
// stored as JSON; expiry is a unix timestamp checked on read.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (entity.Record, bool, error) {
	var (
		raw       string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT record, expires_at FROM extraction_cache WHERE key = ?`, key,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Record{}, false, nil
	}
	if err != nil {
		return entity.Record{}, false, fmt.Errorf("cache get: %w", err)
	}
	if s.now().Unix() > expiresAt {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM extraction_cache WHERE key = ?`, key)
		return entity.Record{}, false, nil
	}
	var rec entity.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return entity.Record{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return rec, true, nil
}

func (s *SQLite) Put(ctx context.Context, key string, rec entity.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extraction_cache (key, record, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record, expires_at = excluded.expires_at`,
		key, string(raw), s.now().Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	// sweep anything already past its deadline
	_, _ = s.db.ExecContext(ctx, `DELETE FROM extraction_cache WHERE expires_at < ?`, s.now().Unix())
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
