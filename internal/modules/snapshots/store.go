// Package snapshots caches expensive query results (the resolved security
// universe) as msgpack blobs with a staleness window.
package snapshots

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Schema is the DDL for the snapshots table in cache.db.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    key        TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    created_at INTEGER NOT NULL
);
`

// Store reads and writes msgpack-encoded snapshots.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	log zerolog.Logger
}

// NewStore creates a snapshot store. TTL bounds how stale a snapshot may be
// before Get treats it as missing.
func NewStore(db *sql.DB, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		ttl: ttl,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Put encodes value and stores it under key, replacing any previous snapshot.
func (s *Store) Put(ctx context.Context, key string, value interface{}) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}

	query := `
		INSERT INTO snapshots (key, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`

	if _, err := s.db.ExecContext(ctx, query, key, payload, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}
	return nil
}

// Get decodes the snapshot under key into out. Returns false when the key is
// absent or older than the TTL.
func (s *Store) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	var (
		payload   []byte
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM snapshots WHERE key = ?`, key).
		Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}

	if s.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > s.ttl {
		return false, nil
	}

	if err := msgpack.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return true, nil
}

// Invalidate removes the snapshot under key, if any.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to invalidate snapshot %s: %w", key, err)
	}
	return nil
}
