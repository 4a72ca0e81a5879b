package recommendation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Schema is the DDL for stored recommendations in cache.db.
const Schema = `
CREATE TABLE IF NOT EXISTS recommendations (
    id         TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    created_at INTEGER NOT NULL
);
`

// Repository persists produced recommendations so a result can be shared or
// re-opened later.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a recommendation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "recommendations").Logger(),
	}
}

// Save stores a result and returns its generated id.
func (r *Repository) Save(ctx context.Context, result *Result) (string, error) {
	id := uuid.New().String()
	result.ID = id

	payload, err := msgpack.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode recommendation: %w", err)
	}

	query := `INSERT INTO recommendations (id, payload, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, payload, time.Now().Unix()); err != nil {
		return "", fmt.Errorf("failed to store recommendation: %w", err)
	}
	return id, nil
}

// Get loads a stored result by id, or sql.ErrNoRows.
func (r *Repository) Get(ctx context.Context, id string) (*Result, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM recommendations WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recommendation %s: %w", id, err)
	}

	var result Result
	if err := msgpack.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation %s: %w", id, err)
	}
	return &result, nil
}
