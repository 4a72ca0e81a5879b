package exposure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// HoldingsRepository handles database operations for ETF holdings
type HoldingsRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHoldingsRepository creates a new holdings repository
func NewHoldingsRepository(db *sql.DB, log zerolog.Logger) *HoldingsRepository {
	return &HoldingsRepository{
		db:  db,
		log: log.With().Str("repo", "etf_holdings").Logger(),
	}
}

// GetAll returns the whole holdings table. The look-through engine works on
// a full in-memory copy per request.
func (r *HoldingsRepository) GetAll(ctx context.Context) ([]HoldingRow, error) {
	query := `SELECT etf_name, etf_code, constituent_name, weight_percent, category FROM etf_holdings`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query etf holdings: %w", err)
	}
	defer rows.Close()

	var out []HoldingRow
	for rows.Next() {
		var h HoldingRow
		if err := rows.Scan(&h.ETFName, &h.ETFCode, &h.ConstituentName, &h.WeightPercent, &h.Category); err != nil {
			return nil, fmt.Errorf("failed to scan holding row: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holding rows: %w", err)
	}
	return out, nil
}

// Insert adds one holding row.
func (r *HoldingsRepository) Insert(ctx context.Context, h *HoldingRow) error {
	query := `
		INSERT INTO etf_holdings (etf_name, etf_code, constituent_name, weight_percent, category)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, h.ETFName, h.ETFCode, h.ConstituentName, h.WeightPercent, h.Category)
	if err != nil {
		return fmt.Errorf("failed to insert holding for %s: %w", h.ETFName, err)
	}
	return nil
}

// ReplaceForETF swaps out all holdings of one ETF atomically.
func (r *HoldingsRepository) ReplaceForETF(ctx context.Context, etfName string, holdings []HoldingRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin holdings transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM etf_holdings WHERE etf_name = ?`, etfName); err != nil {
		return fmt.Errorf("failed to clear holdings for %s: %w", etfName, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO etf_holdings (etf_name, etf_code, constituent_name, weight_percent, category)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare holdings insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range holdings {
		if _, err := stmt.ExecContext(ctx, etfName, h.ETFCode, h.ConstituentName, h.WeightPercent, h.Category); err != nil {
			return fmt.Errorf("failed to insert holding for %s: %w", etfName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings for %s: %w", etfName, err)
	}
	return nil
}
