package universe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SecurityRepository handles database operations for securities
type SecurityRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSecurityRepository creates a new security repository
func NewSecurityRepository(db *sql.DB, log zerolog.Logger) *SecurityRepository {
	return &SecurityRepository{
		db:  db,
		log: log.With().Str("repo", "securities").Logger(),
	}
}

const securityColumns = `code, name, category, current_price, dividend_manual,
	dividend_legacy, dividend_auto, ttm_yield, newly_listed_months,
	dividend_history, ex_dividend_day, asset_type, updated_at`

// GetAll returns every security row, ordered by name.
func (r *SecurityRepository) GetAll(ctx context.Context) ([]SecurityRow, error) {
	query := `SELECT ` + securityColumns + ` FROM securities ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query securities: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// GetByCode returns a single security or sql.ErrNoRows.
func (r *SecurityRepository) GetByCode(ctx context.Context, code string) (*SecurityRow, error) {
	query := `SELECT ` + securityColumns + ` FROM securities WHERE code = ?`

	row := r.db.QueryRowContext(ctx, query, code)
	sec, err := r.scanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get security %s: %w", code, err)
	}
	return sec, nil
}

// SearchByName returns rows whose name contains the given fragment.
func (r *SecurityRepository) SearchByName(ctx context.Context, fragment string) ([]SecurityRow, error) {
	query := `SELECT ` + securityColumns + ` FROM securities WHERE name LIKE ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, "%"+fragment+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search securities: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// Upsert inserts or replaces a security row.
func (r *SecurityRepository) Upsert(ctx context.Context, sec *SecurityRow) error {
	query := `
		INSERT INTO securities (` + securityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			current_price = excluded.current_price,
			dividend_manual = excluded.dividend_manual,
			dividend_legacy = excluded.dividend_legacy,
			dividend_auto = excluded.dividend_auto,
			ttm_yield = excluded.ttm_yield,
			newly_listed_months = excluded.newly_listed_months,
			dividend_history = excluded.dividend_history,
			ex_dividend_day = excluded.ex_dividend_day,
			asset_type = excluded.asset_type,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		sec.Code, sec.Name, sec.Category, sec.CurrentPrice, sec.DividendManual,
		sec.DividendLegacy, sec.DividendAuto, sec.TTMYield, sec.NewlyListedMonths,
		sec.DividendHistory, sec.ExDividendDay, sec.AssetType, sec.UpdatedAtUnix)
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", sec.Code, err)
	}
	return nil
}

// UpdateQuote writes the refreshed price/auto/ttm triple for one row.
// The caller is responsible for honoring the lock sentinel before calling.
func (r *SecurityRepository) UpdateQuote(ctx context.Context, code string, price, auto, ttm float64) error {
	query := `
		UPDATE securities
		SET current_price = ?, dividend_auto = ?, ttm_yield = ?, updated_at = ?
		WHERE code = ?`

	result, err := r.db.ExecContext(ctx, query, price, auto, ttm, time.Now().Unix(), code)
	if err != nil {
		return fmt.Errorf("failed to update quote for %s: %w", code, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("security %s not found", code)
	}
	return nil
}

// UpdatePriceAndTTM refreshes price and ttm only, leaving the auto column
// untouched (locked securities).
func (r *SecurityRepository) UpdatePriceAndTTM(ctx context.Context, code string, price, ttm float64) error {
	query := `
		UPDATE securities
		SET current_price = ?, ttm_yield = ?, updated_at = ?
		WHERE code = ?`

	result, err := r.db.ExecContext(ctx, query, price, ttm, time.Now().Unix(), code)
	if err != nil {
		return fmt.Errorf("failed to update price/ttm for %s: %w", code, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("security %s not found", code)
	}
	return nil
}

// SetAuto writes the auto-crawled dividend column directly. Used by the
// lock (-1) and unlock (0) admin operations.
func (r *SecurityRepository) SetAuto(ctx context.Context, code string, auto float64) error {
	query := `UPDATE securities SET dividend_auto = ?, updated_at = ? WHERE code = ?`

	result, err := r.db.ExecContext(ctx, query, auto, time.Now().Unix(), code)
	if err != nil {
		return fmt.Errorf("failed to set auto dividend for %s: %w", code, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("security %s not found", code)
	}
	return nil
}

// UpdateDividendHistory replaces the rolling history string and the manual
// annual figure derived from its sum.
func (r *SecurityRepository) UpdateDividendHistory(ctx context.Context, code, history string, annualSum float64) error {
	query := `
		UPDATE securities
		SET dividend_history = ?, dividend_manual = ?, updated_at = ?
		WHERE code = ?`

	result, err := r.db.ExecContext(ctx, query, history, annualSum, time.Now().Unix(), code)
	if err != nil {
		return fmt.Errorf("failed to update dividend history for %s: %w", code, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("security %s not found", code)
	}
	return nil
}

// Delete removes a security row.
func (r *SecurityRepository) Delete(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM securities WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete security %s: %w", code, err)
	}
	return nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *SecurityRepository) scanRow(s scanner) (*SecurityRow, error) {
	var sec SecurityRow
	err := s.Scan(
		&sec.Code, &sec.Name, &sec.Category, &sec.CurrentPrice, &sec.DividendManual,
		&sec.DividendLegacy, &sec.DividendAuto, &sec.TTMYield, &sec.NewlyListedMonths,
		&sec.DividendHistory, &sec.ExDividendDay, &sec.AssetType, &sec.UpdatedAtUnix)
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

func (r *SecurityRepository) scanRows(rows *sql.Rows) ([]SecurityRow, error) {
	var out []SecurityRow
	for rows.Next() {
		sec, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security row: %w", err)
		}
		out = append(out, *sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate security rows: %w", err)
	}
	return out, nil
}
