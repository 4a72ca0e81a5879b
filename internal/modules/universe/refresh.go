package universe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/broadcast777/my-dividend-app/internal/clients/quotes"
	"github.com/rs/zerolog"
)

// ProgressFunc is invoked after each refreshed row. It runs on worker
// goroutines and must not block.
type ProgressFunc func(done, total int, row RefreshRowResult)

// Refresher runs the batch smart update over the security universe.
type Refresher struct {
	repo       *SecurityRepository
	fetcher    quotes.Fetcher
	numWorkers int
	log        zerolog.Logger
}

// NewRefresher creates a batch refresher.
func NewRefresher(repo *SecurityRepository, fetcher quotes.Fetcher, numWorkers int, log zerolog.Logger) *Refresher {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	return &Refresher{
		repo:       repo,
		fetcher:    fetcher,
		numWorkers: numWorkers,
		log:        log.With().Str("component", "refresher").Logger(),
	}
}

// RefreshAll runs the smart update over every stored security, or only
// those whose name contains nameFilter when it is non-empty.
//
// Per row: newly-listed securities are skipped outright (their manual
// annualization is authoritative), locked securities get price and TTM only,
// everything else gets price, auto and TTM. Rows are independent; failures
// are collected, never propagated. Cancellation is cooperative - no new row
// starts after ctx is done, and no row is left partially updated.
func (rf *Refresher) RefreshAll(ctx context.Context, nameFilter string, progress ProgressFunc) (*RefreshSummary, error) {
	rows, err := rf.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if nameFilter != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if strings.Contains(row.Name, nameFilter) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	n := len(rows)
	summary := &RefreshSummary{Total: n, Rows: make([]RefreshRowResult, n)}
	if n == 0 {
		return summary, nil
	}

	jobs := make(chan int, n)
	var (
		wg      sync.WaitGroup
		done    int64
		stopped int64
	)

	numWorkers := rf.numWorkers
	if n < numWorkers {
		numWorkers = n
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				// Stop-after-current-row checkpoint.
				select {
				case <-ctx.Done():
					atomic.StoreInt64(&stopped, 1)
					summary.Rows[idx] = RefreshRowResult{
						Code:    rows[idx].Code,
						Name:    rows[idx].Name,
						Skipped: "stopped",
					}
					continue
				default:
				}

				result := rf.refreshRow(ctx, &rows[idx])
				summary.Rows[idx] = result

				if progress != nil {
					progress(int(atomic.AddInt64(&done, 1)), n, result)
				}
			}
		}()
	}

	for idx := 0; idx < n; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	summary.Stopped = atomic.LoadInt64(&stopped) == 1
	for _, row := range summary.Rows {
		switch {
		case row.Err != "":
			summary.Failed++
		case row.Updated:
			summary.Updated++
		default:
			summary.Skipped++
		}
	}

	rf.log.Info().
		Int("total", summary.Total).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("stopped", summary.Stopped).
		Msg("Batch refresh finished")

	return summary, nil
}

func (rf *Refresher) refreshRow(ctx context.Context, row *SecurityRow) RefreshRowResult {
	result := RefreshRowResult{Code: row.Code, Name: row.Name}

	if row.NewlyListedMonths > 0 && row.NewlyListedMonths < 12 {
		result.Skipped = "newly listed"
		return result
	}

	price, _, err := rf.fetcher.FetchPrice(ctx, row.Code, row.Category)
	if err != nil || price == nil {
		result.Err = "price lookup failed"
		rf.log.Warn().Err(err).Str("code", row.Code).Msg("Refresh price lookup failed")
		return result
	}

	snap, err := rf.fetcher.FetchDividends(ctx, row.Code, row.Category)
	if err != nil {
		result.Err = "dividend lookup failed"
		rf.log.Warn().Err(err).Str("code", row.Code).Msg("Refresh dividend lookup failed")
		return result
	}

	// TTM always refreshes when a positive figure came back; a zero keeps
	// the stored value.
	ttm := row.TTMYield
	if snap.TTMYield > 0 {
		ttm = snap.TTMYield
	}

	if row.Locked() {
		if err := rf.repo.UpdatePriceAndTTM(ctx, row.Code, *price, ttm); err != nil {
			result.Err = err.Error()
			return result
		}
		result.Updated = true
		result.Skipped = "auto locked"
		return result
	}

	auto := row.DividendAuto
	if snap.AnnualAmount > 0 {
		auto = snap.AnnualAmount
	}

	if err := rf.repo.UpdateQuote(ctx, row.Code, *price, auto, ttm); err != nil {
		result.Err = err.Error()
		return result
	}
	result.Updated = true
	return result
}
