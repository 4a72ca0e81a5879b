package universe

import (
	"context"
	"sort"
	"sync"

	"github.com/broadcast777/my-dividend-app/internal/clients/quotes"
	"github.com/rs/zerolog"
)

// Enricher resolves stored rows and fills live prices in parallel.
type Enricher struct {
	fetcher    quotes.Fetcher
	numWorkers int
	log        zerolog.Logger
}

// NewEnricher creates an enricher with a bounded worker pool.
func NewEnricher(fetcher quotes.Fetcher, numWorkers int, log zerolog.Logger) *Enricher {
	if numWorkers <= 0 {
		numWorkers = 10 // Default to 10 workers
	}
	return &Enricher{
		fetcher:    fetcher,
		numWorkers: numWorkers,
		log:        log.With().Str("component", "enricher").Logger(),
	}
}

// EnrichBatch fetches a live price for every row and resolves it. Rows are
// independent; one row's lookup failure degrades that row to a zero price
// and zero yield instead of failing the batch. Results are returned sorted
// by yield descending.
func (e *Enricher) EnrichBatch(ctx context.Context, securities []SecurityRow) []ResolvedSecurity {
	n := len(securities)
	if n == 0 {
		return []ResolvedSecurity{}
	}

	jobs := make(chan enrichJob, n)
	results := make(chan enrichResult, n)

	var wg sync.WaitGroup
	numWorkers := e.numWorkers
	if n < numWorkers {
		numWorkers = n
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, jobs, results)
		}()
	}

	for idx := range securities {
		jobs <- enrichJob{index: idx, row: securities[idx]}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Pre-indexed slots: the fan-in needs no ordering guarantee.
	resolved := make([]ResolvedSecurity, n)
	for result := range results {
		resolved[result.index] = result.resolved
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].YieldPercent > resolved[j].YieldPercent
	})

	return resolved
}

type enrichJob struct {
	index int
	row   SecurityRow
}

type enrichResult struct {
	index    int
	resolved ResolvedSecurity
}

func (e *Enricher) worker(ctx context.Context, jobs <-chan enrichJob, results chan<- enrichResult) {
	for job := range jobs {
		row := job.row

		price, _, err := e.fetcher.FetchPrice(ctx, row.Code, row.Category)
		if err != nil {
			// Degrade to the stored price; zero stored price means zero yield.
			e.log.Warn().Err(err).
				Str("code", row.Code).
				Msg("Price lookup failed, using stored price")
		} else if price != nil {
			row.CurrentPrice = *price
		}

		results <- enrichResult{index: job.index, resolved: Resolve(&row)}
	}
}
