package universe

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/broadcast777/my-dividend-app/internal/clients/quotes"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned prices and dividend snapshots, tracking calls.
type fakeFetcher struct {
	mu        sync.Mutex
	prices    map[string]float64
	dividends map[string]quotes.DividendSnapshot
	failCodes map[string]bool
	calls     int
}

func (f *fakeFetcher) FetchPrice(ctx context.Context, code, category string) (*float64, string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failCodes[code] {
		return nil, "", fmt.Errorf("lookup failed for %s", code)
	}
	price, ok := f.prices[code]
	if !ok {
		return nil, "", fmt.Errorf("unknown code %s", code)
	}
	return &price, "fake", nil
}

func (f *fakeFetcher) FetchDividends(ctx context.Context, code, category string) (*quotes.DividendSnapshot, error) {
	if f.failCodes[code] {
		return nil, fmt.Errorf("lookup failed for %s", code)
	}
	snap := f.dividends[code]
	return &snap, nil
}

func TestEnrichBatch_ParallelResolution(t *testing.T) {
	fetcher := &fakeFetcher{
		prices: map[string]float64{
			"A00001": 10000,
			"A00002": 20000,
			"A00003": 5000,
		},
	}
	enricher := NewEnricher(fetcher, 4, zerolog.Nop())

	rows := []SecurityRow{
		{Code: "A00001", Name: "저배당", DividendAuto: 300},  // 3%
		{Code: "A00002", Name: "고배당", DividendAuto: 1600}, // 8%
		{Code: "A00003", Name: "중배당", DividendAuto: 250},  // 5%
	}

	resolved := enricher.EnrichBatch(context.Background(), rows)
	require.Len(t, resolved, 3)

	// Sorted by yield descending.
	assert.Equal(t, "A00002", resolved[0].Code)
	assert.Equal(t, "A00003", resolved[1].Code)
	assert.Equal(t, "A00001", resolved[2].Code)
	assert.InDelta(t, 8.0, resolved[0].YieldPercent, 1e-9)
}

func TestEnrichBatch_FailureDegradesToStoredPrice(t *testing.T) {
	fetcher := &fakeFetcher{
		prices:    map[string]float64{"A00001": 10000},
		failCodes: map[string]bool{"A00002": true},
	}
	enricher := NewEnricher(fetcher, 2, zerolog.Nop())

	rows := []SecurityRow{
		{Code: "A00001", Name: "정상", DividendAuto: 500},
		{Code: "A00002", Name: "실패", DividendAuto: 500}, // no stored price
	}

	resolved := enricher.EnrichBatch(context.Background(), rows)
	require.Len(t, resolved, 2)

	var failed *ResolvedSecurity
	for i := range resolved {
		if resolved[i].Code == "A00002" {
			failed = &resolved[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, 0.0, failed.CurrentPrice)
	assert.Equal(t, 0.0, failed.YieldPercent)
}

func TestEnrichBatch_EmptyInput(t *testing.T) {
	enricher := NewEnricher(&fakeFetcher{}, 10, zerolog.Nop())
	resolved := enricher.EnrichBatch(context.Background(), nil)
	assert.Empty(t, resolved)
}

func TestEnrichBatch_WorkerBound(t *testing.T) {
	prices := make(map[string]float64)
	rows := make([]SecurityRow, 50)
	for i := range rows {
		code := fmt.Sprintf("A%05d", i)
		prices[code] = 10000
		rows[i] = SecurityRow{Code: code, Name: code, DividendAuto: 500}
	}

	fetcher := &fakeFetcher{prices: prices}
	enricher := NewEnricher(fetcher, 10, zerolog.Nop())

	resolved := enricher.EnrichBatch(context.Background(), rows)
	assert.Len(t, resolved, 50)
	assert.Equal(t, 50, fetcher.calls)
}
