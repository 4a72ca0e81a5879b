// Package quotes provides price and dividend lookups for domestic and
// overseas securities. Failures degrade to typed errors; callers decide
// whether to substitute sentinels.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Category values accepted by the client.
const (
	CategoryDomestic = "domestic"
	CategoryForeign  = "foreign"
)

// DividendSnapshot is the result of a batch-refresh lookup for one security.
type DividendSnapshot struct {
	// AnnualAmount is the forward-annualized dividend (latest payment x 12
	// for monthly payers). Zero when no payment data was found.
	AnnualAmount float64
	// TTMYield is the trailing-twelve-month yield in percent, derived from
	// actual distributions over the past 365 days.
	TTMYield float64
}

// Fetcher is the lookup capability the universe module consumes.
type Fetcher interface {
	FetchPrice(ctx context.Context, code, category string) (*float64, string, error)
	FetchDividends(ctx context.Context, code, category string) (*DividendSnapshot, error)
}

// Config holds client tuning knobs.
type Config struct {
	DomesticBaseURL string
	OverseasBaseURL string
	MaxRetries      int
	RetryBackoff    time.Duration
	Timeout         time.Duration
	// DivergenceThreshold is the TTM-vs-forward gap (percentage points)
	// above which the forward figure wins for overseas securities. Large
	// gaps usually mean a special dividend is distorting the trailing sum.
	DivergenceThreshold float64
}

// Client fetches quotes over HTTP.
type Client struct {
	client *http.Client
	cfg    Config
	log    zerolog.Logger
}

// NewClient creates a quotes client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 300 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log.With().Str("client", "quotes").Logger(),
	}
}

// FetchPrice returns the current price for (code, category) plus a source tag.
// Retries are bounded with a fixed backoff; a nil price with nil error never
// occurs - failure is always an error after the retry budget is spent.
func (c *Client) FetchPrice(ctx context.Context, code, category string) (*float64, string, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(c.cfg.RetryBackoff):
			}
		}

		var (
			price float64
			tag   string
			err   error
		)
		if category == CategoryForeign {
			price, err = c.overseasPrice(ctx, code)
			tag = "overseas"
		} else {
			price, err = c.domesticPrice(ctx, code)
			tag = "domestic"
		}
		if err != nil {
			lastErr = err
			c.log.Warn().Err(err).
				Str("code", code).
				Int("attempt", attempt+1).
				Msg("Price lookup failed, retrying")
			continue
		}
		if price <= 0 {
			lastErr = fmt.Errorf("non-positive price %f for %s", price, code)
			continue
		}
		return &price, tag, nil
	}
	return nil, "", fmt.Errorf("failed to fetch price for %s after %d attempts: %w", code, c.cfg.MaxRetries, lastErr)
}

// FetchDividends returns the refresh snapshot for (code, category).
func (c *Client) FetchDividends(ctx context.Context, code, category string) (*DividendSnapshot, error) {
	if category == CategoryForeign {
		return c.overseasDividends(ctx, code)
	}
	return c.domesticDividends(ctx, code)
}

// --- domestic sensor ---

type domesticBasicResponse struct {
	ClosePrice   json.Number `json:"closePrice"`
	NowVal       json.Number `json:"nowVal"`
	ItemName     string      `json:"itemname"`
	StockEndType string      `json:"stockEndType"`
}

type domesticDividendItem map[string]interface{}

type domesticDividendResponse struct {
	Dividends []domesticDividendItem `json:"dividends"`
	Items     []domesticDividendItem `json:"items"`
}

func (c *Client) domesticPrice(ctx context.Context, code string) (float64, error) {
	var resp domesticBasicResponse
	url := fmt.Sprintf("%s/etf/%s/basic", c.cfg.DomesticBaseURL, code)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return 0, err
	}

	if v, err := resp.ClosePrice.Float64(); err == nil && v > 0 {
		return v, nil
	}
	if v, err := resp.NowVal.Float64(); err == nil && v > 0 {
		return v, nil
	}
	return 0, fmt.Errorf("no usable price field for %s", code)
}

// domesticDividends derives the forward figure from the most recent payment
// (x12, monthly payers) and the TTM yield from the trailing 365-day sum.
func (c *Client) domesticDividends(ctx context.Context, code string) (*DividendSnapshot, error) {
	price, err := c.domesticPrice(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price for dividend snapshot: %w", err)
	}

	var resp domesticDividendResponse
	url := fmt.Sprintf("%s/etf/%s/dividend", c.cfg.DomesticBaseURL, code)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	items := resp.Dividends
	if len(items) == 0 {
		items = resp.Items
	}
	if len(items) == 0 {
		return &DividendSnapshot{}, nil
	}

	cutoff := time.Now().AddDate(-1, 0, 0)
	var (
		latest   float64
		ttmSum   float64
		haveLate bool
	)
	for _, item := range items {
		amount := dividendAmount(item)
		if amount <= 0 {
			continue
		}
		if !haveLate {
			// Provider lists newest first.
			latest = amount
			haveLate = true
		}
		if when, ok := dividendDate(item); ok && when.After(cutoff) {
			ttmSum += amount
		}
	}

	snap := &DividendSnapshot{AnnualAmount: latest * 12}
	if price > 0 && ttmSum > 0 {
		snap.TTMYield = ttmSum / price * 100
	}
	return snap, nil
}

// dividendAmount resolves the payment amount across the provider's shifting
// field names.
func dividendAmount(item domesticDividendItem) float64 {
	for _, key := range []string{"dividendAmount", "dividend", "distribution", "amount", "value", "payAmount"} {
		if v, ok := item[key]; ok {
			if f, ok := toFloat(v); ok && f > 0 {
				return f
			}
		}
	}
	return 0
}

func dividendDate(item domesticDividendItem) (time.Time, bool) {
	for _, key := range []string{"paymentDate", "exDividendDate", "date", "baseDate"} {
		if v, ok := item[key]; ok {
			if s, ok := v.(string); ok {
				for _, layout := range []string{"2006-01-02", "2006.01.02", "20060102"} {
					if t, err := time.Parse(layout, s); err == nil {
						return t, true
					}
				}
			}
		}
	}
	return time.Time{}, false
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// --- overseas sensor ---

type overseasQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

func (c *Client) overseasQuote(ctx context.Context, code string) (map[string]interface{}, error) {
	var resp overseasQuoteResponse
	url := fmt.Sprintf("%s/v7/finance/quote?symbols=%s&fields=regularMarketPrice,trailingAnnualDividendRate,trailingAnnualDividendYield,dividendRate,dividendYield", c.cfg.OverseasBaseURL, code)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote API error for %s: %v", code, resp.QuoteResponse.Error)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for %s", code)
	}
	return resp.QuoteResponse.Result[0], nil
}

func (c *Client) overseasPrice(ctx context.Context, code string) (float64, error) {
	info, err := c.overseasQuote(ctx, code)
	if err != nil {
		return 0, err
	}
	if price, ok := toFloat(info["regularMarketPrice"]); ok && price > 0 {
		return price, nil
	}
	return 0, fmt.Errorf("no usable price field for %s", code)
}

// overseasDividends compares the trailing sum against the forward-annualized
// rate. When the two yields diverge by more than the configured threshold the
// forward figure wins.
func (c *Client) overseasDividends(ctx context.Context, code string) (*DividendSnapshot, error) {
	info, err := c.overseasQuote(ctx, code)
	if err != nil {
		return nil, err
	}

	price, _ := toFloat(info["regularMarketPrice"])
	ttmRate, _ := toFloat(info["trailingAnnualDividendRate"])
	fwdRate, _ := toFloat(info["dividendRate"])

	var ttmYield, fwdYield float64
	if price > 0 {
		ttmYield = ttmRate / price * 100
		fwdYield = fwdRate / price * 100
	}

	annual := ttmRate
	if fwdRate > 0 && ttmRate > 0 && math.Abs(ttmYield-fwdYield) > c.cfg.DivergenceThreshold {
		c.log.Debug().
			Str("code", code).
			Float64("ttm_yield", ttmYield).
			Float64("fwd_yield", fwdYield).
			Msg("Yield divergence above threshold, using forward rate")
		annual = fwdRate
	} else if ttmRate <= 0 {
		annual = fwdRate
	}

	return &DividendSnapshot{AnnualAmount: annual, TTMYield: ttmYield}, nil
}

// --- transport ---

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("quote source returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
