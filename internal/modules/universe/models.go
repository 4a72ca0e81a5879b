// Package universe manages the security universe: raw rows, the dividend
// priority resolver, asset classification, parallel enrichment and the
// batch smart refresh.
package universe

// Lock sentinel for the auto-crawled dividend column. A locked security is
// never touched by batch refresh until explicitly unlocked.
const AutoLocked = -1.0

// Dividend source tags, one per resolver rule.
const (
	SourceNewlyListed = "newly_listed"
	SourceAuto        = "auto"
	SourceTTM         = "ttm"
	SourceManual      = "manual"
	SourceLegacy      = "legacy"
)

// Category values for securities.
const (
	CategoryDomestic = "domestic"
	CategoryForeign  = "foreign"
)

// SecurityRow is one stored row of the universe table, before resolution.
type SecurityRow struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	CurrentPrice      float64 `json:"current_price"`
	DividendManual    float64 `json:"dividend_manual"`
	DividendLegacy    float64 `json:"dividend_legacy"`
	DividendAuto      float64 `json:"dividend_auto"`
	TTMYield          float64 `json:"ttm_yield"`
	NewlyListedMonths int     `json:"newly_listed_months"`
	DividendHistory   string  `json:"dividend_history"` // pipe-joined, oldest first, max 12
	ExDividendDay     string  `json:"ex_dividend_day"`  // free-text timing descriptor
	AssetType         string  `json:"asset_type"`
	UpdatedAtUnix     int64   `json:"updated_at"`
}

// Locked reports whether batch refresh must leave the auto column alone.
func (r *SecurityRow) Locked() bool {
	return r.DividendAuto == AutoLocked
}

// ResolvedSecurity is a SecurityRow after priority resolution and
// classification, the shape every downstream consumer sees.
type ResolvedSecurity struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	DisplayName    string  `json:"display_name"`
	Category       string  `json:"category"`
	CurrentPrice   float64 `json:"current_price"`
	AnnualDividend float64 `json:"annual_dividend"`
	YieldPercent   float64 `json:"yield_percent"`
	Source         string  `json:"source"`
	AssetType      string  `json:"asset_type"`
	HedgeStatus    string  `json:"hedge_status"`
	ExDividendDay  string  `json:"ex_dividend_day"`
	Suspect        bool    `json:"suspect,omitempty"`
	Locked         bool    `json:"locked,omitempty"`
}

// RefreshRowResult reports the outcome of one row of a batch smart update.
type RefreshRowResult struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Updated bool   `json:"updated"`
	Skipped string `json:"skipped,omitempty"` // reason when not updated
	Err     string `json:"error,omitempty"`
}

// RefreshSummary is the result of a whole batch refresh run.
type RefreshSummary struct {
	Total   int                `json:"total"`
	Updated int                `json:"updated"`
	Skipped int                `json:"skipped"`
	Failed  int                `json:"failed"`
	Stopped bool               `json:"stopped"`
	Rows    []RefreshRowResult `json:"rows"`
}
