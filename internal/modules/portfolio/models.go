// Package portfolio turns a set of user weights into income statistics:
// weighted yield, after-tax cash flow, expense coverage and the monthly
// deposit rhythm.
package portfolio

// RoadmapInput drives one expense-coverage computation. Weights are keyed by
// security name and may be on any scale; amounts are KRW.
type RoadmapInput struct {
	Weights        map[string]float64 `json:"weights"`
	TotalInvest    float64            `json:"total_invest"`
	MonthlyExpense float64            `json:"monthly_expense"`
}

// TimingBuckets splits after-tax annual income by expected deposit window.
type TimingBuckets struct {
	Early float64 `json:"early"` // day 1-10
	Mid   float64 `json:"mid"`   // day 11-20
	Late  float64 `json:"late"`  // day 21 to month end
}

// TimingRatios is the same split expressed as percentages of the total.
type TimingRatios struct {
	Early float64 `json:"early"`
	Mid   float64 `json:"mid"`
	Late  float64 `json:"late"`
}

// RoadmapResult is the full coverage report.
type RoadmapResult struct {
	Success        bool          `json:"success"`
	Reason         string        `json:"reason,omitempty"`
	GrossYield     float64       `json:"gross_yield"`    // weighted pre-tax, percent
	NetYield       float64       `json:"net_yield"`      // after-tax, percent
	GrossMonthly   float64       `json:"gross_monthly"`  // pre-tax monthly income
	NetMonthly     float64       `json:"net_monthly"`    // take-home monthly income
	NetYearly      float64       `json:"net_yearly"`     // take-home annual income
	CoverageRate   float64       `json:"coverage_rate"`  // percent of expense covered
	Gap            float64       `json:"gap"`            // monthly shortfall, 0 when covered
	Surplus        float64       `json:"surplus"`        // monthly excess, 0 when short
	NeededCapital  float64       `json:"needed_capital"` // extra capital to close the gap
	Timing         TimingBuckets `json:"timing"`         // after-tax annual amounts
	TimingPercent  TimingRatios  `json:"timing_percent"`
	UnmatchedNames []string      `json:"unmatched_names,omitempty"`
}
