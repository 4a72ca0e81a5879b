// Package simulation provides the forward compounding projector and the
// inverse goal-capital solver.
package simulation

// Tax and macro constants (KRW domain).
const (
	// TaxRateGeneral is withheld from every taxable-account dividend.
	TaxRateGeneral = 0.154
	// TaxRateShelterExit applies once, at horizon, to tax-advantaged profit
	// above the exemption.
	TaxRateShelterExit = 0.099
	// AfterTaxRatio converts pre-tax dividend income to take-home.
	AfterTaxRatio = 1 - TaxRateGeneral
	// InflationRate compounds annually when deflating nominal results.
	InflationRate = 0.025

	// ShelterYearlyCap bounds contributions to the tax-advantaged bucket per
	// calendar year; the excess spills into the taxable bucket.
	ShelterYearlyCap = 20_000_000
	// ShelterLifetimeCap bounds total tax-advantaged principal.
	ShelterLifetimeCap = 100_000_000
	// ShelterExemption is tax-free profit at exit.
	ShelterExemption = 2_000_000

	// maxGoalMonths is the goal solver's hard iteration ceiling (60 years).
	maxGoalMonths = 720
)

// ProjectionInput drives one forward simulation run.
type ProjectionInput struct {
	StartCapital   float64 `json:"start_capital"`
	MonthlyAdd     float64 `json:"monthly_add"`
	Years          int     `json:"years"`
	AnnualYield    float64 `json:"annual_yield"` // percent
	UseShelter     bool    `json:"use_shelter"`
	ApplyInflation bool    `json:"apply_inflation"`
}

// ProjectionPoint is one sampled month of the projection time series.
type ProjectionPoint struct {
	ElapsedYears   float64 `json:"elapsed_years"`
	TotalAssets    float64 `json:"total_assets"`
	TotalPrincipal float64 `json:"total_principal"`
	MonthlyDiv     float64 `json:"monthly_dividend"` // that month's pre-tax dividend
}

// ProjectionResult is the full projector output.
type ProjectionResult struct {
	Series         []ProjectionPoint `json:"series"`
	FinalAfterTax  float64           `json:"final_after_tax"`
	FinalPrincipal float64           `json:"final_principal"`
	MonthlyPocket  float64           `json:"monthly_pocket"` // take-home monthly dividend at horizon
	ExitTax        float64           `json:"exit_tax"`
	TaxPaidGeneral float64           `json:"tax_paid_general"`
	TaxableBalance float64           `json:"taxable_balance"`
}

// GoalInput drives the inverse solver.
type GoalInput struct {
	TargetMonthly float64 `json:"target_monthly"` // after-tax
	AnnualYield   float64 `json:"annual_yield"`   // percent
	StartBalance  float64 `json:"start_balance"`
}

// GoalResult reports required capital and time-to-target.
type GoalResult struct {
	RequiredAsset float64 `json:"required_asset"`
	GapMoney      float64 `json:"gap_money"`
	ProgressRate  float64 `json:"progress_rate"` // capped at 100
	MonthsPassed  int     `json:"months_passed"`
	Infeasible    bool    `json:"infeasible"`
	Achieved      bool    `json:"achieved"`
}
