package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_AssetsNeverBelowPrincipal(t *testing.T) {
	tests := []struct {
		name string
		in   ProjectionInput
	}{
		{"general account", ProjectionInput{StartCapital: 10_000_000, MonthlyAdd: 500_000, Years: 10, AnnualYield: 7}},
		{"sheltered account", ProjectionInput{StartCapital: 10_000_000, MonthlyAdd: 500_000, Years: 10, AnnualYield: 7, UseShelter: true}},
		{"zero yield", ProjectionInput{StartCapital: 1_000_000, MonthlyAdd: 100_000, Years: 5, AnnualYield: 0}},
		{"no contributions", ProjectionInput{StartCapital: 5_000_000, Years: 3, AnnualYield: 5, UseShelter: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Project(tt.in)
			for _, p := range result.Series {
				assert.GreaterOrEqual(t, p.TotalAssets, p.TotalPrincipal-1e-6,
					"assets dipped below principal at year %.2f", p.ElapsedYears)
			}
		})
	}
}

func TestProject_SeriesShape(t *testing.T) {
	result := Project(ProjectionInput{StartCapital: 1_000_000, MonthlyAdd: 100_000, Years: 2, AnnualYield: 6})
	require.Len(t, result.Series, 25) // month 0 plus 24 months

	assert.Equal(t, 0.0, result.Series[0].ElapsedYears)
	assert.InDelta(t, 2.0, result.Series[24].ElapsedYears, 1e-9)
	assert.InDelta(t, 1_000_000+24*100_000, result.FinalPrincipal, 1e-6)
}

func TestProject_ShelterYearlyCapSpillsToTaxable(t *testing.T) {
	// 3M a month blows through the 20M yearly cap: the spill must land in
	// the taxable bucket and pay withholding tax.
	result := Project(ProjectionInput{MonthlyAdd: 3_000_000, Years: 1, AnnualYield: 5, UseShelter: true})

	assert.Greater(t, result.TaxableBalance, 0.0)
	assert.Greater(t, result.TaxPaidGeneral, 0.0)
	assert.InDelta(t, 36_000_000, result.FinalPrincipal, 1e-6)
}

func TestProject_YearlyCapResetsOnTwelfthMonth(t *testing.T) {
	// Contributing the whole 20M yearly cap in month 1: months 2-11 spill
	// entirely to the taxable bucket, and month 12 opens a fresh cap window.
	result := Project(ProjectionInput{MonthlyAdd: ShelterYearlyCap, Years: 1, AnnualYield: 0, UseShelter: true})

	// Zero yield keeps balances equal to principal: 10 spilled months.
	assert.InDelta(t, 10*ShelterYearlyCap, result.TaxableBalance, 1e-6)
	assert.InDelta(t, 12*ShelterYearlyCap, result.FinalPrincipal, 1e-6)
}

func TestProject_ShelterLifetimeCapOnStartCapital(t *testing.T) {
	// Start capital beyond the lifetime cap: the cap amount shelters, the
	// rest runs taxed.
	result := Project(ProjectionInput{StartCapital: 150_000_000, Years: 1, AnnualYield: 5, UseShelter: true})
	assert.Greater(t, result.TaxableBalance, 0.0)
	assert.Greater(t, result.TaxPaidGeneral, 0.0)
	assert.InDelta(t, 150_000_000, result.FinalPrincipal, 1e-6)
}

func TestProject_GeneralAccountTaxesDividends(t *testing.T) {
	in := ProjectionInput{StartCapital: 10_000_000, Years: 1, AnnualYield: 12}
	result := Project(in)

	// First month dividend: 10M x 1% = 100,000 pre-tax.
	assert.InDelta(t, 100_000, result.Series[1].MonthlyDiv, 1e-6)
	// Monthly pocket is after-tax.
	assert.InDelta(t, result.Series[len(result.Series)-1].MonthlyDiv*AfterTaxRatio, result.MonthlyPocket, 1e-6)
	assert.Greater(t, result.TaxPaidGeneral, 0.0)
	assert.Equal(t, 0.0, result.ExitTax)
}

func TestProject_ShelterExitTaxAboveExemption(t *testing.T) {
	// Long sheltered run accrues profit well beyond the 2M exemption.
	result := Project(ProjectionInput{StartCapital: 50_000_000, Years: 10, AnnualYield: 8, UseShelter: true})
	assert.Greater(t, result.ExitTax, 0.0)

	// Small profit below the exemption pays no exit tax.
	small := Project(ProjectionInput{StartCapital: 1_000_000, Years: 1, AnnualYield: 3, UseShelter: true})
	assert.Equal(t, 0.0, small.ExitTax)
}

func TestProject_InflationDeflatesResults(t *testing.T) {
	in := ProjectionInput{StartCapital: 10_000_000, Years: 10, AnnualYield: 7}
	nominal := Project(in)

	in.ApplyInflation = true
	real := Project(in)

	discount := math.Pow(1+InflationRate, 10)
	assert.InDelta(t, nominal.FinalAfterTax/discount, real.FinalAfterTax, 1e-6)
	assert.InDelta(t, nominal.MonthlyPocket/discount, real.MonthlyPocket, 1e-6)
}

func TestSolveGoal_RequiredCapitalFormula(t *testing.T) {
	// 1M a month after tax at 6%: required = 1M / (0.005 * 0.846).
	result := SolveGoal(GoalInput{TargetMonthly: 1_000_000, AnnualYield: 6})
	assert.InDelta(t, 1_000_000/(0.06/12*AfterTaxRatio), result.RequiredAsset, 1e-6)
}

func TestSolveGoal_Monotonicity(t *testing.T) {
	prev := 0.0
	for _, target := range []float64{500_000, 1_000_000, 1_500_000, 2_000_000} {
		result := SolveGoal(GoalInput{TargetMonthly: target, AnnualYield: 5})
		assert.Greater(t, result.RequiredAsset, prev)
		prev = result.RequiredAsset
	}
}

func TestSolveGoal_ProgressCappedAt100(t *testing.T) {
	result := SolveGoal(GoalInput{TargetMonthly: 100_000, AnnualYield: 6, StartBalance: 1_000_000_000})
	assert.Equal(t, 100.0, result.ProgressRate)
	assert.True(t, result.Achieved)
	assert.Equal(t, 0, result.MonthsPassed)
	assert.Equal(t, 0.0, result.GapMoney)
}

func TestSolveGoal_InfeasibleAtCeiling(t *testing.T) {
	// Zero start balance never compounds to anything: ceiling hit.
	result := SolveGoal(GoalInput{TargetMonthly: 1_000_000, AnnualYield: 6, StartBalance: 0})
	assert.True(t, result.Infeasible)
	assert.Equal(t, maxGoalMonths, result.MonthsPassed)
}

func TestSolveGoal_ReachableTarget(t *testing.T) {
	result := SolveGoal(GoalInput{TargetMonthly: 500_000, AnnualYield: 8, StartBalance: 50_000_000})
	assert.False(t, result.Infeasible)
	assert.Greater(t, result.MonthsPassed, 0)
	assert.Less(t, result.MonthsPassed, maxGoalMonths)
}

func TestSolveGoal_ZeroYieldDegeneratesToAchieved(t *testing.T) {
	result := SolveGoal(GoalInput{TargetMonthly: 1_000_000, AnnualYield: 0, StartBalance: 10_000_000})
	assert.Equal(t, 0.0, result.RequiredAsset)
	assert.False(t, result.Infeasible)
	assert.True(t, result.Achieved)
	assert.Equal(t, 0, result.MonthsPassed)
}
