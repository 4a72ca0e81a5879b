package simulation

import "math"

// SolveGoal computes the capital required for a target after-tax monthly
// income, then simulates reinvest-only compounding from the starting balance
// until the target is reached or the 720-month ceiling hits.
//
// A non-positive yield degenerates the required capital to zero, treated as
// already achieved rather than an error.
func SolveGoal(in GoalInput) GoalResult {
	monthlyYield := in.AnnualYield / 100 / 12

	var required float64
	if in.AnnualYield > 0 {
		required = in.TargetMonthly / (monthlyYield * AfterTaxRatio)
	}

	balance := in.StartBalance
	months := 0
	if required > 0 && balance < required {
		for months < maxGoalMonths {
			if balance >= required {
				break
			}
			balance += balance * monthlyYield * AfterTaxRatio
			months++
		}
	}

	gap := math.Max(0, required-in.StartBalance)
	progress := 0.0
	if required > 0 {
		progress = math.Min(100, in.StartBalance/required*100)
	}

	return GoalResult{
		RequiredAsset: required,
		GapMoney:      gap,
		ProgressRate:  progress,
		MonthsPassed:  months,
		Infeasible:    months >= maxGoalMonths,
		Achieved:      gap == 0,
	}
}
