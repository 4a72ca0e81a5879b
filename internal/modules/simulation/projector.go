package simulation

import "math"

// Project runs the month-by-month forward simulation.
//
// Contributions split between the tax-advantaged bucket (bounded by the
// yearly and lifetime caps, excess spilling to the taxable bucket) and the
// taxable bucket. Sheltered dividends reinvest untaxed; taxable dividends
// are taxed at the general rate before reinvesting. At the horizon the
// sheltered profit above the exemption pays the one-time exit tax, and
// nominal results are optionally deflated by compounded inflation.
func Project(in ProjectionInput) ProjectionResult {
	months := in.Years * 12
	monthlyYield := in.AnnualYield / 100 / 12

	var shelterBal, generalBal float64
	if in.UseShelter {
		shelterBal = math.Min(in.StartCapital, ShelterLifetimeCap)
		generalBal = math.Max(0, in.StartCapital-ShelterLifetimeCap)
	} else {
		generalBal = in.StartCapital
	}
	shelterPrincipal := shelterBal
	generalPrincipal := generalBal

	var taxPaidGeneral float64
	series := make([]ProjectionPoint, 0, months+1)
	series = append(series, ProjectionPoint{
		TotalAssets:    shelterBal + generalBal,
		TotalPrincipal: shelterPrincipal + generalPrincipal,
	})

	var yearlyContribution float64
	for m := 1; m <= months; m++ {
		// The yearly cap window rolls over on the 12th month, before that
		// month's contribution.
		if m%12 == 0 {
			yearlyContribution = 0
		}

		// Contribution
		if in.UseShelter {
			remainingYearly := math.Max(0, ShelterYearlyCap-yearlyContribution)
			remainingLifetime := math.Max(0, ShelterLifetimeCap-shelterPrincipal)
			shelterAdd := math.Min(in.MonthlyAdd, math.Min(remainingYearly, remainingLifetime))
			generalAdd := in.MonthlyAdd - shelterAdd

			shelterBal += shelterAdd
			shelterPrincipal += shelterAdd
			yearlyContribution += shelterAdd
			generalBal += generalAdd
			generalPrincipal += generalAdd
		} else {
			generalBal += in.MonthlyAdd
			generalPrincipal += in.MonthlyAdd
		}

		// Dividend accrual and reinvestment
		divShelter := shelterBal * monthlyYield
		shelterBal += divShelter

		divGeneral := generalBal * monthlyYield
		tax := divGeneral * TaxRateGeneral
		taxPaidGeneral += tax
		generalBal += divGeneral - tax

		series = append(series, ProjectionPoint{
			ElapsedYears:   float64(m) / 12,
			TotalAssets:    shelterBal + generalBal,
			TotalPrincipal: shelterPrincipal + generalPrincipal,
			MonthlyDiv:     divShelter + divGeneral,
		})
	}

	finalAssets := shelterBal + generalBal
	finalPrincipal := shelterPrincipal + generalPrincipal
	monthlyDivFinal := series[len(series)-1].MonthlyDiv

	var exitTax, afterTax, monthlyPocket float64
	if in.UseShelter {
		shelterProfit := shelterBal - shelterPrincipal
		taxable := math.Max(0, shelterProfit-ShelterExemption)
		exitTax = taxable * TaxRateShelterExit
		afterTax = finalAssets - exitTax
		monthlyPocket = monthlyDivFinal
	} else {
		afterTax = finalAssets
		monthlyPocket = monthlyDivFinal * AfterTaxRatio
	}

	if in.ApplyInflation {
		discount := math.Pow(1+InflationRate, float64(in.Years))
		afterTax /= discount
		monthlyPocket /= discount
	}

	return ProjectionResult{
		Series:         series,
		FinalAfterTax:  afterTax,
		FinalPrincipal: finalPrincipal,
		MonthlyPocket:  monthlyPocket,
		ExitTax:        exitTax,
		TaxPaidGeneral: taxPaidGeneral,
		TaxableBalance: generalBal,
	}
}
