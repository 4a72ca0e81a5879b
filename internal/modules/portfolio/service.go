package portfolio

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/broadcast777/my-dividend-app/internal/modules/simulation"
	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"gonum.org/v1/gonum/stat"
)

const defaultDepositDay = 15

var depositDayRe = regexp.MustCompile(`\d+`)

// NormalizeWeights rescales a weight map so the entries sum to 100.
// Non-positive entries are dropped. Returns nil when nothing is left.
func NormalizeWeights(weights map[string]float64) map[string]float64 {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return nil
	}

	normalized := make(map[string]float64, len(weights))
	for name, w := range weights {
		if w > 0 {
			normalized[name] = w / total * 100
		}
	}
	return normalized
}

// WeightedYield computes the portfolio's pre-tax annual yield, in percent,
// as the weight-averaged yield of the matched securities. Names absent from
// the universe contribute nothing and are returned for diagnostics.
func WeightedYield(secs []universe.ResolvedSecurity, weights map[string]float64) (float64, []string) {
	byName := make(map[string]universe.ResolvedSecurity, len(secs))
	for _, s := range secs {
		byName[s.Name] = s
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var yields, ws []float64
	var unmatched []string
	for _, name := range names {
		w := weights[name]
		if w <= 0 {
			continue
		}
		sec, ok := byName[name]
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		yields = append(yields, sec.YieldPercent)
		ws = append(ws, w)
	}
	if len(yields) == 0 {
		return 0, unmatched
	}
	return stat.Mean(yields, ws), unmatched
}

// BuildRoadmap computes the expense-coverage report for a portfolio: how much
// of the monthly expense the after-tax dividend stream covers, how much
// capital would close the remaining gap, and when during the month the cash
// arrives.
func BuildRoadmap(secs []universe.ResolvedSecurity, in RoadmapInput) *RoadmapResult {
	if in.TotalInvest <= 0 {
		return &RoadmapResult{Success: false, Reason: "total investment must be positive"}
	}
	weights := NormalizeWeights(in.Weights)
	if weights == nil {
		return &RoadmapResult{Success: false, Reason: "no positive weights"}
	}

	byName := make(map[string]universe.ResolvedSecurity, len(secs))
	for _, s := range secs {
		byName[s.Name] = s
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var grossYearly, netYearly float64
	var timing TimingBuckets
	var unmatched []string
	for _, name := range names {
		sec, ok := byName[name]
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}

		rawAnnual := in.TotalInvest * (weights[name] / 100) * (sec.YieldPercent / 100)
		netAnnual := rawAnnual * simulation.AfterTaxRatio
		grossYearly += rawAnnual
		netYearly += netAnnual

		switch day := parseDepositDay(sec.ExDividendDay); {
		case day <= 10:
			timing.Early += netAnnual
		case day >= 21:
			timing.Late += netAnnual
		default:
			timing.Mid += netAnnual
		}
	}
	if grossYearly == 0 && len(unmatched) == len(names) {
		return &RoadmapResult{Success: false, Reason: "no matched securities", UnmatchedNames: unmatched}
	}

	netMonthly := netYearly / 12
	netYield := netYearly / in.TotalInvest * 100

	var coverage, gap, surplus, needed float64
	if in.MonthlyExpense > 0 {
		coverage = netMonthly / in.MonthlyExpense * 100
		if netMonthly < in.MonthlyExpense {
			gap = in.MonthlyExpense - netMonthly
		} else {
			surplus = netMonthly - in.MonthlyExpense
		}
		if gap > 0 && netYield > 0 {
			needed = gap * 12 / (netYield / 100)
		}
	}

	return &RoadmapResult{
		Success:        true,
		GrossYield:     grossYearly / in.TotalInvest * 100,
		NetYield:       netYield,
		GrossMonthly:   grossYearly / 12,
		NetMonthly:     netMonthly,
		NetYearly:      netYearly,
		CoverageRate:   coverage,
		Gap:            gap,
		Surplus:        surplus,
		NeededCapital:  needed,
		Timing:         timing,
		TimingPercent:  timingPercent(timing),
		UnmatchedNames: unmatched,
	}
}

func timingPercent(t TimingBuckets) TimingRatios {
	total := t.Early + t.Mid + t.Late
	if total == 0 {
		return TimingRatios{}
	}
	return TimingRatios{
		Early: t.Early / total * 100,
		Mid:   t.Mid / total * 100,
		Late:  t.Late / total * 100,
	}
}

// parseDepositDay extracts a day-of-month from a free-text ex-dividend
// descriptor. Digits are read as a whole number (the last one present),
// month-end keywords mean day 30, and anything else defaults to mid-month.
func parseDepositDay(descriptor string) int {
	s := strings.TrimSpace(descriptor)
	if s == "" {
		return defaultDepositDay
	}

	numbers := depositDayRe.FindAllString(s, -1)
	if len(numbers) > 0 {
		if day, err := strconv.Atoi(numbers[len(numbers)-1]); err == nil {
			return int(math.Min(float64(day), 30))
		}
	}
	for _, k := range []string{"말일", "마지막", "말", "하순"} {
		if strings.Contains(s, k) {
			return 30
		}
	}
	return defaultDepositDay
}
