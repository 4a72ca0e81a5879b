package universe

import (
	"fmt"
	"strconv"
	"strings"
)

// Suspect-yield band for the admin view. Resolved yields outside this range
// get flagged without altering stored values.
const (
	suspectYieldMin = 2.0
	suspectYieldMax = 25.0
)

const maxHistoryEntries = 12

// Resolve picks the single authoritative annual dividend for a row.
// Rules are evaluated top-down; the first match wins:
//
//  1. newly listed (<12 months) with a manual figure: annualize it
//  2. auto-crawled, when positive (the -1 lock sentinel skips this rule)
//  3. TTM yield applied to the current price
//  4. manual figure as entered
//  5. legacy crawled value, possibly zero
func Resolve(row *SecurityRow) ResolvedSecurity {
	res := ResolvedSecurity{
		Code:          row.Code,
		Name:          row.Name,
		DisplayName:   row.Name,
		Category:      row.Category,
		CurrentPrice:  row.CurrentPrice,
		AssetType:     row.AssetType,
		ExDividendDay: row.ExDividendDay,
		Locked:        row.Locked(),
	}
	if res.AssetType == "" {
		res.AssetType = ClassifyAssetType(row.Name)
	}
	res.HedgeStatus = HedgeStatus(row.Name, row.Category)

	switch {
	case row.NewlyListedMonths > 0 && row.NewlyListedMonths < 12 && row.DividendManual > 0:
		res.AnnualDividend = row.DividendManual / float64(row.NewlyListedMonths) * 12
		res.Source = SourceNewlyListed
		res.DisplayName = fmt.Sprintf("%s (상장 %d개월)", row.Name, row.NewlyListedMonths)
	case row.DividendAuto > 0:
		res.AnnualDividend = row.DividendAuto
		res.Source = SourceAuto
	case row.TTMYield > 0 && row.CurrentPrice > 0:
		res.AnnualDividend = row.CurrentPrice * row.TTMYield / 100
		res.Source = SourceTTM
	case row.DividendManual > 0:
		res.AnnualDividend = row.DividendManual
		res.Source = SourceManual
	default:
		res.AnnualDividend = row.DividendLegacy
		res.Source = SourceLegacy
	}

	if row.CurrentPrice > 0 {
		res.YieldPercent = res.AnnualDividend / row.CurrentPrice * 100
	}

	res.Suspect = res.YieldPercent < suspectYieldMin || res.YieldPercent > suspectYieldMax

	return res
}

// ResolveAll resolves every row, preserving order.
func ResolveAll(rows []SecurityRow) []ResolvedSecurity {
	out := make([]ResolvedSecurity, 0, len(rows))
	for i := range rows {
		out = append(out, Resolve(&rows[i]))
	}
	return out
}

// ParseHistory decodes a pipe-joined dividend history string. Non-numeric
// entries are dropped rather than failing the whole parse.
func ParseHistory(serialized string) []float64 {
	if strings.TrimSpace(serialized) == "" {
		return nil
	}
	parts := strings.Split(serialized, "|")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SerializeHistory encodes a history window back to its stored form.
func SerializeHistory(history []float64) string {
	parts := make([]string, len(history))
	for i, v := range history {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, "|")
}

// AppendMonthlyDividend pushes a new monthly amount onto the rolling window,
// dropping the oldest entry once 12 are held. Returns the trailing-annual
// sum and the serialized window.
func AppendMonthlyDividend(serialized string, amount float64) (sum float64, updated string) {
	history := ParseHistory(serialized)
	if len(history) >= maxHistoryEntries {
		history = history[len(history)-maxHistoryEntries+1:]
	}
	history = append(history, amount)

	for _, v := range history {
		sum += v
	}
	return sum, SerializeHistory(history)
}
