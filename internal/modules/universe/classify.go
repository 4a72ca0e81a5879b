package universe

import "strings"

// Asset type tags derived from security names.
const (
	AssetBond        = "bond"
	AssetReit        = "reit"
	AssetCoveredCall = "covered_call"
	AssetGrowth      = "growth"
	AssetIncome      = "income"
	AssetOther       = "other"
)

// Hedge status tags for the currency-exposure penalty.
const (
	HedgeUSDDirect = "usd_direct"
	HedgeUnhedged  = "unhedged"
	HedgeHedged    = "hedged"
	HedgeNone      = "domestic"
)

// assetTypeRules are evaluated in order; the first matching keyword wins.
// Covered-call products often carry a bond or index token too, so the
// covered-call rule must run first.
var assetTypeRules = []struct {
	assetType string
	keywords  []string
}{
	{AssetCoveredCall, []string{"커버드콜", "커버드 콜", "COVERED CALL", "프리미엄"}},
	{AssetBond, []string{"채권", "국고채", "회사채", "국채", "단기채", "금리", "BOND", "TREASURY"}},
	{AssetReit, []string{"리츠", "REIT", "부동산"}},
	{AssetGrowth, []string{"배당성장", "배당다우존스", "SCHD", "성장", "GROWTH"}},
	{AssetIncome, []string{"고배당", "배당", "인컴", "DIVIDEND", "INCOME"}},
}

// ClassifyAssetType maps a raw security name to a coarse asset-type tag.
func ClassifyAssetType(name string) string {
	upper := strings.ToUpper(name)
	for _, rule := range assetTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, strings.ToUpper(kw)) {
				return rule.assetType
			}
		}
	}
	return AssetOther
}

// HedgeStatus classifies currency exposure from the category and name.
// Foreign-listed securities settle in USD outright. Domestic products
// tracking US or global indices are unhedged unless they carry the (H)
// marker; an explicit 환노출 token also means unhedged.
func HedgeStatus(name, category string) string {
	if category == CategoryForeign {
		return HedgeUSDDirect
	}
	upper := strings.ToUpper(name)
	if strings.Contains(upper, "(H)") {
		return HedgeHedged
	}
	if strings.Contains(upper, "환노출") {
		return HedgeUnhedged
	}
	if strings.Contains(upper, "미국") || strings.Contains(upper, "글로벌") {
		return HedgeUnhedged
	}
	return HedgeNone
}

// USDExposed reports whether the security is effectively a dollar asset for
// allocation purposes.
func USDExposed(name, category string) bool {
	status := HedgeStatus(name, category)
	return status == HedgeUSDDirect || status == HedgeUnhedged
}

// NormalizeTicker zero-pads domestic numeric codes to six digits; overseas
// tickers pass through unchanged.
func NormalizeTicker(code, category string) string {
	code = strings.TrimSpace(code)
	if category == CategoryForeign {
		return strings.ToUpper(code)
	}
	for len(code) < 6 {
		code = "0" + code
	}
	return code
}
