package exposure

import "strings"

// Sector bucket labels.
const (
	SectorHighYield  = "하이일드"
	SectorCash       = "현금"
	SectorTreasury   = "국채"
	SectorBigTech    = "빅테크"
	SectorFinancial  = "금융"
	SectorReit       = "리츠"
	SectorIndustrial = "산업재"
	SectorConsumer   = "소비재"
	SectorOther      = "기타"
)

// etfAliases maps portfolio entries whose holdings are published under a
// different product name (share-class or hedge variants).
var etfAliases = map[string]string{
	"KODEX 미국30년국채타겟커버드콜(합성)": "KODEX 미국30년국채액티브(H)",
	"ACE 미국30년국채액티브(H)":       "ACE 미국30년국채액티브",
	"SOL 미국30년국채액티브(H)":       "SOL 미국30년국채커버드콜(합성)",
	"TIGER 미국초단기(3개월이하)국채":    "TIGER 미국초단기채권액티브",
}

// excludedConstituentKeywords marks rows that are fund plumbing rather than
// real underlying assets: provider brands, swap legs, currency and futures
// markers. A row matching one of these survives only when it is also a
// cash-equivalent (a money-market line whose name carries a brand token is
// still a legitimate holding).
var excludedConstituentKeywords = []string{
	"KODEX", "TIGER", "RISE", "ACE", "SOL", "KOSEF", "ARIRANG",
	"스왑", "설정액", "PLUS", "USD", "KRW", "선물",
}

var cashKeywords = []string{
	"BIL", "SHV", "SGOV", "초단기", "CD금리", "KOFR", "머니마켓", "현금", "예금",
}

// bigTechAliases folds ticker / English / Korean variants of the same issuer
// into one canonical label so it aggregates as a single row.
var bigTechAliases = []struct {
	canonical string
	variants  []string
}{
	{"엔비디아", []string{"NVIDIA", "NVDA", "엔비디아"}},
	{"애플", []string{"APPLE", "AAPL", "애플"}},
	{"마이크로소프트", []string{"MICROSOFT", "MSFT", "마이크로소프트"}},
	{"구글(알파벳)", []string{"ALPHABET", "GOOG", "알파벳"}},
	{"메타", []string{"META", "메타"}},
	{"테슬라", []string{"TESLA", "TSLA", "테슬라"}},
	{"아마존", []string{"AMAZON", "AMZN", "아마존"}},
	{"브로드컴", []string{"BROADCOM", "AVGO", "브로드컴"}},
}

// normalizeKey uppercases and strips whitespace for matching.
func normalizeKey(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// resolveAlias maps a portfolio entry through the alias table.
func resolveAlias(name string) string {
	if target, ok := etfAliases[name]; ok {
		return target
	}
	return name
}

// canonicalConstituent returns the cleaned display name for a constituent,
// or ok=false when the row must be discarded.
func canonicalConstituent(rawName string) (string, bool) {
	name := strings.ToUpper(strings.TrimSpace(rawName))
	if name == "" {
		return "", false
	}

	excluded := false
	for _, kw := range excludedConstituentKeywords {
		if strings.Contains(name, kw) {
			excluded = true
			break
		}
	}
	if excluded && !containsAny(name, cashKeywords) {
		return "", false
	}

	for _, alias := range bigTechAliases {
		if containsAny(name, alias.variants) {
			return alias.canonical, true
		}
	}
	return name, true
}

// classifySector buckets a constituent using ordered keyword rules; the
// first match wins. Unmatched rows keep the published category.
func classifySector(cleanName, category string) string {
	name := strings.ToUpper(cleanName)
	switch {
	case containsAny(name, []string{"하이일드", "USHY", "JNK", "HYG"}) || strings.Contains(category, "고수익"):
		return SectorHighYield
	case containsAny(name, cashKeywords):
		return SectorCash
	case containsAny(name, []string{"국채", "채권", "TLT", "30년"}):
		return SectorTreasury
	case isBigTech(cleanName):
		return SectorBigTech
	case strings.Contains(category, "금융") || containsAny(name, []string{"은행", "지주"}):
		return SectorFinancial
	case strings.Contains(category, "리츠") || containsAny(name, []string{"부동산", "인프라"}):
		return SectorReit
	case strings.Contains(category, "산업재") || strings.Contains(name, "자동차"):
		return SectorIndustrial
	case strings.Contains(category, "필수소비재"):
		return SectorConsumer
	}
	if strings.TrimSpace(category) != "" {
		return category
	}
	return SectorOther
}

func isBigTech(cleanName string) bool {
	for _, alias := range bigTechAliases {
		if cleanName == alias.canonical {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
