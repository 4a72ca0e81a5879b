package recommendation

import (
	"regexp"
	"strconv"
	"strings"
)

// Day categories parsed from ex-dividend descriptors.
const (
	DayEarly   = "early"
	DayMid     = "mid"
	DayEnd     = "end"
	DayUnknown = "unknown"
)

var dayNumberRe = regexp.MustCompile(`\d+`)

// ParseDayCategory buckets a free-text ex-dividend descriptor into
// early / mid / end of month. Explicit keywords win over digits, and digits
// are read as a whole day-of-month so "15일" lands in mid rather than
// matching a "5일" fragment.
func ParseDayCategory(descriptor string) string {
	s := strings.TrimSpace(descriptor)
	if s == "" {
		return DayUnknown
	}

	for _, k := range []string{"말일", "마지막", "하순"} {
		if strings.Contains(s, k) {
			return DayEnd
		}
	}
	if strings.Contains(s, "월초") || strings.Contains(s, "초") {
		return DayEarly
	}
	if strings.Contains(s, "중순") {
		return DayMid
	}

	numbers := dayNumberRe.FindAllString(s, -1)
	if len(numbers) > 0 {
		day, err := strconv.Atoi(numbers[len(numbers)-1])
		if err == nil {
			switch {
			case day >= 1 && day <= 10:
				return DayEarly
			case day >= 11 && day <= 20:
				return DayMid
			case day >= 21 && day <= 31:
				return DayEnd
			}
		}
	}
	return DayUnknown
}

// TimingMatches reports whether a security's descriptor satisfies the user's
// timing preference. "mix" accepts everything, and "end" also accepts early
// payers (month boundary either side of payday).
func TimingMatches(descriptor, preference string) bool {
	switch preference {
	case TimingMix, "":
		return true
	case TimingMid:
		return ParseDayCategory(descriptor) == DayMid
	case TimingEnd:
		cat := ParseDayCategory(descriptor)
		return cat == DayEnd || cat == DayEarly
	}
	return true
}

var brandTokens = []string{
	"ACE", "TIGER", "KODEX", "SOL", "RISE", "PLUS", "TIMEFOLIO", "ARIRANG", "HANARO", "KBSTAR",
}

// CoreIndexName strips issuer brands and packaging markers so two products
// tracking the same index compare equal.
func CoreIndexName(name string) string {
	core := strings.ToUpper(name)
	for _, brand := range brandTokens {
		core = strings.ReplaceAll(core, brand, "")
	}
	core = strings.ReplaceAll(core, " ", "")
	core = strings.ReplaceAll(core, "(H)", "")
	core = strings.ReplaceAll(core, "(합성)", "")
	core = strings.ReplaceAll(core, "합성", "")
	return strings.TrimSpace(core)
}
