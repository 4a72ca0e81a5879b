// Package calendar turns free-text ex-dividend descriptors into concrete
// dates and exports them as ICS documents and Google Calendar links.
package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Schedule kinds.
const (
	KindNone     = ""
	KindMonthEnd = "month_end"
	KindDay      = "day"
)

var (
	endKeywords   = []string{"말일", "월말", "마지막", "하순", "30일", "31일", "END"}
	startKeywords = []string{"매월 초", "월초", "1~3일", "BEGIN"}

	dayNumberRe  = regexp.MustCompile(`\d+`)
	fixedDateRe  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	separatorsRe = regexp.MustCompile(`[./]`)
)

// Schedule is a recurring monthly anchor parsed from a descriptor. Month-end
// schedules land on the last day of each month; day schedules land on Day,
// clamped to the month's length.
type Schedule struct {
	Kind string
	Day  int
}

// ParseSchedule reads a descriptor like "매월 15일", "말일" or "2026-01-15"
// into a monthly anchor. A full date anchors on its day of month. Returns a
// zero Schedule when nothing parseable is present.
func ParseSchedule(descriptor string) Schedule {
	s := strings.TrimSpace(descriptor)
	switch s {
	case "", "-", "nan", "None":
		return Schedule{}
	}

	if d, ok := parseFixedDate(s); ok {
		return Schedule{Kind: KindDay, Day: d.Day()}
	}

	for _, k := range endKeywords {
		if strings.Contains(s, k) {
			return Schedule{Kind: KindMonthEnd}
		}
	}
	for _, k := range startKeywords {
		if strings.Contains(s, k) {
			return Schedule{Kind: KindDay, Day: 1}
		}
	}
	if m := dayNumberRe.FindString(s); m != "" {
		if day, err := strconv.Atoi(m); err == nil && day >= 1 && day <= 31 {
			return Schedule{Kind: KindDay, Day: day}
		}
	}
	return Schedule{}
}

// parseFixedDate normalizes "YYYY.MM.DD" / "YYYY/MM/DD" separators and reads
// a calendar date.
func parseFixedDate(s string) (time.Time, bool) {
	normalized := separatorsRe.ReplaceAllString(s, "-")
	m := fixedDateRe.FindStringSubmatch(normalized)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// AnchorInMonth resolves the schedule to a concrete date within a month.
func (s Schedule) AnchorInMonth(year int, month time.Month) (time.Time, bool) {
	lastDay := daysInMonth(year, month)
	switch s.Kind {
	case KindMonthEnd:
		return time.Date(year, month, lastDay, 0, 0, 0, 0, time.UTC), true
	case KindDay:
		day := s.Day
		if day > lastDay {
			day = lastDay
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// NextExDate resolves the descriptor to the next occurrence on or after
// today: this month's anchor, or next month's when it has already passed.
func NextExDate(descriptor string, today time.Time) (time.Time, bool) {
	sched := ParseSchedule(descriptor)
	if sched.Kind == KindNone {
		return time.Time{}, false
	}

	anchor, ok := sched.AnchorInMonth(today.Year(), today.Month())
	if !ok {
		return time.Time{}, false
	}
	if anchor.Before(truncateDay(today)) {
		next := today.AddDate(0, 1, -today.Day()+1) // first of next month
		anchor, ok = sched.AnchorInMonth(next.Year(), next.Month())
		if !ok {
			return time.Time{}, false
		}
	}
	return anchor, true
}

// BuyByDate backs off four calendar days from the ex-dividend date, then
// steps further back over the weekend so the result is a trading day.
func BuyByDate(exDate time.Time) time.Time {
	buy := exDate.AddDate(0, 0, -4)
	for buy.Weekday() == time.Saturday || buy.Weekday() == time.Sunday {
		buy = buy.AddDate(0, 0, -1)
	}
	return buy
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
