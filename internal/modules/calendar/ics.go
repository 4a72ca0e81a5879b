package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	icsDateLayout = "20060102"
	horizonMonths = 12
)

// Entry is one security to schedule.
type Entry struct {
	Name       string
	Descriptor string
}

// eventDisclaimer rides inside every event body. The schedule is an estimate
// derived from past payouts, not an official notice.
const eventDisclaimer = "🛑 [필독] 투자 유의사항\\n" +
	"이 알림은 과거 데이터를 기반으로 생성된 '예상 일정'입니다.\\n" +
	"운용사 정책 변경으로 실제 배당일이 바뀔 수 있습니다.\\n" +
	"안전한 투자를 위해, 매수 전 반드시 '운용사 공식 홈페이지' 공시를 확인해주세요."

// BuildICS assembles one ICS document with a buy-by reminder event for every
// upcoming ex-dividend date of every entry. Generation runs up to twelve
// months ahead but stops at the year boundary, and events whose buy-by date
// has already passed are dropped.
func BuildICS(entries []Entry, today time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//DividendPange//Portfolio//KO",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	today = truncateDay(today)
	for _, entry := range entries {
		sched := ParseSchedule(entry.Descriptor)
		if sched.Kind == KindNone {
			continue
		}

		for i := 0; i < horizonMonths; i++ {
			first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
			if first.Year() > today.Year() {
				break
			}

			exDate, ok := sched.AnchorInMonth(first.Year(), first.Month())
			if !ok {
				continue
			}
			buyDate := BuyByDate(exDate)
			if buyDate.Before(today) {
				continue
			}

			description := fmt.Sprintf(
				"예상 배당락일: %s\\n\\n💰 [%s] 배당 수령을 위해 계좌를 확인하세요.\\n\\n%s",
				exDate.Format("2006-01-02"), entry.Name, eventDisclaimer)

			lines = append(lines,
				"BEGIN:VEVENT",
				"DTSTART;VALUE=DATE:"+buyDate.Format(icsDateLayout),
				"DTEND;VALUE=DATE:"+buyDate.AddDate(0, 0, 1).Format(icsDateLayout),
				fmt.Sprintf("SUMMARY:🔔 [%s] 배당락 D-4 (매수 권장)", entry.Name),
				"DESCRIPTION:"+description,
				"END:VEVENT",
			)
		}
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\n")
}

// GoogleCalendarURL builds a prefilled event-creation link for the next
// buy-by date of a single security. Returns false when the descriptor has no
// parseable schedule.
func GoogleCalendarURL(name, descriptor string, today time.Time) (string, bool) {
	exDate, ok := NextExDate(descriptor, today)
	if !ok {
		return "", false
	}
	buyDate := BuyByDate(exDate)

	title := fmt.Sprintf("🔔 [%s] 배당락 D-4 (매수 권장)", name)
	details := fmt.Sprintf(
		"예상 배당락일: %s\n\n💰 배당 수령을 위해 계좌를 확인하세요.\n\n%s",
		descriptor, strings.ReplaceAll(eventDisclaimer, "\\n", "\n"))

	return "https://www.google.com/calendar/render?action=TEMPLATE" +
		"&text=" + url.QueryEscape(title) +
		"&dates=" + buyDate.Format(icsDateLayout) + "/" + buyDate.AddDate(0, 0, 1).Format(icsDateLayout) +
		"&details=" + url.QueryEscape(details), true
}
