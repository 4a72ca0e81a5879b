package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countEvents(ics string) int {
	return strings.Count(ics, "BEGIN:VEVENT")
}

func TestBuildICS_Structure(t *testing.T) {
	ics := BuildICS([]Entry{{Name: "고배당 A", Descriptor: "매월 15일"}}, date(2026, time.March, 10))

	lines := strings.Split(ics, "\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Contains(t, ics, "PRODID:-//DividendPange//Portfolio//KO")
	assert.Contains(t, ics, "SUMMARY:🔔 [고배당 A] 배당락 D-4 (매수 권장)")
	assert.Contains(t, ics, "예상 배당락일: 2026-03-15")
}

func TestBuildICS_StopsAtYearBoundary(t *testing.T) {
	// March through December: ten monthly events, none spilling into 2027.
	ics := BuildICS([]Entry{{Name: "고배당 A", Descriptor: "매월 15일"}}, date(2026, time.March, 10))
	assert.Equal(t, 10, countEvents(ics))
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:2027")

	ics = BuildICS([]Entry{{Name: "고배당 A", Descriptor: "매월 15일"}}, date(2026, time.November, 10))
	assert.Equal(t, 2, countEvents(ics))
}

func TestBuildICS_DropsPassedBuyDates(t *testing.T) {
	// Buy-by for March 15 is March 11, already behind the 13th: the first
	// event lands in April.
	ics := BuildICS([]Entry{{Name: "고배당 A", Descriptor: "매월 15일"}}, date(2026, time.March, 13))
	assert.Equal(t, 9, countEvents(ics))
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:202603")
}

func TestBuildICS_MonthEndAnchors(t *testing.T) {
	ics := BuildICS([]Entry{{Name: "월말 지급", Descriptor: "말일"}}, date(2026, time.March, 10))
	// March 31 minus four days is Friday the 27th.
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260327")
	assert.Contains(t, ics, "DTEND;VALUE=DATE:20260328")
}

func TestBuildICS_SkipsUnparseableEntries(t *testing.T) {
	ics := BuildICS([]Entry{
		{Name: "분기 지급", Descriptor: "분기배당"},
		{Name: "미기재", Descriptor: "-"},
	}, date(2026, time.March, 10))
	assert.Equal(t, 0, countEvents(ics))
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
}

func TestBuildICS_MultipleEntries(t *testing.T) {
	ics := BuildICS([]Entry{
		{Name: "고배당 A", Descriptor: "매월 15일"},
		{Name: "월말 지급", Descriptor: "말일"},
	}, date(2026, time.November, 10))
	assert.Equal(t, 4, countEvents(ics))
}

func TestGoogleCalendarURL(t *testing.T) {
	link, ok := GoogleCalendarURL("고배당 A", "매월 15일", date(2026, time.March, 10))
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(link, "https://www.google.com/calendar/render?action=TEMPLATE"))
	// Buy-by for Sunday March 15 is Wednesday the 11th, one-day all-day slot.
	assert.Contains(t, link, "&dates=20260311/20260312")
	assert.Contains(t, link, "text=")
	assert.Contains(t, link, "details=")
	assert.NotContains(t, link, " ")

	_, ok = GoogleCalendarURL("분기 지급", "분기배당", date(2026, time.March, 10))
	assert.False(t, ok)
}
