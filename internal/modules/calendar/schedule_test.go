package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		descriptor string
		want       Schedule
	}{
		{"매월 15일", Schedule{Kind: KindDay, Day: 15}},
		{"25일", Schedule{Kind: KindDay, Day: 25}},
		{"말일", Schedule{Kind: KindMonthEnd}},
		{"월말 지급", Schedule{Kind: KindMonthEnd}},
		{"매월 마지막 영업일", Schedule{Kind: KindMonthEnd}},
		{"하순", Schedule{Kind: KindMonthEnd}},
		{"30일", Schedule{Kind: KindMonthEnd}},
		{"31일", Schedule{Kind: KindMonthEnd}},
		{"월초", Schedule{Kind: KindDay, Day: 1}},
		{"매월 초", Schedule{Kind: KindDay, Day: 1}},
		{"1~3일", Schedule{Kind: KindDay, Day: 1}},
		{"2026-01-20", Schedule{Kind: KindDay, Day: 20}},
		{"2026.01.20", Schedule{Kind: KindDay, Day: 20}},
		{"2026/1/5", Schedule{Kind: KindDay, Day: 5}},
		{"", Schedule{}},
		{"-", Schedule{}},
		{"nan", Schedule{}},
		{"분기배당", Schedule{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSchedule(tt.descriptor), "descriptor %q", tt.descriptor)
	}
}

func TestAnchorInMonth_ClampsToMonthLength(t *testing.T) {
	anchor, ok := Schedule{Kind: KindDay, Day: 31}.AnchorInMonth(2026, time.February)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.February, 28), anchor)

	anchor, ok = Schedule{Kind: KindMonthEnd}.AnchorInMonth(2026, time.April)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.April, 30), anchor)

	_, ok = Schedule{}.AnchorInMonth(2026, time.April)
	assert.False(t, ok)
}

func TestNextExDate(t *testing.T) {
	today := date(2026, time.March, 10)

	next, ok := NextExDate("매월 15일", today)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.March, 15), next)

	// Anchor already passed this month: roll to next month.
	next, ok = NextExDate("매월 5일", today)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.April, 5), next)

	next, ok = NextExDate("말일", today)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.March, 31), next)

	// Today itself counts as upcoming.
	next, ok = NextExDate("매월 10일", today)
	require.True(t, ok)
	assert.Equal(t, today, next)

	_, ok = NextExDate("분기배당", today)
	assert.False(t, ok)
}

func TestNextExDate_YearRollover(t *testing.T) {
	next, ok := NextExDate("매월 5일", date(2026, time.December, 20))
	require.True(t, ok)
	assert.Equal(t, date(2027, time.January, 5), next)
}

func TestBuyByDate_SkipsWeekends(t *testing.T) {
	// 2026-03-15 is a Sunday; minus four days is Wednesday the 11th.
	assert.Equal(t, date(2026, time.March, 11), BuyByDate(date(2026, time.March, 15)))

	// Minus four days lands on Saturday the 7th: back up to Friday the 6th.
	assert.Equal(t, date(2026, time.March, 6), BuyByDate(date(2026, time.March, 11)))

	// Sunday the 8th backs up two days.
	assert.Equal(t, date(2026, time.March, 6), BuyByDate(date(2026, time.March, 12)))
}
