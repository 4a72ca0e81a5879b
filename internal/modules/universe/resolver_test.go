package universe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PriorityOrder(t *testing.T) {
	tests := []struct {
		name         string
		row          SecurityRow
		wantDividend float64
		wantSource   string
	}{
		{
			name: "newly listed annualizes manual figure",
			row: SecurityRow{
				Name: "신규상장 월배당", CurrentPrice: 10000,
				NewlyListedMonths: 6, DividendManual: 10000,
				DividendAuto: 500, TTMYield: 3,
			},
			wantDividend: 20000,
			wantSource:   SourceNewlyListed,
		},
		{
			name: "auto wins over ttm and manual",
			row: SecurityRow{
				Name: "고배당", CurrentPrice: 10000,
				DividendAuto: 700, TTMYield: 5, DividendManual: 300,
			},
			wantDividend: 700,
			wantSource:   SourceAuto,
		},
		{
			name: "locked auto falls through to ttm",
			row: SecurityRow{
				Name: "고배당", CurrentPrice: 10000,
				DividendAuto: AutoLocked, TTMYield: 5, DividendManual: 300,
			},
			wantDividend: 500,
			wantSource:   SourceTTM,
		},
		{
			name: "ttm needs a positive price",
			row: SecurityRow{
				Name: "고배당", CurrentPrice: 0,
				TTMYield: 5, DividendManual: 300,
			},
			wantDividend: 300,
			wantSource:   SourceManual,
		},
		{
			name: "manual fallback",
			row: SecurityRow{
				Name: "고배당", CurrentPrice: 10000,
				DividendManual: 450,
			},
			wantDividend: 450,
			wantSource:   SourceManual,
		},
		{
			name: "legacy fallback may be zero",
			row: SecurityRow{
				Name: "고배당", CurrentPrice: 10000,
			},
			wantDividend: 0,
			wantSource:   SourceLegacy,
		},
		{
			name: "newly listed without manual figure skips rule 1",
			row: SecurityRow{
				Name: "신규상장", CurrentPrice: 10000,
				NewlyListedMonths: 3, DividendAuto: 600,
			},
			wantDividend: 600,
			wantSource:   SourceAuto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(&tt.row)
			assert.InDelta(t, tt.wantDividend, res.AnnualDividend, 1e-9)
			assert.Equal(t, tt.wantSource, res.Source)
		})
	}
}

func TestResolve_YieldAndSuspectFlag(t *testing.T) {
	row := SecurityRow{Name: "테스트", CurrentPrice: 10000, DividendAuto: 700}
	res := Resolve(&row)
	assert.InDelta(t, 7.0, res.YieldPercent, 1e-9)
	assert.False(t, res.Suspect)

	// Below 2% is suspect.
	row.DividendAuto = 100
	res = Resolve(&row)
	assert.InDelta(t, 1.0, res.YieldPercent, 1e-9)
	assert.True(t, res.Suspect)

	// Above 25% is suspect.
	row.DividendAuto = 3000
	res = Resolve(&row)
	assert.True(t, res.Suspect)

	// Zero price means zero yield, never a division fault.
	row.CurrentPrice = 0
	res = Resolve(&row)
	assert.Equal(t, 0.0, res.YieldPercent)
}

func TestResolve_NewlyListedDisplayName(t *testing.T) {
	row := SecurityRow{Name: "신규ETF", CurrentPrice: 10000, NewlyListedMonths: 4, DividendManual: 4000}
	res := Resolve(&row)
	assert.Contains(t, res.DisplayName, "4개월")
	assert.InDelta(t, 12000, res.AnnualDividend, 1e-9)
}

func TestAppendMonthlyDividend_RollingWindow(t *testing.T) {
	history := ""
	var pushed []float64
	for i := 1; i <= 13; i++ {
		amount := float64(i * 100)
		pushed = append(pushed, amount)
		_, history = AppendMonthlyDividend(history, amount)
	}

	window := ParseHistory(history)
	require.Len(t, window, 12)

	// Oldest entry (100) dropped; window is the last 12 pushed values.
	assert.Equal(t, pushed[1:], window)

	sum, _ := AppendMonthlyDividend(history, 0)
	var want float64
	for _, v := range pushed[2:] {
		want += v
	}
	assert.InDelta(t, want, sum, 1e-9)
}

func TestAppendMonthlyDividend_SumMatchesWindow(t *testing.T) {
	sum, history := AppendMonthlyDividend("100|200|300", 400)
	assert.InDelta(t, 1000, sum, 1e-9)
	assert.Equal(t, "100|200|300|400", history)
}

func TestParseHistory_DropsGarbage(t *testing.T) {
	got := ParseHistory("100|abc||200")
	assert.Equal(t, []float64{100, 200}, got)

	assert.Nil(t, ParseHistory(""))
	assert.Nil(t, ParseHistory("   "))
}

func TestResolve_IsPure(t *testing.T) {
	row := SecurityRow{Name: "고배당", CurrentPrice: 12345, DividendAuto: 777, TTMYield: 4}
	first := Resolve(&row)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Resolve(&row), fmt.Sprintf("resolution %d diverged", i))
	}
}
