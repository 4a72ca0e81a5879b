package recommendation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(seed int64) *Engine {
	return NewEngine(rand.New(rand.NewSource(seed)), zerolog.Nop())
}

func sec(name, assetType, category, exDay string, yield float64) universe.ResolvedSecurity {
	return universe.ResolvedSecurity{
		Name:          name,
		DisplayName:   name,
		Category:      category,
		AssetType:     assetType,
		ExDividendDay: exDay,
		YieldPercent:  yield,
	}
}

func testUniverse() []universe.ResolvedSecurity {
	return []universe.ResolvedSecurity{
		sec("TIGER 미국30년국채액티브(H)", universe.AssetBond, universe.CategoryDomestic, "말일", 3.5),
		sec("KODEX 국고채30년액티브", universe.AssetBond, universe.CategoryDomestic, "중순", 3.2),
		sec("KODEX 하이일드 회사채", universe.AssetBond, universe.CategoryDomestic, "말일", 8.5),
		sec("TIGER 리츠부동산인프라", universe.AssetReit, universe.CategoryDomestic, "말일", 7.2),
		sec("KODEX 한국부동산리츠인프라", universe.AssetReit, universe.CategoryDomestic, "15일", 6.8),
		sec("TIGER 미국배당다우존스", universe.AssetGrowth, universe.CategoryDomestic, "말일", 3.6),
		sec("SOL 미국배당다우존스", universe.AssetGrowth, universe.CategoryDomestic, "15일", 3.5),
		sec("ACE 미국배당다우존스", universe.AssetGrowth, universe.CategoryDomestic, "중순", 3.4),
		sec("TIGER 미국배당다우존스커버드콜2호", universe.AssetCoveredCall, universe.CategoryDomestic, "말일", 11.5),
		sec("KODEX 미국배당커버드콜액티브", universe.AssetCoveredCall, universe.CategoryDomestic, "15일", 13.0),
		sec("TIGER 은행고배당플러스TOP10", universe.AssetIncome, universe.CategoryDomestic, "말일", 6.1),
		sec("KODEX 고배당", universe.AssetIncome, universe.CategoryDomestic, "하순", 5.4),
		sec("SCHD", universe.AssetGrowth, universe.CategoryForeign, "중순", 3.5),
		sec("JEPI", universe.AssetCoveredCall, universe.CategoryForeign, "말일", 8.0),
		// Filtered out: implausible and non-positive yields.
		sec("망가진 데이터", universe.AssetIncome, universe.CategoryDomestic, "말일", 120),
		sec("배당없음", universe.AssetOther, universe.CategoryDomestic, "", 0),
	}
}

func TestRecommend_CountBoundAndNoDuplicateCores(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		e := newTestEngine(seed)
		result := e.Recommend(testUniverse(), Choices{
			TargetYield: 7, Style: StyleFlow, Count: 4, Timing: TimingMix, IncludeForeign: true,
		})

		assert.LessOrEqual(t, len(result.Picks), 4)
		assert.GreaterOrEqual(t, len(result.Picks), 1)

		seen := make(map[string]bool)
		for _, pick := range result.Picks {
			core := CoreIndexName(pick)
			assert.False(t, seen[core], "duplicate core index %q in %v (seed %d)", core, result.Picks, seed)
			seen[core] = true
		}
	}
}

func TestRecommend_GoldenRatioWeightsSumTo100(t *testing.T) {
	for _, count := range []int{2, 3, 4} {
		e := newTestEngine(42)
		result := e.Recommend(testUniverse(), Choices{
			TargetYield: 7, Style: StyleFlow, Count: count, Timing: TimingMix, IncludeForeign: true,
		})
		require.Len(t, result.Picks, count)

		total := 0
		for _, w := range result.Weights {
			total += w
		}
		assert.InDelta(t, 100, total, 1, "count=%d weights=%v", count, result.Weights)
	}
}

func TestRecommend_SafeStyleClampAndPrefilter(t *testing.T) {
	byName := make(map[string]universe.ResolvedSecurity)
	for _, s := range testUniverse() {
		byName[s.Name] = s
	}

	for seed := int64(1); seed <= 10; seed++ {
		e := newTestEngine(seed)
		// Requested 20% but safe clamps to 6% and prefilters >12% yields.
		result := e.Recommend(testUniverse(), Choices{
			TargetYield: 20, Style: StyleSafe, Count: 3, Timing: TimingMix, IncludeForeign: true,
		})
		for _, pick := range result.Picks {
			s, ok := byName[pick]
			require.True(t, ok)
			assert.LessOrEqual(t, s.YieldPercent, 12.0, "safe pick %q yields %.1f", pick, s.YieldPercent)
		}
	}
}

func TestRecommend_SafeStyleQuotasIncludeBondAndReit(t *testing.T) {
	byName := make(map[string]universe.ResolvedSecurity)
	for _, s := range testUniverse() {
		byName[s.Name] = s
	}

	e := newTestEngine(7)
	result := e.Recommend(testUniverse(), Choices{
		TargetYield: 5, Style: StyleSafe, Count: 3, Timing: TimingMix, IncludeForeign: false,
	})
	require.GreaterOrEqual(t, len(result.Picks), 2)

	hasBond, hasReit := false, false
	for _, pick := range result.Picks {
		switch clusterOf(byName[pick].AssetType) {
		case ClusterBond:
			hasBond = true
		case ClusterReit:
			hasReit = true
		}
	}
	assert.True(t, hasBond, "safe result should include a bond pick: %v", result.Picks)
	assert.True(t, hasReit, "safe result should include a reit pick: %v", result.Picks)
}

func TestRecommend_GrowthForcesDividendGrowthFamily(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		e := newTestEngine(seed)
		result := e.Recommend(testUniverse(), Choices{
			TargetYield: 4, Style: StyleGrowth, Count: 3, Timing: TimingMix, IncludeForeign: true,
		})

		found := false
		for _, pick := range result.Picks {
			if strings.Contains(pick, growthFamilyToken) {
				found = true
				break
			}
		}
		assert.True(t, found, "growth result missing dividend-growth family pick: %v", result.Picks)
	}
}

func TestRecommend_DomesticOnlyFilter(t *testing.T) {
	byName := make(map[string]universe.ResolvedSecurity)
	for _, s := range testUniverse() {
		byName[s.Name] = s
	}

	e := newTestEngine(3)
	result := e.Recommend(testUniverse(), Choices{
		TargetYield: 7, Style: StyleFlow, Count: 4, Timing: TimingMix, IncludeForeign: false,
	})
	for _, pick := range result.Picks {
		assert.Equal(t, universe.CategoryDomestic, byName[pick].Category, "foreign pick %q leaked in", pick)
	}
}

func TestRecommend_PinnedPicksAlwaysIncluded(t *testing.T) {
	e := newTestEngine(11)
	result := e.Recommend(testUniverse(), Choices{
		TargetYield: 7, Style: StyleFlow, Count: 3, Timing: TimingMix, IncludeForeign: true,
		Pinned: []string{"KODEX 고배당"}, PinnedWeight: 20,
	})

	require.Contains(t, result.Picks, "KODEX 고배당")
	assert.Equal(t, "KODEX 고배당", result.Picks[0])
	assert.Equal(t, 20, result.Weights["KODEX 고배당"])
}

func TestRecommend_PinnedWeightSplit(t *testing.T) {
	e := newTestEngine(13)
	result := e.Recommend(testUniverse(), Choices{
		TargetYield: 7, Style: StyleFlow, Count: 4, Timing: TimingMix, IncludeForeign: true,
		Pinned: []string{"KODEX 고배당", "TIGER 은행고배당플러스TOP10"}, PinnedWeight: 30,
	})

	assert.Equal(t, 15, result.Weights["KODEX 고배당"])
	assert.Equal(t, 15, result.Weights["TIGER 은행고배당플러스TOP10"])

	// Two engine picks share the remaining 70 as 60/40.
	var engineWeights []int
	for name, w := range result.Weights {
		if name != "KODEX 고배당" && name != "TIGER 은행고배당플러스TOP10" {
			engineWeights = append(engineWeights, w)
		}
	}
	require.Len(t, engineWeights, 2)
	assert.ElementsMatch(t, []int{42, 28}, engineWeights)
}

func TestRecommend_USDAssetNeverTopWeight(t *testing.T) {
	// Universe of one dollar asset and one won asset: the won asset must take
	// the largest slot even when the dollar asset scores higher.
	small := []universe.ResolvedSecurity{
		sec("JEPI", universe.AssetCoveredCall, universe.CategoryForeign, "말일", 8.0),
		sec("KODEX 고배당", universe.AssetIncome, universe.CategoryDomestic, "말일", 5.4),
	}
	for seed := int64(1); seed <= 10; seed++ {
		e := newTestEngine(seed)
		result := e.Recommend(small, Choices{
			TargetYield: 8, Style: StyleFlow, Count: 2, Timing: TimingMix, IncludeForeign: true,
		})
		require.Len(t, result.Picks, 2)
		assert.Greater(t, result.Weights["KODEX 고배당"], result.Weights["JEPI"], "seed %d", seed)
	}
}

func TestRecommend_EmptyUniverseReturnsEmptyResult(t *testing.T) {
	e := newTestEngine(5)
	result := e.Recommend(nil, Choices{
		TargetYield: 7, Style: StyleFlow, Count: 3, Timing: TimingMix, IncludeForeign: true,
	})
	assert.Empty(t, result.Picks)
	assert.Empty(t, result.Weights)
	assert.NotEmpty(t, result.Title)
}

func TestRecommend_SeededDeterminism(t *testing.T) {
	choices := Choices{
		TargetYield: 7, Style: StyleFlow, Count: 3, Timing: TimingEnd, IncludeForeign: true,
	}
	first := newTestEngine(99).Recommend(testUniverse(), choices)
	second := newTestEngine(99).Recommend(testUniverse(), choices)
	assert.Equal(t, first, second)
}

func TestRecommend_TimingTitleAndCompromiseMarker(t *testing.T) {
	// Only end-of-month payers exist: a mid-month request must flag the
	// compromise in the title.
	endOnly := []universe.ResolvedSecurity{
		sec("KODEX 고배당", universe.AssetIncome, universe.CategoryDomestic, "말일", 5.4),
		sec("TIGER 은행고배당플러스TOP10", universe.AssetIncome, universe.CategoryDomestic, "말일", 6.1),
	}
	e := newTestEngine(21)
	result := e.Recommend(endOnly, Choices{
		TargetYield: 6, Style: StyleFlow, Count: 2, Timing: TimingMid, IncludeForeign: true,
	})
	require.NotEmpty(t, result.Picks)
	assert.Contains(t, result.Title, "(날짜 유연)")
	assert.Contains(t, result.Title, "15일 배당")

	// A mix request never carries the marker.
	result = newTestEngine(21).Recommend(endOnly, Choices{
		TargetYield: 6, Style: StyleFlow, Count: 2, Timing: TimingMix, IncludeForeign: true,
	})
	assert.NotContains(t, result.Title, "(날짜 유연)")
	assert.Contains(t, result.Title, "맞춤")
}
