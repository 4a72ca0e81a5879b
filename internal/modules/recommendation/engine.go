package recommendation

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Style-dependent target clamps. A 20% target for a safety style would empty
// the candidate pool; the clamp decouples the user slider from the internal
// scoring target.
const (
	maxTargetSafe   = 6.0
	maxTargetGrowth = 5.0
	maxTargetFlow   = 20.0

	maxPlausibleYield = 35.0
	maxSafeYield      = 12.0

	timingBonus = 40.0
	jitterRange = 5.0
)

const growthFamilyToken = "배당다우존스"

// Engine produces portfolio recommendations. The random source is injected
// so tests can fix the seed; production supplies a time-seeded one.
type Engine struct {
	rng *rand.Rand
	log zerolog.Logger
}

// NewEngine creates a recommendation engine
func NewEngine(rng *rand.Rand, log zerolog.Logger) *Engine {
	return &Engine{
		rng: rng,
		log: log.With().Str("component", "recommendation").Logger(),
	}
}

type candidate struct {
	sec     universe.ResolvedSecurity
	score   float64
	cluster string
}

// clusterOf maps an asset-type tag onto a recommendation cluster.
func clusterOf(assetType string) string {
	switch assetType {
	case universe.AssetBond:
		return ClusterBond
	case universe.AssetReit:
		return ClusterReit
	case universe.AssetCoveredCall:
		return ClusterCov
	case universe.AssetGrowth:
		return ClusterGrowth
	case universe.AssetIncome:
		return ClusterIncome
	}
	return ClusterEtc
}

func clampTarget(target float64, style string) float64 {
	switch style {
	case StyleSafe:
		return math.Min(target, maxTargetSafe)
	case StyleGrowth:
		return math.Min(target, maxTargetGrowth)
	case StyleFlow:
		return math.Min(target, maxTargetFlow)
	}
	return target
}

// Recommend runs the full pipeline: filter, score, cluster, quota-driven
// selection and weight allocation. A thin universe yields fewer picks than
// requested rather than an error.
func (e *Engine) Recommend(secs []universe.ResolvedSecurity, ch Choices) Result {
	calcTarget := clampTarget(ch.TargetYield, ch.Style)

	// Universe filter plus the safe-style hard prefilter.
	pool := make([]*candidate, 0, len(secs))
	for i := range secs {
		sec := secs[i]
		if sec.YieldPercent <= 0 || sec.YieldPercent > maxPlausibleYield {
			continue
		}
		if !ch.IncludeForeign && sec.Category == universe.CategoryForeign {
			continue
		}
		if ch.Style == StyleSafe && sec.YieldPercent > maxSafeYield {
			continue
		}
		pool = append(pool, &candidate{sec: sec, cluster: clusterOf(sec.AssetType)})
	}

	// Base score, timing bonus, jitter.
	for _, c := range pool {
		c.score = 100 - math.Abs(c.sec.YieldPercent-calcTarget)*15
		if ch.Timing != TimingMix && ch.Timing != "" && TimingMatches(c.sec.ExDividendDay, ch.Timing) {
			c.score += timingBonus
		}
		c.score += e.rng.Float64() * jitterRange
	}

	// Style quotas and biases.
	var quotas []string
	forcedGrowthPick := false
	switch ch.Style {
	case StyleSafe:
		quotas = []string{ClusterBond, ClusterReit}
		for _, c := range pool {
			switch c.cluster {
			case ClusterBond:
				c.score += 50
			case ClusterReit:
				c.score += 30
			}
			if strings.Contains(c.sec.Name, "하이일드") {
				c.score -= 50
			}
		}
	case StyleGrowth:
		forcedGrowthPick = true
		quotas = []string{ClusterGrowth}
		for _, c := range pool {
			switch c.cluster {
			case ClusterGrowth:
				c.score += 50
			case ClusterBond:
				c.score -= 100
			}
		}
	case StyleFlow:
		quotas = []string{ClusterCov, ClusterReit}
		for _, c := range pool {
			switch c.cluster {
			case ClusterCov:
				c.score += 50
			case ClusterReit:
				c.score += 40
			case ClusterIncome:
				c.score += 20
			}
		}
	}

	// Selection state: pinned picks come first, unconditionally.
	picks := make([]string, 0, ch.Count)
	picked := make(map[string]bool)
	var pickedCores []string
	for _, name := range ch.Pinned {
		if picked[name] {
			continue
		}
		picks = append(picks, name)
		picked[name] = true
		pickedCores = append(pickedCores, CoreIndexName(name))
	}

	hasCore := func(core string) bool {
		for _, c := range pickedCores {
			if c == core {
				return true
			}
		}
		return false
	}
	take := func(c *candidate) {
		picks = append(picks, c.sec.Name)
		picked[c.sec.Name] = true
		pickedCores = append(pickedCores, CoreIndexName(c.sec.Name))
	}

	// Growth style forces one dividend-growth family pick, drawn from the
	// top-2 scored family candidates, unless a pin already covers it.
	if forcedGrowthPick {
		familyCovered := false
		for _, core := range pickedCores {
			if strings.Contains(core, growthFamilyToken) {
				familyCovered = true
				break
			}
		}
		if !familyCovered {
			family := e.filterSorted(pool, func(c *candidate) bool {
				return strings.Contains(c.sec.Name, growthFamilyToken) && !picked[c.sec.Name]
			})
			if len(family) > 0 {
				top := family
				if len(top) > 2 {
					top = top[:2]
				}
				take(top[e.rng.Intn(len(top))])
			}
		}
	}

	// One pick per required cluster: random draw among the top-5 unpicked
	// candidates, skipping core-index duplicates.
	for _, quota := range quotas {
		if len(picks) >= ch.Count {
			break
		}
		candidates := e.filterSorted(pool, func(c *candidate) bool {
			return c.cluster == quota && !picked[c.sec.Name]
		})
		e.drawOne(candidates, hasCore, take)
	}

	// Remaining slots by global score order, same duplicate guard.
	for len(picks) < ch.Count {
		candidates := e.filterSorted(pool, func(c *candidate) bool {
			return !picked[c.sec.Name]
		})
		if len(candidates) == 0 || !e.drawOne(candidates, hasCore, take) {
			break
		}
	}

	weights := e.allocateWeights(pool, picks, ch)
	title := e.composeTitle(pool, picks, ch)

	return Result{Title: title, Picks: picks, Weights: weights}
}

// filterSorted returns matching candidates sorted by score descending, ties
// broken by name for determinism.
func (e *Engine) filterSorted(pool []*candidate, keep func(*candidate) bool) []*candidate {
	out := make([]*candidate, 0, len(pool))
	for _, c := range pool {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].sec.Name < out[j].sec.Name
	})
	return out
}

// drawOne shuffles the top-5 of candidates and takes the first whose core
// index is not already picked. Returns false when nothing could be taken.
func (e *Engine) drawOne(candidates []*candidate, hasCore func(string) bool, take func(*candidate)) bool {
	top := candidates
	if len(top) > 5 {
		top = top[:5]
	}
	if len(top) == 0 {
		return false
	}
	shuffled := make([]*candidate, len(top))
	copy(shuffled, top)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, c := range shuffled {
		if !hasCore(CoreIndexName(c.sec.Name)) {
			take(c)
			return true
		}
	}
	return false
}

// allocateWeights ranks picks and assigns percentages. Pinned picks split
// their reserved aggregate equally; the remainder goes to engine picks with
// the top-ranked one taking the largest share. Without pins a fixed golden
// ratio schedule applies.
func (e *Engine) allocateWeights(pool []*candidate, picks []string, ch Choices) map[string]int {
	weights := make(map[string]int, len(picks))
	if len(picks) == 0 {
		return weights
	}

	byName := make(map[string]*candidate, len(pool))
	for _, c := range pool {
		byName[c.sec.Name] = c
	}
	pinned := make(map[string]bool, len(ch.Pinned))
	for _, name := range ch.Pinned {
		pinned[name] = true
	}

	type ranked struct {
		name     string
		priority float64
	}
	rankedPicks := make([]ranked, 0, len(picks))
	for _, name := range picks {
		var priority float64
		var usd bool
		if c, ok := byName[name]; ok {
			usd = universe.USDExposed(c.sec.Name, c.sec.Category)
			switch {
			case ch.Style == StyleGrowth && strings.Contains(name, growthFamilyToken):
				priority = 10
			case ch.Style == StyleSafe && strings.Contains(name, "채권"):
				priority = 8
			case ch.Style == StyleFlow && strings.Contains(name, "커버드콜"):
				priority = 8
			default:
				priority = c.score / 20
			}
		}
		// A dollar asset never takes the largest slot.
		if usd {
			priority -= 1000
		}
		if pinned[name] {
			priority += 2000
		}
		rankedPicks = append(rankedPicks, ranked{name: name, priority: priority})
	}
	sort.SliceStable(rankedPicks, func(i, j int) bool {
		return rankedPicks[i].priority > rankedPicks[j].priority
	})
	ordered := make([]string, len(rankedPicks))
	for i, rp := range rankedPicks {
		ordered[i] = rp.name
	}

	if len(ch.Pinned) > 0 {
		perPin := ch.PinnedWeight / len(ch.Pinned)
		for _, name := range ch.Pinned {
			weights[name] = perPin
		}
		remainder := 100 - perPin*len(ch.Pinned)

		var enginePicks []string
		for _, name := range ordered {
			if !pinned[name] {
				enginePicks = append(enginePicks, name)
			}
		}
		var dist []int
		switch len(enginePicks) {
		case 0:
		case 1:
			dist = []int{remainder}
		case 2:
			first := int(float64(remainder) * 0.6)
			dist = []int{first, remainder - first}
		default:
			each := remainder / len(enginePicks)
			dist = make([]int, len(enginePicks))
			for i := range dist {
				dist[i] = each
			}
		}
		for i, name := range enginePicks {
			if i < len(dist) {
				weights[name] = dist[i]
			} else {
				weights[name] = 0
			}
		}
		return weights
	}

	var ratios []int
	switch len(ordered) {
	case 1:
		ratios = []int{100}
	case 2:
		ratios = []int{60, 40}
	case 3:
		ratios = []int{50, 30, 20}
	case 4:
		ratios = []int{40, 30, 20, 10}
	default:
		ratios = []int{100}
	}
	for i, name := range ordered {
		if i < len(ratios) {
			weights[name] = ratios[i]
		} else {
			weights[name] = 0
		}
	}
	return weights
}

// composeTitle labels the result, prefixing a compromise marker when a pick's
// timing misses the requested bucket (cluster and score pressure may override
// timing during selection).
func (e *Engine) composeTitle(pool []*candidate, picks []string, ch Choices) string {
	byName := make(map[string]*candidate, len(pool))
	for _, c := range pool {
		byName[c.sec.Name] = c
	}

	compromised := false
	if ch.Timing != TimingMix && ch.Timing != "" {
		for _, name := range picks {
			if c, ok := byName[name]; ok && !TimingMatches(c.sec.ExDividendDay, ch.Timing) {
				compromised = true
				break
			}
		}
	}

	badge := "맞춤"
	switch ch.Timing {
	case TimingMid:
		badge = "15일 배당"
	case TimingEnd:
		badge = "월말 배당"
	}

	prefix := ""
	if compromised {
		prefix = "(날짜 유연) "
	}
	return prefix + badge + " 포트폴리오"
}
