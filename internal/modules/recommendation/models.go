// Package recommendation builds quota-constrained dividend portfolios from
// the resolved security universe using a scored candidate selection.
package recommendation

// Risk styles.
const (
	StyleSafe   = "safe"
	StyleGrowth = "growth"
	StyleFlow   = "flow"
)

// Timing preferences.
const (
	TimingMid = "mid"
	TimingEnd = "end"
	TimingMix = "mix"
)

// Asset clusters used by quotas and score biases.
const (
	ClusterBond   = "bond"
	ClusterReit   = "reit"
	ClusterCov    = "cov"
	ClusterGrowth = "growth"
	ClusterIncome = "income"
	ClusterEtc    = "etc"
)

// Choices is the user input to one recommendation run.
type Choices struct {
	TargetYield    float64  `json:"target_yield"`
	Style          string   `json:"style"`
	Count          int      `json:"count"` // 2..4
	Timing         string   `json:"timing"`
	IncludeForeign bool     `json:"include_foreign"`
	Pinned         []string `json:"pinned"`        // user-fixed picks, included unconditionally
	PinnedWeight   int      `json:"pinned_weight"` // aggregate % reserved for pinned picks
}

// Result is one produced portfolio. Fewer picks than requested is a valid
// outcome of a thin universe, never an error.
type Result struct {
	ID      string         `json:"id,omitempty"`
	Title   string         `json:"title"`
	Picks   []string       `json:"picks"`
	Weights map[string]int `json:"weights"`
}
