// Package exposure decomposes an ETF portfolio into the underlying
// constituent assets it actually holds (look-through analysis).
package exposure

// HoldingRow is one (ETF, constituent) pair as published by the provider.
// Published weights for one ETF do not necessarily sum to 100.
type HoldingRow struct {
	ETFName         string  `json:"etf_name"`
	ETFCode         string  `json:"etf_code"`
	ConstituentName string  `json:"constituent_name"`
	WeightPercent   float64 `json:"weight_percent"`
	Category        string  `json:"category"`
}

// Position is one aggregated underlying asset in the result.
type Position struct {
	Name          string  `json:"name"`
	WeightPercent float64 `json:"weight_percent"`
	Sector        string  `json:"sector"`
}

// SectorWeight is the aggregated weight of one sector bucket.
type SectorWeight struct {
	Sector        string  `json:"sector"`
	WeightPercent float64 `json:"weight_percent"`
}

// Result is the full look-through computation output. FailedETFs lists
// portfolio entries that could not be matched; they never abort the run.
type Result struct {
	Success    bool           `json:"success"`
	Reason     string         `json:"reason,omitempty"`
	Positions  []Position     `json:"positions"`
	Sectors    []SectorWeight `json:"sectors"`
	FailedETFs []string       `json:"failed_etfs"`
}
