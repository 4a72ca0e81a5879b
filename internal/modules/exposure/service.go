package exposure

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Service runs the look-through computation.
type Service struct {
	repo *HoldingsRepository
	log  zerolog.Logger
}

// NewService creates an exposure service
func NewService(repo *HoldingsRepository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "exposure").Logger(),
	}
}

// Compute resolves a user portfolio (display name -> raw weight or amount)
// into aggregated underlying-asset weights normalized to 100.
func (s *Service) Compute(ctx context.Context, portfolio map[string]float64) (*Result, error) {
	holdings, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeFromHoldings(portfolio, holdings), nil
}

// ComputeFromHoldings is the pure engine over an in-memory holdings table.
//
// Per portfolio entry: alias resolution, then exact name match, code match
// and name-substring match in that order; unmatched entries are recorded and
// skipped. Published weights are rescaled per ETF so each ETF's constituents
// sum to 100 before the user weight is applied.
func ComputeFromHoldings(portfolio map[string]float64, holdings []HoldingRow) *Result {
	result := &Result{FailedETFs: []string{}}

	var totalInput float64
	for _, v := range portfolio {
		totalInput += v
	}
	if totalInput <= 0 {
		result.Reason = "portfolio weights sum to zero"
		return result
	}
	if len(holdings) == 0 {
		result.Reason = "no holdings data"
		return result
	}

	// Per-ETF published weight sums and the derived scale corrections.
	sums := make(map[string]float64)
	byETF := make(map[string][]HoldingRow)
	for _, h := range holdings {
		sums[h.ETFName] += h.WeightPercent
		byETF[h.ETFName] = append(byETF[h.ETFName], h)
	}
	correction := make(map[string]float64, len(sums))
	for etf, sum := range sums {
		if sum > 0 {
			correction[etf] = 100.0 / sum
		}
	}

	// Lookup keys for the three-stage match.
	nameKey := make(map[string]string)   // normalized name -> etf name
	codeKey := make(map[string]string)   // normalized code -> etf name
	nameKeys := make([]string, 0, len(byETF))
	for etf := range byETF {
		key := normalizeKey(etf)
		nameKey[key] = etf
		nameKeys = append(nameKeys, key)
	}
	sort.Strings(nameKeys) // deterministic substring matching
	for _, h := range holdings {
		if h.ETFCode != "" {
			codeKey[normalizeKey(h.ETFCode)] = h.ETFName
		}
	}

	type accumulated struct {
		weight float64
		sector string
	}
	exposure := make(map[string]*accumulated)

	// Deterministic iteration over the portfolio.
	entries := make([]string, 0, len(portfolio))
	for name := range portfolio {
		entries = append(entries, name)
	}
	sort.Strings(entries)

	for _, input := range entries {
		userWeight := portfolio[input] / totalInput * 100
		if userWeight <= 0 {
			continue
		}

		searchKey := normalizeKey(resolveAlias(input))

		matched, ok := nameKey[searchKey]
		if !ok {
			matched, ok = codeKey[searchKey]
		}
		if !ok {
			for _, key := range nameKeys {
				if strings.Contains(key, searchKey) {
					matched, ok = nameKey[key], true
					break
				}
			}
		}
		if !ok {
			result.FailedETFs = append(result.FailedETFs, input)
			continue
		}

		factor := correction[matched]
		for _, row := range byETF[matched] {
			cleanName, keep := canonicalConstituent(row.ConstituentName)
			if !keep {
				continue
			}
			realWeight := row.WeightPercent * factor / 100 * userWeight
			acc, exists := exposure[cleanName]
			if !exists {
				acc = &accumulated{sector: classifySector(cleanName, row.Category)}
				exposure[cleanName] = acc
			}
			acc.weight += realWeight
		}
	}

	if len(exposure) == 0 {
		result.Reason = "no constituents resolved"
		return result
	}

	var total float64
	for _, acc := range exposure {
		total += acc.weight
	}

	positions := make([]Position, 0, len(exposure))
	sectorTotals := make(map[string]float64)
	for name, acc := range exposure {
		weight := acc.weight
		if total > 0 {
			weight = weight / total * 100
		}
		positions = append(positions, Position{Name: name, WeightPercent: weight, Sector: acc.sector})
		sectorTotals[acc.sector] += weight
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].WeightPercent != positions[j].WeightPercent {
			return positions[i].WeightPercent > positions[j].WeightPercent
		}
		return positions[i].Name < positions[j].Name
	})

	sectors := make([]SectorWeight, 0, len(sectorTotals))
	for sector, weight := range sectorTotals {
		sectors = append(sectors, SectorWeight{Sector: sector, WeightPercent: weight})
	}
	sort.Slice(sectors, func(i, j int) bool {
		if sectors[i].WeightPercent != sectors[j].WeightPercent {
			return sectors[i].WeightPercent > sectors[j].WeightPercent
		}
		return sectors[i].Sector < sectors[j].Sector
	})

	result.Success = true
	result.Positions = positions
	result.Sectors = sectors
	return result
}
