// Package algo ranks, filters and picks deals. Every function works on a copy
// and keeps the relative order of equal elements.
package algo

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sentinelhq/sentinel/schema"
)

// RankByRiskDescending sorts deals by risk score, highest first.
func RankByRiskDescending(deals []schema.DealRisk) []schema.DealRisk {
	return sortedCopy(deals, func(a, b schema.DealRisk) int {
		return cmp.Compare(b.OverallRiskScore, a.OverallRiskScore)
	})
}

// RankByRiskAscending sorts deals by risk score, lowest first.
func RankByRiskAscending(deals []schema.DealRisk) []schema.DealRisk {
	return sortedCopy(deals, func(a, b schema.DealRisk) int {
		return cmp.Compare(a.OverallRiskScore, b.OverallRiskScore)
	})
}

// RankByRevenueAtRiskDescending sorts deals by revenue at risk, highest first.
func RankByRevenueAtRiskDescending(deals []schema.DealRisk) []schema.DealRisk {
	return sortedCopy(deals, func(a, b schema.DealRisk) int {
		return cmp.Compare(b.RevenueAtRisk, a.RevenueAtRisk)
	})
}

// RankByValueDescending sorts deals by deal value, highest first.
func RankByValueDescending(deals []schema.DealRisk) []schema.DealRisk {
	return sortedCopy(deals, func(a, b schema.DealRisk) int {
		return cmp.Compare(b.DealValue, a.DealValue)
	})
}

// RankByValueAscending sorts deals by deal value, lowest first.
func RankByValueAscending(deals []schema.DealRisk) []schema.DealRisk {
	return sortedCopy(deals, func(a, b schema.DealRisk) int {
		return cmp.Compare(a.DealValue, b.DealValue)
	})
}

// SortDeals orders deals according to mode. Unrecognized modes fall back to
// risk descending.
func SortDeals(deals []schema.DealRisk, mode schema.SortMode) []schema.DealRisk {
	switch mode {
	case schema.RiskAscSort:
		return RankByRiskAscending(deals)
	case schema.ValueDescSort:
		return RankByValueDescending(deals)
	case schema.ValueAscSort:
		return RankByValueAscending(deals)
	case schema.AtRiskDescSort:
		return RankByRevenueAtRiskDescending(deals)
	default:
		return RankByRiskDescending(deals)
	}
}

// HighestRiskDeal returns the first deal of the risk-descending ranking.
func HighestRiskDeal(deals []schema.DealRisk) (schema.DealRisk, bool) {
	return first(RankByRiskDescending(deals))
}

// LowestRiskDeal returns the first deal of the risk-ascending ranking.
func LowestRiskDeal(deals []schema.DealRisk) (schema.DealRisk, bool) {
	return first(RankByRiskAscending(deals))
}

// BiggestRevenueAtRisk returns the deal with the most revenue at risk.
func BiggestRevenueAtRisk(deals []schema.DealRisk) (schema.DealRisk, bool) {
	return first(RankByRevenueAtRiskDescending(deals))
}

// LargestDeal returns the deal with the highest value.
func LargestDeal(deals []schema.DealRisk) (schema.DealRisk, bool) {
	return first(RankByValueDescending(deals))
}

// FindExtremes collects the notable single deals of a portfolio.
func FindExtremes(deals []schema.DealRisk) schema.Extremes {
	var ex schema.Extremes
	if d, ok := HighestRiskDeal(deals); ok {
		ex.HighestRisk = &d
	}
	if d, ok := LowestRiskDeal(deals); ok {
		ex.LowestRisk = &d
	}
	if d, ok := BiggestRevenueAtRisk(deals); ok {
		ex.BiggestRevenueAtRisk = &d
	}
	if d, ok := LargestDeal(deals); ok {
		ex.LargestDeal = &d
	}
	return ex
}

// FilterDeals keeps deals matching every non-empty criterion of f.
// Search matches deal name or id case-insensitively; stage matches the
// display label; rep matches with the Unknown default applied.
func FilterDeals(deals []schema.DealRisk, f schema.DealFilter) []schema.DealRisk {
	if f.IsZero() {
		return slices.Clone(deals)
	}
	query := strings.ToLower(f.Search)
	var out []schema.DealRisk
	for _, d := range deals {
		if query != "" &&
			!strings.Contains(strings.ToLower(d.DealName), query) &&
			!strings.Contains(strings.ToLower(d.DealID), query) {
			continue
		}
		if f.Stage != "" && d.StageLabel() != f.Stage {
			continue
		}
		if f.Rep != "" && d.Rep() != f.Rep {
			continue
		}
		if f.Level != "" && d.RiskLevel != f.Level {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FindDeal returns the deal with the given id.
func FindDeal(deals []schema.DealRisk, dealID string) (schema.DealRisk, bool) {
	for _, d := range deals {
		if d.DealID == dealID {
			return d, true
		}
	}
	return schema.DealRisk{}, false
}

// Alerts returns the Critical and High deals as alert entries, riskiest first.
func Alerts(deals []schema.DealRisk) []schema.Alert {
	var flagged []schema.DealRisk
	for _, d := range deals {
		if d.IsAlert() {
			flagged = append(flagged, d)
		}
	}
	ranked := RankByRiskDescending(flagged)
	alerts := make([]schema.Alert, len(ranked))
	for i, d := range ranked {
		alerts[i] = schema.Alert{
			DealID:        d.DealID,
			DealName:      d.DealName,
			Rep:           d.Rep(),
			DealValue:     d.DealValue,
			RiskScore:     d.OverallRiskScore,
			RiskLevel:     d.RiskLevel,
			RevenueAtRisk: d.RevenueAtRisk,
			TopIndicator:  d.TopIndicator(),
		}
	}
	return alerts
}

// Limit returns at most n leading elements. Non-positive n returns everything.
func Limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func sortedCopy(deals []schema.DealRisk, cmpFn func(a, b schema.DealRisk) int) []schema.DealRisk {
	out := slices.Clone(deals)
	slices.SortStableFunc(out, cmpFn)
	return out
}

func first(deals []schema.DealRisk) (schema.DealRisk, bool) {
	if len(deals) == 0 {
		return schema.DealRisk{}, false
	}
	return deals[0], true
}
