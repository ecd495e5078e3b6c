package core

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/sentinelhq/sentinel/core/algo"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/dealsource"
	"github.com/sentinelhq/sentinel/internal/outwriter"
	"github.com/sentinelhq/sentinel/schema"
)

// GetComparisonResults loads the base and target snapshots and computes per-deal deltas.
func GetComparisonResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.ComparisonResult, error) {
	if cfg.BaseInput == "" || cfg.TargetInput == "" {
		return schema.ComparisonResult{}, errors.New("compare requires --base and --target. Example: sentinel compare --base last-week.json --target today.json")
	}
	if cfg.BaseInput == dealsource.StdinPath && cfg.TargetInput == dealsource.StdinPath {
		return schema.ComparisonResult{}, errors.New("only one of --base and --target can read from stdin")
	}

	base, baseDash, err := analyzePortfolio(WithSuppressHeader(ctx), cfg.CloneWithInput(cfg.BaseInput), nil, "compare-base")
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	target, targetDash, err := analyzePortfolio(WithSuppressHeader(ctx), cfg.CloneWithInput(cfg.TargetInput), mgr, "compare")
	if err != nil {
		return schema.ComparisonResult{}, err
	}

	result := compareDeals(base.deals, target.deals, cfg.ResultLimit)
	result.Summary.BaseAverageRisk = baseDash.AverageRiskScore
	result.Summary.TargetAverageRisk = targetDash.AverageRiskScore
	result.Summary.BasePipelineValue = baseDash.TotalPipelineValue
	result.Summary.TargetPipelineValue = targetDash.TotalPipelineValue
	result.Summary.NetAtRiskDelta = targetDash.TotalRevenueAtRisk - baseDash.TotalRevenueAtRisk
	return result, nil
}

// ExecuteCompare prints the deltas between two portfolio snapshots.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		outwriter.PrintCompareHeader(cfg)
	}
	result, err := GetComparisonResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteComparison(result, cfg, time.Since(start))
}

// compareDeals matches deals by deal_id. Deals present on one side only are
// new or removed; active deals are kept only when something changed.
func compareDeals(baseDeals, targetDeals []schema.DealRisk, limit int) schema.ComparisonResult {
	baseMap := make(map[string]schema.DealRisk, len(baseDeals))
	targetMap := make(map[string]schema.DealRisk, len(targetDeals))
	var ids []string
	seen := make(map[string]struct{}, len(baseDeals)+len(targetDeals))
	collect := func(deals []schema.DealRisk, into map[string]schema.DealRisk) {
		for _, d := range deals {
			into[d.DealID] = d
			if _, ok := seen[d.DealID]; !ok {
				seen[d.DealID] = struct{}{}
				ids = append(ids, d.DealID)
			}
		}
	}
	collect(baseDeals, baseMap)
	collect(targetDeals, targetMap)

	details := make([]schema.DealDelta, 0, len(ids))
	var summary schema.ComparisonSummary

	for _, id := range ids {
		before, baseExists := baseMap[id]
		after, targetExists := targetMap[id]

		delta := schema.DealDelta{DealID: id, Status: determineStatus(baseExists, targetExists)}
		latest := after
		if baseExists {
			delta.BeforeScore = before.OverallRiskScore
			delta.BeforeAtRisk = before.RevenueAtRisk
			delta.BeforeLevel = before.RiskLevel
		}
		if targetExists {
			delta.AfterScore = after.OverallRiskScore
			delta.AfterAtRisk = after.RevenueAtRisk
			delta.AfterLevel = after.RiskLevel
		} else {
			latest = before
		}
		delta.DealName = latest.DealName
		delta.Rep = latest.Rep()
		delta.Delta = delta.AfterScore - delta.BeforeScore
		delta.AtRiskDelta = delta.AfterAtRisk - delta.BeforeAtRisk

		summary.NetRiskDelta += delta.Delta
		switch delta.Status {
		case schema.NewStatus:
			summary.TotalNewDeals++
		case schema.RemovedStatus:
			summary.TotalRemovedDeals++
		default:
			summary.TotalActiveDeals++
		}
		if delta.LevelChanged() {
			summary.TotalLevelChanges++
		}

		if delta.Status != schema.ActiveStatus || delta.Delta != 0 || delta.AtRiskDelta != 0 || delta.LevelChanged() {
			details = append(details, delta)
		}
	}

	sortDealDeltas(details)
	return schema.ComparisonResult{Details: algo.Limit(details, limit), Summary: summary}
}

// determineStatus returns the status based on existence in base and target.
func determineStatus(baseExists, targetExists bool) schema.Status {
	switch {
	case baseExists && targetExists:
		return schema.ActiveStatus
	case baseExists:
		return schema.RemovedStatus
	default:
		return schema.NewStatus
	}
}

// sortDealDeltas orders by absolute risk delta, then riskier first, then
// absolute at-risk delta, then deal ID.
func sortDealDeltas(details []schema.DealDelta) {
	slices.SortStableFunc(details, func(a, b schema.DealDelta) int {
		if c := cmp.Compare(absInt(b.Delta), absInt(a.Delta)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Delta, a.Delta); c != 0 {
			return c
		}
		if c := cmp.Compare(math.Abs(b.AtRiskDelta), math.Abs(a.AtRiskDelta)); c != 0 {
			return c
		}
		return cmp.Compare(a.DealID, b.DealID)
	})
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
