package core

import (
	"context"
	"fmt"

	"github.com/sentinelhq/sentinel/core/agg"
	"github.com/sentinelhq/sentinel/core/algo"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/dealsource"
	"github.com/sentinelhq/sentinel/internal/outwriter"
	"github.com/sentinelhq/sentinel/schema"
)

// portfolio is a loaded and filtered set of deals.
type portfolio struct {
	source string
	deals  []schema.DealRisk
}

// loadPortfolio reads the configured source and applies the deal filter.
func loadPortfolio(ctx context.Context, cfg *contract.Config, filter schema.DealFilter) (portfolio, error) {
	src, err := dealsource.FromConfig(cfg)
	if err != nil {
		return portfolio{}, err
	}
	return loadFrom(ctx, src, filter)
}

// loadFrom reads src and applies filter.
func loadFrom(ctx context.Context, src contract.DealSource, filter schema.DealFilter) (portfolio, error) {
	deals, err := src.Load(ctx)
	if err != nil {
		return portfolio{}, err
	}
	matched := algo.FilterDeals(deals, filter)
	contract.LogDebug("portfolio loaded", "source", src.Name(), "deals", len(deals), "matched", len(matched))
	return portfolio{source: src.Name(), deals: matched}, nil
}

// analyzePortfolio loads the deals, folds the dashboard and records the run.
func analyzePortfolio(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, command string) (portfolio, schema.Dashboard, error) {
	ctx = beginTracking(ctx, cfg, mgr, command)

	p, err := loadPortfolio(ctx, cfg, cfg.Filter)
	if err != nil {
		return portfolio{}, schema.Dashboard{}, err
	}
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		outwriter.PrintRunHeader(p.source, len(p.deals), cfg)
	}

	dash, err := BuildDashboard(ctx, p.deals, cfg.Workers)
	if err != nil {
		return portfolio{}, schema.Dashboard{}, err
	}
	endTracking(ctx, mgr, p.deals, dash)
	return p, dash, nil
}

// GetSummaryResults returns the dashboard with its alert feed and notable deals.
func GetSummaryResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.PortfolioSummary, error) {
	p, dash, err := analyzePortfolio(ctx, cfg, mgr, "summary")
	if err != nil {
		return schema.PortfolioSummary{}, err
	}
	return schema.PortfolioSummary{
		Dashboard: dash,
		Extremes:  algo.FindExtremes(p.deals),
		Alerts:    algo.Alerts(p.deals),
	}, nil
}

// GetRankedDealsResults returns the filtered deals in the configured order,
// truncated to the result limit.
func GetRankedDealsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.RankedDeal, error) {
	p, _, err := analyzePortfolio(ctx, cfg, mgr, "deals")
	if err != nil {
		return nil, err
	}
	sorted := algo.SortDeals(p.deals, cfg.Sort)
	return schema.RankDeals(algo.Limit(sorted, cfg.ResultLimit)), nil
}

// GetBreakdownResults returns the stage or rep rollup of the portfolio.
func GetBreakdownResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, kind schema.BreakdownKind) (schema.BreakdownResult, error) {
	if _, ok := schema.ValidBreakdownKinds[kind]; !ok {
		return schema.BreakdownResult{}, fmt.Errorf("invalid breakdown %q (must be stage or rep)", kind)
	}
	_, dash, err := analyzePortfolio(ctx, cfg, mgr, "breakdown")
	if err != nil {
		return schema.BreakdownResult{}, err
	}
	result := schema.BreakdownResult{Kind: kind}
	switch kind {
	case schema.RepBreakdownKind:
		result.Reps = dash.Reps
	default:
		result.Stages = dash.Stages
	}
	return result, nil
}

// GetDistributionResults returns the level, momentum and threat distributions.
func GetDistributionResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.Distribution, error) {
	_, dash, err := analyzePortfolio(ctx, cfg, mgr, "distribution")
	if err != nil {
		return schema.Distribution{}, err
	}
	return schema.Distribution{
		DealCount:                      dash.DealCount,
		RiskLevels:                     dash.RiskLevels,
		Momentum:                       dash.Momentum,
		CompetitiveThreats:             dash.CompetitiveThreats,
		AverageStakeholderCompleteness: dash.AverageStakeholderCompleteness,
	}, nil
}

// GetDealDetailResults looks up one deal across the whole portfolio, ignoring
// the deal filter. The rank is its position in the risk-descending ranking.
func GetDealDetailResults(ctx context.Context, cfg *contract.Config, dealID string) (schema.RankedDeal, error) {
	p, err := loadPortfolio(ctx, cfg, schema.DealFilter{})
	if err != nil {
		return schema.RankedDeal{}, err
	}
	for _, ranked := range schema.RankDeals(algo.RankByRiskDescending(p.deals)) {
		if ranked.DealID == dealID {
			return ranked, nil
		}
	}
	return schema.RankedDeal{}, fmt.Errorf("%w: %s", ErrDealNotFound, dealID)
}

// GetReportResults assembles the executive report.
func GetReportResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.Report, error) {
	p, dash, err := analyzePortfolio(ctx, cfg, mgr, "report")
	if err != nil {
		return schema.Report{}, err
	}
	return schema.Report{
		Dashboard:       dash,
		KeyMetrics:      agg.BuildKeyMetrics(dash),
		Recommendations: agg.BuildRecommendations(dash),
		Alerts:          algo.Alerts(p.deals),
		Extremes:        algo.FindExtremes(p.deals),
	}, nil
}

// GetValidationResults checks every record of the source, ignoring the deal filter.
func GetValidationResults(ctx context.Context, cfg *contract.Config) (schema.ValidationReport, error) {
	p, err := loadPortfolio(ctx, cfg, schema.DealFilter{})
	if err != nil {
		return schema.ValidationReport{}, err
	}
	issues := dealsource.Validate(p.deals)
	return schema.ValidationReport{
		Source:     p.source,
		TotalDeals: len(p.deals),
		Valid:      len(issues) == 0,
		Issues:     issues,
	}, nil
}
