// Package core orchestrates loading deals, folding the dashboard and
// handing the results to the output writer.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/outwriter"
	"github.com/sentinelhq/sentinel/schema"
)

var (
	// ErrDealNotFound is returned when a deal ID is absent from the portfolio.
	ErrDealNotFound = errors.New("deal not found")

	// ErrPolicyViolation is returned by the check command when a threshold is exceeded.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrValidationFailed is returned by the validate command when any record has issues.
	ErrValidationFailed = errors.New("validation failed")
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteSummary prints the portfolio dashboard.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	summary, err := GetSummaryResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSummary(summary, cfg, time.Since(start))
}

// ExecuteDeals prints the ranked deal listing. Exports carry every matching
// deal; only the text table is truncated to the result limit.
func ExecuteDeals(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if cfg.Output != schema.TextOut {
		cfg = cfg.Clone()
		cfg.ResultLimit = 0
	}
	ranked, err := GetRankedDealsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDeals(ranked, cfg, time.Since(start))
}

// ExecuteBreakdown prints the stage or rep rollup.
func ExecuteBreakdown(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, kind schema.BreakdownKind) error {
	start := time.Now()
	result, err := GetBreakdownResults(ctx, cfg, mgr, kind)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteBreakdown(result, cfg, time.Since(start))
}

// ExecuteDistribution prints the categorical distributions.
func ExecuteDistribution(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	dist, err := GetDistributionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDistribution(dist, cfg, time.Since(start))
}

// ExecuteDealDetail prints the full record of one deal.
func ExecuteDealDetail(ctx context.Context, cfg *contract.Config, dealID string) error {
	deal, err := GetDealDetailResults(ctx, cfg, dealID)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDealDetail(deal, cfg)
}

// ExecuteReport prints the executive report.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetReportResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(report, cfg, time.Since(start))
}

// ExecuteValidate prints the validation issues of the source and fails
// when there are any.
func ExecuteValidate(ctx context.Context, cfg *contract.Config) error {
	report, err := GetValidationResults(ctx, cfg)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteValidation(report, cfg); err != nil {
		return err
	}
	if !report.Valid {
		return fmt.Errorf("%w: %d %s in %d %s", ErrValidationFailed,
			len(report.Issues), schema.Plural(len(report.Issues), "issue", "issues"),
			report.TotalDeals, schema.Plural(report.TotalDeals, "deal", "deals"))
	}
	return nil
}
