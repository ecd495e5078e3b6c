package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/outwriter"
	"github.com/sentinelhq/sentinel/schema"
)

// GetCheckResults evaluates the portfolio against the configured policy thresholds.
func GetCheckResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.CheckResult, error) {
	p, dash, err := analyzePortfolio(ctx, cfg, mgr, "check")
	if err != nil {
		return schema.CheckResult{}, err
	}
	result := NewCheckResultBuilder(p.deals, dash, cfg.Thresholds).
		ComputeMetrics().
		EvaluateThresholds().
		BuildResult().
		GetResult()
	return *result, nil
}

// ExecuteCheck runs the check command for CI/CD gating. It prints the result
// and returns ErrPolicyViolation when any threshold is exceeded.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := GetCheckResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteCheck(result, cfg, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d %s exceeded", ErrPolicyViolation,
			len(result.Violations), schema.Plural(len(result.Violations), "threshold", "thresholds"))
	}
	return nil
}
