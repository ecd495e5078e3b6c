package core

import (
	"maps"

	"github.com/sentinelhq/sentinel/schema"
)

// CheckResultBuilder builds the policy check result using a builder pattern.
type CheckResultBuilder struct {
	deals         []schema.DealRisk
	dash          schema.Dashboard
	thresholds    map[schema.ThresholdKey]float64
	maxScore      int
	maxScoreDeals []string
	failedDeals   []schema.CheckFailedDeal
	violations    []schema.ThresholdKey
	result        *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
// Missing thresholds fall back to the policy defaults.
func NewCheckResultBuilder(deals []schema.DealRisk, dash schema.Dashboard, thresholds map[schema.ThresholdKey]float64) *CheckResultBuilder {
	merged := maps.Clone(schema.DefaultThresholds)
	maps.Copy(merged, thresholds)
	return &CheckResultBuilder{
		deals:      deals,
		dash:       dash,
		thresholds: merged,
	}
}

// ComputeMetrics finds the riskiest deals and the deals above the deal threshold.
func (b *CheckResultBuilder) ComputeMetrics() *CheckResultBuilder {
	limit := b.thresholds[schema.DealThreshold]
	b.failedDeals = []schema.CheckFailedDeal{}
	b.maxScoreDeals = []string{}
	b.maxScore = 0

	for i, d := range b.deals {
		score := d.OverallRiskScore
		switch {
		case i == 0 || score > b.maxScore:
			b.maxScore = score
			b.maxScoreDeals = []string{d.DealID}
		case score == b.maxScore:
			b.maxScoreDeals = append(b.maxScoreDeals, d.DealID)
		}

		if float64(score) > limit {
			b.failedDeals = append(b.failedDeals, schema.CheckFailedDeal{
				DealID:    d.DealID,
				DealName:  d.DealName,
				Rep:       d.Rep(),
				Score:     score,
				Level:     d.RiskLevel,
				Threshold: limit,
			})
		}
	}
	return b
}

// EvaluateThresholds records which portfolio thresholds are exceeded, in key order.
func (b *CheckResultBuilder) EvaluateThresholds() *CheckResultBuilder {
	b.violations = []schema.ThresholdKey{}
	if len(b.failedDeals) > 0 {
		b.violations = append(b.violations, schema.DealThreshold)
	}
	if float64(b.dash.AverageRiskScore) > b.thresholds[schema.AverageThreshold] {
		b.violations = append(b.violations, schema.AverageThreshold)
	}
	if b.dash.AtRiskPercent > b.thresholds[schema.AtRiskThreshold] {
		b.violations = append(b.violations, schema.AtRiskThreshold)
	}
	return b
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	b.result = &schema.CheckResult{
		Passed:        len(b.violations) == 0,
		TotalDeals:    len(b.deals),
		Thresholds:    b.thresholds,
		FailedDeals:   b.failedDeals,
		MaxScore:      b.maxScore,
		MaxScoreDeals: b.maxScoreDeals,
		AverageRisk:   b.dash.AverageRiskScore,
		AtRiskPercent: b.dash.AtRiskPercent,
		Violations:    b.violations,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}
