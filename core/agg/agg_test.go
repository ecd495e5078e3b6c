package agg

import (
	"testing"

	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
)

func twoDealPortfolio() []schema.DealRisk {
	return []schema.DealRisk{
		{DealID: "DEAL-4821", OverallRiskScore: 88, RiskLevel: schema.CriticalRisk, DealValue: 245000, RevenueAtRisk: 215600, DealStage: schema.NegotiationStage, RepName: "Sarah Chen"},
		{DealID: "DEAL-5133", OverallRiskScore: 18, RiskLevel: schema.LowRisk, DealValue: 128000, RevenueAtRisk: 23040, DealStage: schema.ProposalStage, RepName: "Marcus Rivera"},
	}
}

func TestTotalsAndCriticalCount(t *testing.T) {
	deals := twoDealPortfolio()

	assert.Equal(t, 373000.0, TotalPipelineValue(deals))
	assert.Equal(t, 238640.0, TotalRevenueAtRisk(deals))
	assert.Equal(t, 53, AverageRiskScore(deals))
	assert.Equal(t, 1, CriticalDealCount(deals))
}

func TestEmptyInput(t *testing.T) {
	for _, deals := range [][]schema.DealRisk{nil, {}} {
		assert.Equal(t, 0.0, TotalPipelineValue(deals))
		assert.Equal(t, 0.0, TotalRevenueAtRisk(deals))
		assert.Equal(t, 0, AverageRiskScore(deals))
		assert.Equal(t, 0, CriticalDealCount(deals))
		assert.Equal(t, schema.RiskLevelCounts{}, RiskLevelDistribution(deals))
		assert.Empty(t, StageBreakdown(deals))
		assert.Empty(t, RepBreakdown(deals))
		assert.Empty(t, MomentumDistribution(deals))
		assert.Empty(t, CompetitiveThreatDistribution(deals))
		assert.Equal(t, 0, TotalImmediateActions(deals))
		assert.Equal(t, 0.0, AverageStakeholderCompleteness(deals))
	}
}

func TestAverageRiskScore(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"single", []int{42}, 42},
		{"exact", []int{88, 18}, 53},
		{"round half up", []int{50, 51}, 51},
		{"round down", []int{10, 11, 11}, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := make([]schema.DealRisk, len(tt.scores))
			for i, s := range tt.scores {
				deals[i].OverallRiskScore = s
			}
			assert.Equal(t, tt.want, AverageRiskScore(deals))
		})
	}
}

func TestCriticalDealCountTrustsStoredLevel(t *testing.T) {
	deals := []schema.DealRisk{
		{OverallRiskScore: 90, RiskLevel: schema.HighRisk},
		{OverallRiskScore: 20, RiskLevel: schema.CriticalRisk},
	}
	assert.Equal(t, 1, CriticalDealCount(deals))
}

func TestStageBreakdown(t *testing.T) {
	deals := []schema.DealRisk{
		{DealStage: schema.ProposalStage, DealValue: 100},
		{DealStage: schema.NegotiationStage, DealValue: 50},
		{DealStage: schema.ProposalStage, DealValue: 25},
		{DealStage: schema.Stage("discovery"), DealValue: 10},
	}

	got := StageBreakdown(deals)
	assert.Equal(t, []schema.StageBucket{
		{Stage: "Proposal", Count: 2, Value: 125},
		{Stage: "Negotiation", Count: 1, Value: 50},
		{Stage: "discovery", Count: 1, Value: 10},
	}, got)
}

func TestStageBreakdownRoundTrip(t *testing.T) {
	deals := append(twoDealPortfolio(), schema.DealRisk{DealStage: schema.ProposalStage, DealValue: 7000})

	count, value := 0, 0.0
	for _, b := range StageBreakdown(deals) {
		count += b.Count
		value += b.Value
	}
	assert.Equal(t, len(deals), count)
	assert.Equal(t, TotalPipelineValue(deals), value)
}

func TestRepBreakdown(t *testing.T) {
	deals := []schema.DealRisk{
		{RepName: "Sarah Chen", DealValue: 245000, OverallRiskScore: 88, RevenueAtRisk: 215600},
		{DealValue: 1000, OverallRiskScore: 40, RevenueAtRisk: 400},
		{RepName: "Sarah Chen", DealValue: 175000, OverallRiskScore: 5, RevenueAtRisk: 8750},
	}

	got := RepBreakdown(deals)
	assert.Equal(t, []schema.RepBucket{
		{Rep: "Sarah Chen", Count: 2, Value: 420000, RiskSum: 93, AtRisk: 224350},
		{Rep: schema.UnknownRep, Count: 1, Value: 1000, RiskSum: 40, AtRisk: 400},
	}, got)
}

func TestRiskLevelDistribution(t *testing.T) {
	tests := []struct {
		name   string
		levels []schema.RiskLevel
		want   schema.RiskLevelCounts
	}{
		{"single level", []schema.RiskLevel{schema.HighRisk, schema.HighRisk}, schema.RiskLevelCounts{High: 2}},
		{"mixed", []schema.RiskLevel{schema.LowRisk, schema.CriticalRisk, schema.ModerateRisk}, schema.RiskLevelCounts{Low: 1, Moderate: 1, Critical: 1}},
		{"unrecognized ignored", []schema.RiskLevel{"Severe", schema.LowRisk}, schema.RiskLevelCounts{Low: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := make([]schema.DealRisk, len(tt.levels))
			for i, l := range tt.levels {
				deals[i].RiskLevel = l
			}
			assert.Equal(t, tt.want, RiskLevelDistribution(deals))
		})
	}
}

func TestMomentumDistribution(t *testing.T) {
	deals := []schema.DealRisk{
		{MomentumClassification: schema.CollapsedMomentum},
		{MomentumClassification: schema.StrongMomentum},
		{MomentumClassification: schema.CollapsedMomentum},
		{MomentumClassification: schema.Momentum("Stalled")},
	}
	assert.Equal(t, []schema.CountBucket{
		{Key: "Collapsed", Count: 2},
		{Key: "Strong", Count: 1},
		{Key: "Stalled", Count: 1},
	}, MomentumDistribution(deals))
}

func TestMissingRepAndThreatDefaults(t *testing.T) {
	deals := []schema.DealRisk{
		{DealID: "A", RepName: "Sarah Chen", CompetitiveThreatLevel: schema.HighThreat},
		{DealID: "B"},
	}

	reps := RepBreakdown(deals)
	unknown, ok := schema.FindRep(reps, schema.UnknownRep)
	assert.True(t, ok)
	assert.Equal(t, 1, unknown.Count)

	threats := CompetitiveThreatDistribution(deals)
	assert.Equal(t, 1, schema.FindCount(threats, "None Detected"))
	assert.Equal(t, 1, schema.FindCount(threats, "High"))
}

func TestTotalImmediateActions(t *testing.T) {
	deals := []schema.DealRisk{
		{InterventionPlan: []schema.Intervention{
			{Priority: schema.ImmediatePriority},
			{Priority: schema.ImmediatePriority},
			{Priority: schema.HighPriority},
		}},
		{InterventionPlan: []schema.Intervention{{Priority: schema.MediumPriority}}},
	}
	assert.Equal(t, 2, TotalImmediateActions(deals))
}

func TestAverageStakeholderCompleteness(t *testing.T) {
	deals := []schema.DealRisk{
		{StakeholderCompletenessPercent: 50},
		{StakeholderCompletenessPercent: 75},
		{StakeholderCompletenessPercent: 25},
	}
	assert.InDelta(t, 50.0, AverageStakeholderCompleteness(deals), 1e-9)
}

func TestAtRiskPercent(t *testing.T) {
	assert.Equal(t, 0.0, AtRiskPercent(100, 0))
	assert.InDelta(t, 25.0, AtRiskPercent(25, 100), 1e-9)
}

func TestInputNotMutated(t *testing.T) {
	deals := twoDealPortfolio()
	before := twoDealPortfolio()

	_ = Summarize(deals)
	_ = BuildExecutiveSummary(deals)

	assert.Equal(t, before, deals)
}
