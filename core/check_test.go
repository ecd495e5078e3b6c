package core

import (
	"context"
	"testing"

	"github.com/sentinelhq/sentinel/core/agg"
	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckResultBuilder(t *testing.T) {
	deals := []schema.DealRisk{
		deal("A", 80, schema.CriticalRisk, 50000),
		deal("B", 40, schema.ModerateRisk, 10000),
		deal("C", 80, schema.CriticalRisk, 20000),
		deal("D", 10, schema.LowRisk, 0),
	}
	dash := agg.Summarize(deals)

	tests := []struct {
		name           string
		thresholds     map[schema.ThresholdKey]float64
		wantPassed     bool
		wantViolations []schema.ThresholdKey
		wantFailed     []string
	}{
		{
			name:           "defaults flag the two riskiest deals",
			thresholds:     nil,
			wantPassed:     false,
			wantViolations: []schema.ThresholdKey{schema.DealThreshold, schema.AverageThreshold},
			wantFailed:     []string{"A", "C"},
		},
		{
			name:           "score equal to threshold passes",
			thresholds:     map[schema.ThresholdKey]float64{schema.DealThreshold: 80, schema.AverageThreshold: 60},
			wantPassed:     true,
			wantViolations: []schema.ThresholdKey{},
			wantFailed:     []string{},
		},
		{
			name: "every threshold exceeded",
			thresholds: map[schema.ThresholdKey]float64{
				schema.DealThreshold:    30,
				schema.AverageThreshold: 20,
				schema.AtRiskThreshold:  10,
			},
			wantPassed:     false,
			wantViolations: []schema.ThresholdKey{schema.DealThreshold, schema.AverageThreshold, schema.AtRiskThreshold},
			wantFailed:     []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewCheckResultBuilder(deals, dash, tt.thresholds).
				ComputeMetrics().
				EvaluateThresholds().
				BuildResult().
				GetResult()
			require.NotNil(t, result)

			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, tt.wantViolations, result.Violations)
			failed := make([]string, 0, len(result.FailedDeals))
			for _, f := range result.FailedDeals {
				failed = append(failed, f.DealID)
			}
			assert.Equal(t, tt.wantFailed, failed)
			assert.Equal(t, 4, result.TotalDeals)
			assert.Equal(t, 80, result.MaxScore)
			assert.Equal(t, []string{"A", "C"}, result.MaxScoreDeals)
			assert.Equal(t, 53, result.AverageRisk)
			assert.InDelta(t, 20.0, result.AtRiskPercent, 1e-9)
		})
	}
}

func TestCheckResultBuilderEmptyPortfolio(t *testing.T) {
	result := NewCheckResultBuilder(nil, agg.Summarize(nil), nil).
		ComputeMetrics().
		EvaluateThresholds().
		BuildResult().
		GetResult()

	assert.True(t, result.Passed)
	assert.Zero(t, result.TotalDeals)
	assert.Zero(t, result.MaxScore)
	assert.Empty(t, result.MaxScoreDeals)
	assert.Empty(t, result.FailedDeals)
	assert.Equal(t, schema.DefaultThresholds, result.Thresholds)
}

func TestCheckResultBuilderDoesNotShareDefaults(t *testing.T) {
	result := NewCheckResultBuilder(nil, schema.Dashboard{}, map[schema.ThresholdKey]float64{schema.DealThreshold: 90}).
		BuildResult().
		GetResult()
	result.Thresholds[schema.AverageThreshold] = 1

	assert.Equal(t, 50.0, schema.DefaultThresholds[schema.AverageThreshold])
	assert.Equal(t, 90.0, result.Thresholds[schema.DealThreshold])
}

func TestGetCheckResultsDemo(t *testing.T) {
	result, err := GetCheckResults(WithSuppressHeader(context.Background()), demoConfig(t), nil)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 5, result.TotalDeals)
	assert.Equal(t, 100, result.MaxScore)
	assert.Equal(t, []string{"DEAL-4907"}, result.MaxScoreDeals)
	assert.Equal(t, 57, result.AverageRisk)
	assert.Equal(t, []schema.ThresholdKey{schema.DealThreshold, schema.AverageThreshold, schema.AtRiskThreshold}, result.Violations)
	require.Len(t, result.FailedDeals, 2)
	assert.Equal(t, "DEAL-4821", result.FailedDeals[0].DealID)
	assert.Equal(t, "Sarah Chen", result.FailedDeals[0].Rep)
	assert.Equal(t, "DEAL-4907", result.FailedDeals[1].DealID)
}

func TestExecuteCheck(t *testing.T) {
	t.Run("violations return ErrPolicyViolation", func(t *testing.T) {
		err := ExecuteCheck(context.Background(), demoConfig(t), nil)
		assert.ErrorIs(t, err, ErrPolicyViolation)
	})

	t.Run("relaxed thresholds pass", func(t *testing.T) {
		cfg := demoConfig(t)
		cfg.Thresholds = map[schema.ThresholdKey]float64{
			schema.DealThreshold:    100,
			schema.AverageThreshold: 100,
			schema.AtRiskThreshold:  100,
		}
		assert.NoError(t, ExecuteCheck(context.Background(), cfg, nil))
	})

	t.Run("filter narrows the checked deals", func(t *testing.T) {
		cfg := demoConfig(t)
		cfg.Filter = schema.DealFilter{Level: schema.LowRisk}
		assert.NoError(t, ExecuteCheck(context.Background(), cfg, nil))
	})
}
