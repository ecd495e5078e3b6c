package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareDealsStatusClassification(t *testing.T) {
	base := []schema.DealRisk{
		deal("both", 40, schema.ModerateRisk, 1000),
		deal("only-base", 60, schema.HighRisk, 2000),
	}
	target := []schema.DealRisk{
		deal("both", 55, schema.HighRisk, 1500),
		deal("only-target", 20, schema.LowRisk, 500),
	}

	result := compareDeals(base, target, 10)
	require.Len(t, result.Details, 3)

	byID := make(map[string]schema.DealDelta)
	for _, d := range result.Details {
		byID[d.DealID] = d
	}

	both := byID["both"]
	assert.Equal(t, schema.ActiveStatus, both.Status)
	assert.Equal(t, 15, both.Delta)
	assert.Equal(t, 500.0, both.AtRiskDelta)
	assert.Equal(t, schema.ModerateRisk, both.BeforeLevel)
	assert.Equal(t, schema.HighRisk, both.AfterLevel)
	assert.True(t, both.LevelChanged())

	removed := byID["only-base"]
	assert.Equal(t, schema.RemovedStatus, removed.Status)
	assert.Equal(t, -60, removed.Delta)
	assert.Equal(t, "Deal only-base", removed.DealName)
	assert.False(t, removed.LevelChanged())

	added := byID["only-target"]
	assert.Equal(t, schema.NewStatus, added.Status)
	assert.Equal(t, 20, added.Delta)
	assert.Equal(t, schema.RiskLevel(""), added.BeforeLevel)

	assert.Equal(t, -25, result.Summary.NetRiskDelta)
	assert.Equal(t, 1, result.Summary.TotalNewDeals)
	assert.Equal(t, 1, result.Summary.TotalRemovedDeals)
	assert.Equal(t, 1, result.Summary.TotalActiveDeals)
	assert.Equal(t, 1, result.Summary.TotalLevelChanges)
}

func TestCompareDealsSkipsUnchanged(t *testing.T) {
	same := deal("same", 50, schema.HighRisk, 1000)
	result := compareDeals([]schema.DealRisk{same}, []schema.DealRisk{same}, 10)

	assert.Empty(t, result.Details)
	assert.Equal(t, 1, result.Summary.TotalActiveDeals)
	assert.Zero(t, result.Summary.NetRiskDelta)
}

func TestCompareDealsOrderingAndLimit(t *testing.T) {
	base := []schema.DealRisk{
		deal("a", 50, schema.HighRisk, 100),
		deal("b", 50, schema.HighRisk, 100),
		deal("c", 50, schema.HighRisk, 100),
		deal("d", 50, schema.HighRisk, 100),
	}
	target := []schema.DealRisk{
		deal("a", 40, schema.ModerateRisk, 100), // -10
		deal("b", 60, schema.HighRisk, 100),     // +10
		deal("c", 50, schema.HighRisk, 900),     // 0, at-risk moved
		deal("d", 80, schema.CriticalRisk, 100), // +30
	}

	result := compareDeals(base, target, 0)
	ids := make([]string, 0, len(result.Details))
	for _, d := range result.Details {
		ids = append(ids, d.DealID)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)

	limited := compareDeals(base, target, 2)
	require.Len(t, limited.Details, 2)
	assert.Equal(t, "d", limited.Details[0].DealID)
	assert.Equal(t, "b", limited.Details[1].DealID)
	assert.Equal(t, 4, limited.Summary.TotalActiveDeals)
}

func TestCompareDealsEmpty(t *testing.T) {
	result := compareDeals(nil, nil, 10)
	assert.Empty(t, result.Details)
	assert.Equal(t, schema.ComparisonSummary{}, result.Summary)
}

func writeDeals(t *testing.T, name string, deals []schema.DealRisk) string {
	t.Helper()
	data, err := json.Marshal(deals)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestGetComparisonResults(t *testing.T) {
	cfg := demoConfig(t)
	cfg.BaseInput = writeDeals(t, "base.json", []schema.DealRisk{
		deal("X", 30, schema.ModerateRisk, 10000),
		deal("Y", 70, schema.HighRisk, 40000),
	})
	cfg.TargetInput = writeDeals(t, "target.json", []schema.DealRisk{
		deal("X", 45, schema.ModerateRisk, 20000),
	})

	result, err := GetComparisonResults(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.Len(t, result.Details, 2)
	assert.Equal(t, "Y", result.Details[0].DealID)
	assert.Equal(t, schema.RemovedStatus, result.Details[0].Status)
	assert.Equal(t, 50, result.Summary.BaseAverageRisk)
	assert.Equal(t, 45, result.Summary.TargetAverageRisk)
	assert.Equal(t, 200000.0, result.Summary.BasePipelineValue)
	assert.Equal(t, 100000.0, result.Summary.TargetPipelineValue)
	assert.Equal(t, -30000.0, result.Summary.NetAtRiskDelta)
}

func TestGetComparisonResultsRequiresInputs(t *testing.T) {
	cfg := demoConfig(t)
	_, err := GetComparisonResults(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "--base and --target")

	cfg.BaseInput, cfg.TargetInput = "-", "-"
	_, err = GetComparisonResults(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "stdin")

	cfg.BaseInput, cfg.TargetInput = filepath.Join(t.TempDir(), "missing.json"), "-"
	_, err = GetComparisonResults(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecuteCompare(t *testing.T) {
	cfg := demoConfig(t)
	cfg.BaseInput = writeDeals(t, "base.json", []schema.DealRisk{deal("X", 30, schema.ModerateRisk, 10000)})
	cfg.TargetInput = writeDeals(t, "target.json", []schema.DealRisk{deal("X", 80, schema.CriticalRisk, 90000)})

	require.NoError(t, ExecuteCompare(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Details, 1)
	assert.Equal(t, 50, result.Details[0].Delta)
}
