package parquet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertColumns(t *testing.T, row any, expected []string) {
	t.Helper()
	s := parquet.SchemaOf(row)
	require.NotNil(t, s)
	for _, colName := range expected {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestStructTags(t *testing.T) {
	assertColumns(t, new(AnalysisRun), []string{
		"analysis_id", "run_key", "command", "start_time", "end_time", "run_duration_ms",
		"total_deals", "total_pipeline_value", "total_revenue_at_risk", "average_risk_score",
		"critical_deals", "config_params",
	})
	assertColumns(t, new(DealSnapshot), []string{
		"analysis_id", "deal_id", "deal_name", "deal_stage", "rep_name", "recorded_at",
		"deal_value", "risk_score", "risk_level", "revenue_at_risk", "momentum",
		"threat_level", "close_probability", "immediate_actions",
	})
	assertColumns(t, new(DealRow), []string{
		"deal_id", "deal_name", "deal_value", "deal_stage", "rep_name", "overall_risk_score",
		"risk_level", "revenue_at_risk", "momentum_classification", "close_probability_percent",
		"top_indicator",
	})
}

func sampleRuns() []AnalysisRun {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"demo":true,"limit":25}`
	return []AnalysisRun{
		{
			AnalysisID: 1, RunKey: "5f0c7e0e-1b7a-4d1c-9a51-2a1c0c2d3e4f", Command: "summary",
			StartTime: start, EndTime: &end, RunDurationMs: &duration,
			TotalDeals: 5, TotalPipelineValue: 704000, TotalRevenueAtRisk: 384630,
			AverageRiskScore: 57, CriticalDeals: 2, ConfigParams: &params,
		},
		{AnalysisID: 2, RunKey: "a4c1d2e3-0000-4000-8000-000000000002", Command: "check", StartTime: start.Add(time.Hour)},
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis_runs.parquet")
	data := sampleRuns()

	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	readData, err := ReadFile[AnalysisRun](outputPath)
	require.NoError(t, err)
	require.Len(t, readData, len(data))

	for i := range data {
		assert.Equal(t, data[i].AnalysisID, readData[i].AnalysisID)
		assert.Equal(t, data[i].RunKey, readData[i].RunKey)
		assert.Equal(t, data[i].Command, readData[i].Command)
		assert.Equal(t, data[i].TotalDeals, readData[i].TotalDeals)
		assert.InDelta(t, data[i].TotalRevenueAtRisk, readData[i].TotalRevenueAtRisk, 0.001)
		assert.WithinDuration(t, data[i].StartTime, readData[i].StartTime, time.Microsecond)

		if data[i].EndTime == nil {
			assert.Nil(t, readData[i].EndTime)
		} else {
			require.NotNil(t, readData[i].EndTime)
			assert.WithinDuration(t, *data[i].EndTime, *readData[i].EndTime, time.Microsecond)
		}
		if data[i].ConfigParams == nil {
			assert.Nil(t, readData[i].ConfigParams)
		} else {
			require.NotNil(t, readData[i].ConfigParams)
			assert.Equal(t, *data[i].ConfigParams, *readData[i].ConfigParams)
		}
	}
}

func TestWriteDealSnapshotsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "deal_snapshots.parquet")
	momentum := "Collapsed"
	data := []DealSnapshot{
		{AnalysisID: 1, DealID: "DEAL-4821", DealName: "Acme", DealStage: "negotiation", RepName: "Sarah Chen",
			RecordedAt: time.Date(2026, 3, 2, 9, 0, 1, 0, time.UTC), DealValue: 245000, RiskScore: 88,
			RiskLevel: "Critical", RevenueAtRisk: 215600, Momentum: &momentum, ThreatLevel: "Moderate",
			CloseProbability: 12, ImmediateActions: 2},
		{AnalysisID: 1, DealID: "DEAL-5210", RepName: "Unknown", RiskLevel: "Low", ThreatLevel: "None Detected"},
	}

	require.NoError(t, WriteDealSnapshotsParquet(data, outputPath))

	readData, err := ReadFile[DealSnapshot](outputPath)
	require.NoError(t, err)
	require.Len(t, readData, 2)
	assert.Equal(t, "DEAL-4821", readData[0].DealID)
	assert.Equal(t, int32(88), readData[0].RiskScore)
	require.NotNil(t, readData[0].Momentum)
	assert.Equal(t, "Collapsed", *readData[0].Momentum)
	assert.Nil(t, readData[1].Momentum)
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteDealSnapshotsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestWriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	rows := ConvertDeals([]schema.DealRisk{{DealID: "D-1", OverallRiskScore: 40, RiskLevel: schema.ModerateRisk}})
	require.NoError(t, Write(&buf, rows))

	decoded, err := parquet.Read[DealRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "D-1", decoded[0].DealID)
	assert.Equal(t, schema.UnknownRep, decoded[0].RepName)
}

func TestConvertAnalysisRunRecords(t *testing.T) {
	end := time.Now()
	duration := int32(10)
	records := []schema.AnalysisRunRecord{{
		AnalysisID: 3, RunKey: "k", Command: "report", StartTime: end.Add(-time.Second),
		EndTime: &end, RunDurationMs: &duration, TotalDeals: 4, AverageRiskScore: 40, CriticalDeals: 1,
	}}

	runs := ConvertAnalysisRunRecords(records)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(3), runs[0].AnalysisID)
	assert.Equal(t, "report", runs[0].Command)
	assert.Equal(t, &end, runs[0].EndTime)
	assert.Equal(t, int32(4), runs[0].TotalDeals)
	assert.Empty(t, ConvertAnalysisRunRecords(nil))
}

func TestConvertDealSnapshotRecords(t *testing.T) {
	records := []schema.DealSnapshotRecord{{AnalysisID: 9, DealID: "D-9", RiskScore: 77, RiskLevel: "Critical", ImmediateActions: 3}}

	snapshots := ConvertDealSnapshotRecords(records)
	require.Len(t, snapshots, 1)
	assert.Equal(t, int64(9), snapshots[0].AnalysisID)
	assert.Equal(t, int32(77), snapshots[0].RiskScore)
	assert.Equal(t, int32(3), snapshots[0].ImmediateActions)
}

func TestConvertDeals(t *testing.T) {
	deals := []schema.DealRisk{{
		DealID:                   "D-1",
		DealStage:                "negotiation",
		OverallRiskScore:         81,
		RiskLevel:                schema.CriticalRisk,
		StructuralRiskIndicators: []string{"Single threaded"},
		InterventionPlan: []schema.Intervention{
			{Priority: schema.ImmediatePriority},
			{Priority: schema.MediumPriority},
		},
	}}

	rows := ConvertDeals(deals)
	require.Len(t, rows, 1)
	assert.Equal(t, "negotiation", rows[0].DealStage)
	assert.Equal(t, schema.UnknownRep, rows[0].RepName)
	assert.Equal(t, string(schema.NoThreat), rows[0].CompetitiveThreatLevel)
	assert.Equal(t, int32(1), rows[0].ImmediateActions)
	assert.Equal(t, "Single threaded", rows[0].TopIndicator)
}
