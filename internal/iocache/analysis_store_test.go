package iocache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeDeals() []schema.DealRisk {
	return []schema.DealRisk{
		{
			DealID:                  "DEAL-4907",
			DealName:                "Northwind Renewal",
			DealValue:               98000,
			DealStage:               schema.NegotiationStage,
			RepName:                 "Marcus Webb",
			OverallRiskScore:        88,
			RiskLevel:               schema.CriticalRisk,
			RevenueAtRisk:           86240,
			MomentumClassification:  schema.CollapsedMomentum,
			CompetitiveThreatLevel:  schema.HighThreat,
			CloseProbabilityPercent: 12,
			InterventionPlan: []schema.Intervention{
				{Priority: schema.ImmediatePriority, Action: "Exec sponsor call"},
				{Priority: schema.HighPriority, Action: "Refresh ROI model"},
			},
		},
		{
			DealID:                  "DEAL-5133",
			DealName:                "Contoso Expansion",
			DealValue:               120000,
			DealStage:               schema.ProposalStage,
			OverallRiskScore:        22,
			RiskLevel:               schema.LowRisk,
			RevenueAtRisk:           26400,
			CloseProbabilityPercent: 71,
		},
	}
}

func newMemoryStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*AnalysisStoreImpl)
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	analysisID, err := store.BeginAnalysis(time.Now(), "summary", map[string]any{"limit": 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), analysisID)

	assert.NoError(t, store.RecordDealSnapshots(1, time.Now(), storeDeals()))
	assert.NoError(t, store.EndAnalysis(1, time.Now(), schema.RunSummary{TotalDeals: 2}))

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestAnalysisStore_UnsupportedBackend(t *testing.T) {
	_, err := NewAnalysisStore("oracle", "")
	assert.Error(t, err)
}

func TestAnalysisStore_RunLifecycle(t *testing.T) {
	store := newMemoryStore(t)

	startTime := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	config := map[string]any{"input": "deals.json", "limit": 10}
	analysisID, err := store.BeginAnalysis(startTime, "summary", config)
	require.NoError(t, err)
	assert.Positive(t, analysisID)

	summary := schema.RunSummary{
		TotalDeals:         2,
		TotalPipelineValue: 218000,
		TotalRevenueAtRisk: 112640,
		AverageRiskScore:   55,
		CriticalDeals:      1,
	}
	require.NoError(t, store.EndAnalysis(analysisID, startTime.Add(1500*time.Millisecond), summary))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, analysisID, run.AnalysisID)
	assert.Len(t, run.RunKey, 36)
	assert.Equal(t, "summary", run.Command)
	assert.True(t, startTime.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, startTime.Add(1500*time.Millisecond).Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalDeals)
	assert.InDelta(t, 218000, run.TotalPipelineValue, 0.001)
	assert.InDelta(t, 112640, run.TotalRevenueAtRisk, 0.001)
	assert.Equal(t, int32(55), run.AverageRiskScore)
	assert.Equal(t, int32(1), run.CriticalDeals)

	require.NotNil(t, run.ConfigParams)
	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &stored))
	assert.Equal(t, "deals.json", stored["input"])
}

func TestAnalysisStore_UnfinishedRun(t *testing.T) {
	store := newMemoryStore(t)

	_, err := store.BeginAnalysis(time.Now(), "deals", nil)
	require.NoError(t, err)

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(0), runs[0].TotalDeals)
}

func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store := newMemoryStore(t)
	err := store.EndAnalysis(99, time.Now(), schema.RunSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis 99")
}

func TestAnalysisStore_UniqueRunIDs(t *testing.T) {
	store := newMemoryStore(t)

	seen := make(map[int64]bool)
	keys := make(map[string]bool)
	for i := range 3 {
		id, err := store.BeginAnalysis(time.Now(), "report", map[string]any{"run": i})
		require.NoError(t, err)
		seen[id] = true
	}
	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	for _, run := range runs {
		keys[run.RunKey] = true
	}
	assert.Len(t, seen, 3)
	assert.Len(t, keys, 3)
}

func TestAnalysisStore_RecordDealSnapshots(t *testing.T) {
	store := newMemoryStore(t)

	analysisID, err := store.BeginAnalysis(time.Now(), "deals", nil)
	require.NoError(t, err)

	recordedAt := time.Date(2026, 3, 2, 9, 0, 1, 0, time.UTC)
	require.NoError(t, store.RecordDealSnapshots(analysisID, recordedAt, storeDeals()))
	require.NoError(t, store.RecordDealSnapshots(analysisID, recordedAt, nil))

	snapshots, err := store.GetAllDealSnapshots()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	critical := snapshots[0]
	assert.Equal(t, analysisID, critical.AnalysisID)
	assert.Equal(t, "DEAL-4907", critical.DealID)
	assert.Equal(t, "Northwind Renewal", critical.DealName)
	assert.Equal(t, "negotiation", critical.DealStage)
	assert.Equal(t, "Marcus Webb", critical.RepName)
	assert.True(t, recordedAt.Equal(critical.RecordedAt))
	assert.Equal(t, int32(88), critical.RiskScore)
	assert.Equal(t, "Critical", critical.RiskLevel)
	require.NotNil(t, critical.Momentum)
	assert.Equal(t, "Collapsed", *critical.Momentum)
	assert.Equal(t, "High", critical.ThreatLevel)
	assert.Equal(t, int32(1), critical.ImmediateActions)

	low := snapshots[1]
	assert.Equal(t, "DEAL-5133", low.DealID)
	assert.Equal(t, schema.UnknownRep, low.RepName)
	assert.Nil(t, low.Momentum)
	assert.Equal(t, string(schema.NoThreat), low.ThreatLevel)
	assert.Equal(t, int32(0), low.ImmediateActions)
}

func TestAnalysisStore_DuplicateDealIDs(t *testing.T) {
	store := newMemoryStore(t)

	analysisID, err := store.BeginAnalysis(time.Now(), "deals", nil)
	require.NoError(t, err)

	deals := storeDeals()
	deals = append(deals, deals[0])
	require.NoError(t, store.RecordDealSnapshots(analysisID, time.Now(), deals))

	snapshots, err := store.GetAllDealSnapshots()
	require.NoError(t, err)
	assert.Len(t, snapshots, 3)
}

func TestAnalysisStore_GetStatus(t *testing.T) {
	store := newMemoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, map[string]int64{analysisRunsTable: 0, dealSnapshotsTable: 0}, status.TableSizes)

	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	last := first.Add(24 * time.Hour)
	for _, start := range []time.Time{first, last} {
		id, err := store.BeginAnalysis(start, "summary", nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordDealSnapshots(id, start, storeDeals()))
		require.NoError(t, store.EndAnalysis(id, start.Add(time.Second), schema.RunSummary{TotalDeals: 2}))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, int64(2), status.LastRunID)
	assert.True(t, last.Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 4, status.TotalDealsAnalyzed)
	assert.Equal(t, int64(2), status.TableSizes[analysisRunsTable])
	assert.Equal(t, int64(4), status.TableSizes[dealSnapshotsTable])
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, query, rebind(query, schema.SQLiteBackend))
	assert.Equal(t, query, rebind(query, schema.MySQLBackend))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", rebind(query, schema.PostgreSQLBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

func TestDBTimeScan(t *testing.T) {
	want := time.Date(2026, 3, 2, 9, 0, 0, 500, time.UTC)

	var fromTime, fromString, fromBytes, fromNil dbTime
	require.NoError(t, fromTime.Scan(want))
	require.NoError(t, fromString.Scan(want.Format(time.RFC3339Nano)))
	require.NoError(t, fromBytes.Scan([]byte(want.Format(time.RFC3339Nano))))
	require.NoError(t, fromNil.Scan(nil))

	assert.True(t, want.Equal(fromTime.Time))
	assert.True(t, want.Equal(fromString.Time))
	assert.True(t, want.Equal(fromBytes.Time))
	assert.Nil(t, fromNil.Ptr())
	require.NotNil(t, fromString.Ptr())

	var bad dbTime
	assert.Error(t, bad.Scan("yesterday"))
	assert.Error(t, bad.Scan(42))
}

func TestFormatTime(t *testing.T) {
	local := time.Date(2026, 3, 2, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-03-02T09:00:00Z", formatTime(local, schema.SQLiteBackend))
	assert.Equal(t, local.UTC(), formatTime(local, schema.PostgreSQLBackend))
}
