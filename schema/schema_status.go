package schema

import "time"

// AnalysisStatus represents the status of the run history store.
type AnalysisStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalRuns          int              `json:"total_runs"`
	LastRunID          int64            `json:"last_run_id"`
	LastRunTime        time.Time        `json:"last_run_time"`
	OldestRunTime      time.Time        `json:"oldest_run_time"`
	TotalDealsAnalyzed int              `json:"total_deals_analyzed"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}

// DealSnapshotRecord represents a row from the sentinel_deal_snapshots table.
type DealSnapshotRecord struct {
	AnalysisID       int64
	DealID           string
	DealName         string
	DealStage        string
	RepName          string
	RecordedAt       time.Time
	DealValue        float64
	RiskScore        int32
	RiskLevel        string
	RevenueAtRisk    float64
	Momentum         *string
	ThreatLevel      string
	CloseProbability float64
	ImmediateActions int32
}
