package schema

import "time"

// RunSummary carries the portfolio totals written when a run completes.
type RunSummary struct {
	TotalDeals         int
	TotalPipelineValue float64
	TotalRevenueAtRisk float64
	AverageRiskScore   int
	CriticalDeals      int
}

// AnalysisRunRecord represents a row from the sentinel_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID         int64
	RunKey             string
	Command            string
	StartTime          time.Time
	EndTime            *time.Time
	RunDurationMs      *int32
	TotalDeals         int32
	TotalPipelineValue float64
	TotalRevenueAtRisk float64
	AverageRiskScore   int32
	CriticalDeals      int32
	ConfigParams       *string
}

// ValidationIssue describes one problem found in a loaded record.
type ValidationIssue struct {
	Index   int    `json:"index"`
	DealID  string `json:"deal_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationReport is the outcome of validating a loaded portfolio.
type ValidationReport struct {
	Source     string            `json:"source"`
	TotalDeals int               `json:"total_deals"`
	Valid      bool              `json:"valid"`
	Issues     []ValidationIssue `json:"issues"`
}
