package schema

// DealDelta holds the base and target state of one deal and their deltas.
type DealDelta struct {
	DealID       string    `json:"deal_id"`
	DealName     string    `json:"deal_name"`
	Rep          string    `json:"rep_name"`
	Status       Status    `json:"status"`
	BeforeScore  int       `json:"before_score"`
	AfterScore   int       `json:"after_score"`
	Delta        int       `json:"delta"` // positive means riskier
	BeforeAtRisk float64   `json:"before_at_risk"`
	AfterAtRisk  float64   `json:"after_at_risk"`
	AtRiskDelta  float64   `json:"at_risk_delta"`
	BeforeLevel  RiskLevel `json:"before_level,omitempty"`
	AfterLevel   RiskLevel `json:"after_level,omitempty"`
}

// LevelChanged reports whether the stored risk level moved between snapshots.
func (d DealDelta) LevelChanged() bool {
	return d.Status == ActiveStatus && d.BeforeLevel != d.AfterLevel
}

// ComparisonSummary has high-level deltas and counts.
type ComparisonSummary struct {
	NetRiskDelta        int     `json:"net_risk_delta"`
	NetAtRiskDelta      float64 `json:"net_at_risk_delta"`
	BaseAverageRisk     int     `json:"base_average_risk"`
	TargetAverageRisk   int     `json:"target_average_risk"`
	BasePipelineValue   float64 `json:"base_pipeline_value"`
	TargetPipelineValue float64 `json:"target_pipeline_value"`
	TotalNewDeals       int     `json:"total_new_deals"`
	TotalRemovedDeals   int     `json:"total_removed_deals"`
	TotalActiveDeals    int     `json:"total_active_deals"`
	TotalLevelChanges   int     `json:"total_level_changes"`
}

// ComparisonResult holds the comparison details and summary.
type ComparisonResult struct {
	Details []DealDelta       `json:"details"`
	Summary ComparisonSummary `json:"summary"`
}
