package schema

// CheckResult holds the results of a portfolio policy check.
type CheckResult struct {
	Passed        bool                     `json:"passed"`
	TotalDeals    int                      `json:"total_deals"`
	Thresholds    map[ThresholdKey]float64 `json:"thresholds"`
	FailedDeals   []CheckFailedDeal        `json:"failed_deals"`
	MaxScore      int                      `json:"max_score"`
	MaxScoreDeals []string                 `json:"max_score_deals"`
	AverageRisk   int                      `json:"average_risk"`
	AtRiskPercent float64                  `json:"at_risk_percent"`
	Violations    []ThresholdKey           `json:"violations"`
}

// CheckFailedDeal represents a deal whose score exceeds the deal threshold.
type CheckFailedDeal struct {
	DealID    string    `json:"deal_id"`
	DealName  string    `json:"deal_name"`
	Rep       string    `json:"rep_name"`
	Score     int       `json:"score"`
	Level     RiskLevel `json:"risk_level"`
	Threshold float64   `json:"threshold"`
}
