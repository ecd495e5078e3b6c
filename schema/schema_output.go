package schema

// Dashboard is the full set of portfolio aggregates for one pass over the deals.
type Dashboard struct {
	DealCount                      int             `json:"deal_count"`
	TotalPipelineValue             float64         `json:"total_pipeline_value"`
	TotalRevenueAtRisk             float64         `json:"total_revenue_at_risk"`
	AtRiskPercent                  float64         `json:"at_risk_percent"`
	AverageRiskScore               int             `json:"average_risk_score"`
	CriticalDeals                  int             `json:"critical_deals"`
	ImmediateActions               int             `json:"immediate_actions"`
	AverageStakeholderCompleteness float64         `json:"average_stakeholder_completeness"`
	Stages                         []StageBucket   `json:"stages"`
	Reps                           []RepBucket     `json:"reps"`
	RiskLevels                     RiskLevelCounts `json:"risk_levels"`
	Momentum                       []CountBucket   `json:"momentum"`
	CompetitiveThreats             []CountBucket   `json:"competitive_threats"`
	ExecutiveSummary               string          `json:"executive_summary"`
}

// Extremes holds the notable single deals of a portfolio. Pointers are nil
// when the portfolio is empty.
type Extremes struct {
	HighestRisk          *DealRisk `json:"highest_risk,omitempty"`
	LowestRisk           *DealRisk `json:"lowest_risk,omitempty"`
	BiggestRevenueAtRisk *DealRisk `json:"biggest_revenue_at_risk,omitempty"`
	LargestDeal          *DealRisk `json:"largest_deal,omitempty"`
}

// Alert is one entry of the Critical/High alert feed.
type Alert struct {
	DealID        string    `json:"deal_id"`
	DealName      string    `json:"deal_name"`
	Rep           string    `json:"rep_name"`
	DealValue     float64   `json:"deal_value"`
	RiskScore     int       `json:"overall_risk_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
	RevenueAtRisk float64   `json:"revenue_at_risk"`
	TopIndicator  string    `json:"top_indicator"`
}

// KeyMetric is one row of the report's key metrics table.
type KeyMetric struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Detail string `json:"detail"`
}

// Report bundles everything the report command renders.
type Report struct {
	Dashboard       Dashboard   `json:"dashboard"`
	KeyMetrics      []KeyMetric `json:"key_metrics"`
	Recommendations []string    `json:"recommendations"`
	Alerts          []Alert     `json:"alerts"`
	Extremes        Extremes    `json:"extremes"`
}

// RankedDeal adds presentation data to a DealRisk.
type RankedDeal struct {
	Rank         int       `json:"rank"`
	DisplayLevel RiskLevel `json:"display_level"`
	DealRisk
}

// DealFilter narrows a deal listing. Empty fields match everything.
type DealFilter struct {
	Search string
	Stage  string
	Rep    string
	Level  RiskLevel
}

// IsZero reports whether the filter has no criteria.
func (f DealFilter) IsZero() bool {
	return f.Search == "" && f.Stage == "" && f.Rep == "" && f.Level == ""
}

// RankDeals adds rank and display level to a list of deals.
func RankDeals(deals []DealRisk) []RankedDeal {
	output := make([]RankedDeal, len(deals))
	for i, d := range deals {
		output[i] = RankedDeal{
			Rank:         i + 1,
			DisplayLevel: LevelForScore(d.OverallRiskScore),
			DealRisk:     d,
		}
	}
	return output
}

// PortfolioSummary is the dashboard plus the alert feed and notable deals.
type PortfolioSummary struct {
	Dashboard
	Extremes Extremes `json:"extremes"`
	Alerts   []Alert  `json:"alerts"`
}
