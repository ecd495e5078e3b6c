package schema

// StageBucket accumulates deals sharing a stage label.
type StageBucket struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// RepBucket accumulates deals owned by one rep. RiskSum is kept undivided
// so buckets from different partitions can be added together.
type RepBucket struct {
	Rep     string  `json:"rep"`
	Count   int     `json:"count"`
	Value   float64 `json:"value"`
	RiskSum int     `json:"risk_sum"`
	AtRisk  float64 `json:"at_risk"`
}

// AverageRisk returns the mean risk score of the rep's deals.
func (b RepBucket) AverageRisk() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.RiskSum) / float64(b.Count)
}

// CountBucket is one key of a dynamically keyed distribution.
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RiskLevelCounts is the fixed four-key risk level distribution.
// Records carrying an unrecognized level are not counted here.
type RiskLevelCounts struct {
	Low      int `json:"Low"`
	Moderate int `json:"Moderate"`
	High     int `json:"High"`
	Critical int `json:"Critical"`
}

// Get returns the count for a level, or zero for unrecognized levels.
func (c RiskLevelCounts) Get(level RiskLevel) int {
	switch level {
	case LowRisk:
		return c.Low
	case ModerateRisk:
		return c.Moderate
	case HighRisk:
		return c.High
	case CriticalRisk:
		return c.Critical
	}
	return 0
}

// Increment bumps the counter for a level and reports whether it was recognized.
func (c *RiskLevelCounts) Increment(level RiskLevel) bool {
	switch level {
	case LowRisk:
		c.Low++
	case ModerateRisk:
		c.Moderate++
	case HighRisk:
		c.High++
	case CriticalRisk:
		c.Critical++
	default:
		return false
	}
	return true
}

// Add returns the element-wise sum of two distributions.
func (c RiskLevelCounts) Add(other RiskLevelCounts) RiskLevelCounts {
	return RiskLevelCounts{
		Low:      c.Low + other.Low,
		Moderate: c.Moderate + other.Moderate,
		High:     c.High + other.High,
		Critical: c.Critical + other.Critical,
	}
}

// Total returns the number of counted deals.
func (c RiskLevelCounts) Total() int {
	return c.Low + c.Moderate + c.High + c.Critical
}

// FindStage returns the bucket for a stage label.
func FindStage(buckets []StageBucket, stage string) (StageBucket, bool) {
	for _, b := range buckets {
		if b.Stage == stage {
			return b, true
		}
	}
	return StageBucket{}, false
}

// FindRep returns the bucket for a rep name.
func FindRep(buckets []RepBucket, rep string) (RepBucket, bool) {
	for _, b := range buckets {
		if b.Rep == rep {
			return b, true
		}
	}
	return RepBucket{}, false
}

// FindCount returns the count stored under key, or zero.
func FindCount(buckets []CountBucket, key string) int {
	for _, b := range buckets {
		if b.Key == key {
			return b.Count
		}
	}
	return 0
}

// BreakdownResult is the grouping rendered by the breakdown command.
// Only the slice matching Kind is populated.
type BreakdownResult struct {
	Kind   BreakdownKind `json:"kind"`
	Stages []StageBucket `json:"stages,omitempty"`
	Reps   []RepBucket   `json:"reps,omitempty"`
}

// Distribution holds the categorical distributions of a portfolio.
type Distribution struct {
	DealCount                      int             `json:"deal_count"`
	RiskLevels                     RiskLevelCounts `json:"risk_levels"`
	Momentum                       []CountBucket   `json:"momentum"`
	CompetitiveThreats             []CountBucket   `json:"competitive_threats"`
	AverageStakeholderCompleteness float64         `json:"average_stakeholder_completeness"`
}
