package agg

import "github.com/sentinelhq/sentinel/schema"

// Partial is the additive state of every portfolio fold. Partials built from
// contiguous partitions combine with Merge in partition order to the same
// result as a single fold over the whole input.
type Partial struct {
	Count          int
	Value          float64
	AtRisk         float64
	RiskSum        int
	Critical       int
	Immediate      int
	StakeholderSum float64
	Stages         []schema.StageBucket
	Reps           []schema.RepBucket
	Levels         schema.RiskLevelCounts
	Momentum       []schema.CountBucket
	Threats        []schema.CountBucket
}

// Fold computes the partial aggregate of deals.
func Fold(deals []schema.DealRisk) Partial {
	p := Partial{
		Count:     len(deals),
		Value:     TotalPipelineValue(deals),
		AtRisk:    TotalRevenueAtRisk(deals),
		Critical:  CriticalDealCount(deals),
		Immediate: TotalImmediateActions(deals),
		Stages:    StageBreakdown(deals),
		Reps:      RepBreakdown(deals),
		Levels:    RiskLevelDistribution(deals),
		Momentum:  MomentumDistribution(deals),
		Threats:   CompetitiveThreatDistribution(deals),
	}
	for _, d := range deals {
		p.RiskSum += d.OverallRiskScore
		p.StakeholderSum += d.StakeholderCompletenessPercent
	}
	return p
}

// Merge combines p with a partial computed over the records that follow it.
func (p Partial) Merge(next Partial) Partial {
	return Partial{
		Count:          p.Count + next.Count,
		Value:          p.Value + next.Value,
		AtRisk:         p.AtRisk + next.AtRisk,
		RiskSum:        p.RiskSum + next.RiskSum,
		Critical:       p.Critical + next.Critical,
		Immediate:      p.Immediate + next.Immediate,
		StakeholderSum: p.StakeholderSum + next.StakeholderSum,
		Stages:         MergeStageBreakdowns(p.Stages, next.Stages),
		Reps:           MergeRepBreakdowns(p.Reps, next.Reps),
		Levels:         p.Levels.Add(next.Levels),
		Momentum:       MergeCounts(p.Momentum, next.Momentum),
		Threats:        MergeCounts(p.Threats, next.Threats),
	}
}

// Dashboard finalizes the partial into the portfolio dashboard.
func (p Partial) Dashboard() schema.Dashboard {
	dash := schema.Dashboard{
		DealCount:          p.Count,
		TotalPipelineValue: p.Value,
		TotalRevenueAtRisk: p.AtRisk,
		AtRiskPercent:      AtRiskPercent(p.AtRisk, p.Value),
		AverageRiskScore:   roundedMean(p.RiskSum, p.Count),
		CriticalDeals:      p.Critical,
		ImmediateActions:   p.Immediate,
		Stages:             nonNil(p.Stages),
		Reps:               nonNil(p.Reps),
		RiskLevels:         p.Levels,
		Momentum:           nonNil(p.Momentum),
		CompetitiveThreats: nonNil(p.Threats),
	}
	if p.Count > 0 {
		dash.AverageStakeholderCompleteness = p.StakeholderSum / float64(p.Count)
	}
	dash.ExecutiveSummary = ExecutiveSummary(dash)
	return dash
}

// nonNil returns an empty slice for nil so empty portfolios encode as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Summarize folds deals in one pass and returns the dashboard.
func Summarize(deals []schema.DealRisk) schema.Dashboard {
	return Fold(deals).Dashboard()
}

// MergeStageBreakdowns appends next onto first, keeping first-occurrence order.
func MergeStageBreakdowns(first, next []schema.StageBucket) []schema.StageBucket {
	if len(next) == 0 {
		return first
	}
	if len(first) == 0 {
		return next
	}
	out := make([]schema.StageBucket, len(first), len(first)+len(next))
	copy(out, first)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.Stage] = i
	}
	for _, b := range next {
		if i, ok := index[b.Stage]; ok {
			out[i].Count += b.Count
			out[i].Value += b.Value
			continue
		}
		index[b.Stage] = len(out)
		out = append(out, b)
	}
	return out
}

// MergeRepBreakdowns appends next onto first, keeping first-occurrence order.
func MergeRepBreakdowns(first, next []schema.RepBucket) []schema.RepBucket {
	if len(next) == 0 {
		return first
	}
	if len(first) == 0 {
		return next
	}
	out := make([]schema.RepBucket, len(first), len(first)+len(next))
	copy(out, first)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.Rep] = i
	}
	for _, b := range next {
		if i, ok := index[b.Rep]; ok {
			out[i].Count += b.Count
			out[i].Value += b.Value
			out[i].RiskSum += b.RiskSum
			out[i].AtRisk += b.AtRisk
			continue
		}
		index[b.Rep] = len(out)
		out = append(out, b)
	}
	return out
}

// MergeCounts appends next onto first, keeping first-occurrence order.
func MergeCounts(first, next []schema.CountBucket) []schema.CountBucket {
	if len(next) == 0 {
		return first
	}
	if len(first) == 0 {
		return next
	}
	out := make([]schema.CountBucket, len(first), len(first)+len(next))
	copy(out, first)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.Key] = i
	}
	for _, b := range next {
		if i, ok := index[b.Key]; ok {
			out[i].Count += b.Count
			continue
		}
		index[b.Key] = len(out)
		out = append(out, b)
	}
	return out
}
