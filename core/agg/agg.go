// Package agg has the pure aggregation functions over deal-risk records.
// No function here mutates its input or returns an error; empty input yields
// zero values.
package agg

import (
	"math"

	"github.com/sentinelhq/sentinel/schema"
)

// TotalPipelineValue sums deal_value across deals.
func TotalPipelineValue(deals []schema.DealRisk) float64 {
	total := 0.0
	for _, d := range deals {
		total += d.DealValue
	}
	return total
}

// TotalRevenueAtRisk sums revenue_at_risk across deals.
func TotalRevenueAtRisk(deals []schema.DealRisk) float64 {
	total := 0.0
	for _, d := range deals {
		total += d.RevenueAtRisk
	}
	return total
}

// AverageRiskScore returns the mean risk score rounded to the nearest integer.
func AverageRiskScore(deals []schema.DealRisk) int {
	sum := 0
	for _, d := range deals {
		sum += d.OverallRiskScore
	}
	return roundedMean(sum, len(deals))
}

// CriticalDealCount counts deals whose stored level is Critical.
func CriticalDealCount(deals []schema.DealRisk) int {
	n := 0
	for _, d := range deals {
		if d.RiskLevel == schema.CriticalRisk {
			n++
		}
	}
	return n
}

// StageBreakdown groups deals by stage label in first-occurrence order.
func StageBreakdown(deals []schema.DealRisk) []schema.StageBucket {
	var buckets []schema.StageBucket
	index := make(map[string]int)
	for _, d := range deals {
		label := d.StageLabel()
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, schema.StageBucket{Stage: label})
		}
		buckets[i].Count++
		buckets[i].Value += d.DealValue
	}
	return buckets
}

// RepBreakdown groups deals by rep in first-occurrence order.
func RepBreakdown(deals []schema.DealRisk) []schema.RepBucket {
	var buckets []schema.RepBucket
	index := make(map[string]int)
	for _, d := range deals {
		rep := d.Rep()
		i, ok := index[rep]
		if !ok {
			i = len(buckets)
			index[rep] = i
			buckets = append(buckets, schema.RepBucket{Rep: rep})
		}
		buckets[i].Count++
		buckets[i].Value += d.DealValue
		buckets[i].RiskSum += d.OverallRiskScore
		buckets[i].AtRisk += d.RevenueAtRisk
	}
	return buckets
}

// RiskLevelDistribution counts deals per stored risk level. All four levels
// are always present.
func RiskLevelDistribution(deals []schema.DealRisk) schema.RiskLevelCounts {
	var counts schema.RiskLevelCounts
	for _, d := range deals {
		counts.Increment(d.RiskLevel)
	}
	return counts
}

// MomentumDistribution counts deals per momentum classification.
func MomentumDistribution(deals []schema.DealRisk) []schema.CountBucket {
	return countBy(deals, func(d schema.DealRisk) string {
		return string(d.MomentumClassification)
	})
}

// CompetitiveThreatDistribution counts deals per competitive threat level,
// with absent levels counted as None Detected.
func CompetitiveThreatDistribution(deals []schema.DealRisk) []schema.CountBucket {
	return countBy(deals, func(d schema.DealRisk) string {
		return string(d.Threat())
	})
}

// TotalImmediateActions counts Immediate intervention entries across deals.
func TotalImmediateActions(deals []schema.DealRisk) int {
	n := 0
	for _, d := range deals {
		n += d.ImmediateActions()
	}
	return n
}

// AverageStakeholderCompleteness returns the mean stakeholder completeness.
func AverageStakeholderCompleteness(deals []schema.DealRisk) float64 {
	if len(deals) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range deals {
		sum += d.StakeholderCompletenessPercent
	}
	return sum / float64(len(deals))
}

// AtRiskPercent returns atRisk as a percentage of total, or 0 when total is 0.
func AtRiskPercent(atRisk, total float64) float64 {
	if total == 0 {
		return 0
	}
	return atRisk / total * 100
}

// countBy builds a dynamically keyed distribution in first-occurrence order.
func countBy(deals []schema.DealRisk, key func(schema.DealRisk) string) []schema.CountBucket {
	var buckets []schema.CountBucket
	index := make(map[string]int)
	for _, d := range deals {
		k := key(d)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, schema.CountBucket{Key: k})
		}
		buckets[i].Count++
	}
	return buckets
}

func roundedMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}
