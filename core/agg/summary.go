package agg

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sentinelhq/sentinel/schema"
)

// elevatedRiskScore is the average score at which portfolio risk reads as elevated.
const elevatedRiskScore = 50

// significantAtRiskShare is the at-risk fraction of pipeline that triggers coaching advice.
const significantAtRiskShare = 0.3

// FormatCurrency renders a monetary amount as whole dollars with separators.
// Non-finite amounts render as "$n/a".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$n/a"
	}
	rounded := math.Round(v)
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return "$" + humanize.Commaf(rounded)
}

// FormatPercent renders a percentage rounded to a whole number.
func FormatPercent(p float64) string {
	return strconv.Itoa(int(math.Round(p))) + "%"
}

// RiskQualifier describes the average risk score in one word.
func RiskQualifier(avg int) string {
	if avg >= elevatedRiskScore {
		return "elevated"
	}
	return "manageable"
}

// BuildExecutiveSummary composes the narrative summary for deals.
func BuildExecutiveSummary(deals []schema.DealRisk) string {
	return ExecutiveSummary(Summarize(deals))
}

// ExecutiveSummary composes the narrative summary from dashboard figures.
func ExecutiveSummary(dash schema.Dashboard) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The pipeline contains %d %s with a total value of %s.",
		dash.DealCount, schema.Plural(dash.DealCount, "deal", "deals"), FormatCurrency(dash.TotalPipelineValue))

	if dash.TotalRevenueAtRisk > 0 {
		fmt.Fprintf(&b, " %s (%s) is flagged as revenue at risk.",
			FormatCurrency(dash.TotalRevenueAtRisk), FormatPercent(dash.AtRiskPercent))
	} else {
		b.WriteString(" No revenue is currently flagged at risk.")
	}

	fmt.Fprintf(&b, " Average risk score across deals is %d (%s).",
		dash.AverageRiskScore, RiskQualifier(dash.AverageRiskScore))

	if dash.CriticalDeals > 0 {
		fmt.Fprintf(&b, " %d %s in Critical risk and %s immediate attention.",
			dash.CriticalDeals,
			schema.Plural(dash.CriticalDeals, "deal is", "deals are"),
			schema.Plural(dash.CriticalDeals, "requires", "require"))
	} else {
		b.WriteString(" No deals are in Critical risk.")
	}

	fmt.Fprintf(&b, " There %s %d immediate-priority %s across the pipeline.",
		schema.Plural(dash.ImmediateActions, "is", "are"),
		dash.ImmediateActions,
		schema.Plural(dash.ImmediateActions, "intervention", "interventions"))

	return b.String()
}

// BuildKeyMetrics returns the rows of the report's key metrics table.
func BuildKeyMetrics(dash schema.Dashboard) []schema.KeyMetric {
	atRiskDetail := "-"
	if dash.TotalPipelineValue != 0 {
		atRiskDetail = FormatPercent(dash.AtRiskPercent) + " of pipeline"
	}
	qualifier := RiskQualifier(dash.AverageRiskScore)

	return []schema.KeyMetric{
		{Metric: "Total pipeline", Value: FormatCurrency(dash.TotalPipelineValue), Detail: fmt.Sprintf("%d %s", dash.DealCount, schema.Plural(dash.DealCount, "deal", "deals"))},
		{Metric: "Revenue at risk", Value: FormatCurrency(dash.TotalRevenueAtRisk), Detail: atRiskDetail},
		{Metric: "Average risk score", Value: strconv.Itoa(dash.AverageRiskScore), Detail: strings.ToUpper(qualifier[:1]) + qualifier[1:]},
		{Metric: "Critical deals", Value: strconv.Itoa(dash.CriticalDeals), Detail: "Risk score >= 75"},
		{Metric: "Immediate actions", Value: strconv.Itoa(dash.ImmediateActions), Detail: "Interventions due 24-48h"},
		{Metric: "Team size", Value: strconv.Itoa(len(dash.Reps)), Detail: "Reps with active deals"},
	}
}

// BuildRecommendations returns the ordered recommendation list for a dashboard.
func BuildRecommendations(dash schema.Dashboard) []string {
	var recs []string

	if dash.CriticalDeals > 0 {
		recs = append(recs, fmt.Sprintf("Review and potentially downgrade %d critical %s in forecast.",
			dash.CriticalDeals, schema.Plural(dash.CriticalDeals, "deal", "deals")))
	}
	if dash.ImmediateActions > 0 {
		recs = append(recs, fmt.Sprintf("Execute %d immediate-priority %s (see deal detail for actions).",
			dash.ImmediateActions, schema.Plural(dash.ImmediateActions, "intervention", "interventions")))
	}
	if dash.TotalRevenueAtRisk > dash.TotalPipelineValue*significantAtRiskShare {
		recs = append(recs, "Pipeline has significant revenue at risk; consider coaching focus on multi-threading and re-engagement.")
	}
	if top, ok := LargestRepPipeline(dash.Reps); ok {
		recs = append(recs, fmt.Sprintf("Largest pipeline by rep: %s (%s).", top.Rep, FormatCurrency(top.Value)))
	}
	recs = append(recs, "Export data with --output csv or --output json for offline analysis or sharing.")

	return recs
}

// LargestRepPipeline returns the rep bucket with the highest value.
// Ties go to the rep that appeared first.
func LargestRepPipeline(reps []schema.RepBucket) (schema.RepBucket, bool) {
	if len(reps) == 0 {
		return schema.RepBucket{}, false
	}
	sorted := slices.Clone(reps)
	slices.SortStableFunc(sorted, func(a, b schema.RepBucket) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
	return sorted[0], true
}
