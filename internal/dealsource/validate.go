package dealsource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sentinelhq/sentinel/schema"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports problems in a portfolio without rejecting it. Aggregation
// tolerates every issue listed here; the validate command surfaces them.
func Validate(deals []schema.DealRisk) []schema.ValidationIssue {
	var issues []schema.ValidationIssue
	seen := make(map[string]int, len(deals))

	for i, d := range deals {
		issues = append(issues, structIssues(i, d)...)

		if d.DealID != "" {
			if first, dup := seen[d.DealID]; dup {
				issues = append(issues, issue(i, d, "deal_id", fmt.Sprintf("duplicate deal_id, first seen at index %d", first)))
			} else {
				seen[d.DealID] = i
			}
		}

		switch {
		case !d.RiskLevel.Known():
			issues = append(issues, issue(i, d, "risk_level",
				fmt.Sprintf("unknown risk level %q is excluded from the level distribution", d.RiskLevel)))
		case schema.LevelForScore(d.OverallRiskScore) != d.RiskLevel:
			issues = append(issues, issue(i, d, "risk_level",
				fmt.Sprintf("stored level %s disagrees with score %d (%s)", d.RiskLevel, d.OverallRiskScore, schema.LevelForScore(d.OverallRiskScore))))
		}

		if d.MomentumClassification != "" && !d.MomentumClassification.Known() {
			issues = append(issues, issue(i, d, "momentum_classification",
				fmt.Sprintf("unrecognized momentum %q", d.MomentumClassification)))
		}
		if d.CompetitiveThreatLevel != "" && !d.CompetitiveThreatLevel.Known() {
			issues = append(issues, issue(i, d, "competitive_threat_level",
				fmt.Sprintf("unrecognized threat level %q", d.CompetitiveThreatLevel)))
		}
		for j, item := range d.InterventionPlan {
			if item.Priority != "" && !item.Priority.Known() {
				issues = append(issues, issue(i, d, fmt.Sprintf("intervention_plan[%d].priority", j),
					fmt.Sprintf("unrecognized priority %q", item.Priority)))
			}
		}
	}
	return issues
}

func structIssues(i int, d schema.DealRisk) []schema.ValidationIssue {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []schema.ValidationIssue{issue(i, d, "", err.Error())}
	}
	out := make([]schema.ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, issue(i, d, jsonFieldPath(fe.Namespace()), describe(fe)))
	}
	return out
}

// jsonFieldPath turns "DealRisk.InterventionPlan[0].Priority" into the JSON path.
func jsonFieldPath(ns string) string {
	_, path, found := strings.Cut(ns, ".")
	if !found {
		path = ns
	}
	return fieldNames.Replace(path)
}

var fieldNames = strings.NewReplacer(
	"DealID", "deal_id",
	"DealValue", "deal_value",
	"OverallRiskScore", "overall_risk_score",
	"CloseProbabilityPercent", "close_probability_percent",
	"ThirtyDayFailureProbability", "thirty_day_failure_probability",
	"RevenueAtRisk", "revenue_at_risk",
	"StakeholderCompletenessPercent", "stakeholder_completeness_percent",
	"InterventionPlan", "intervention_plan",
	"Priority", "priority",
)

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s (got %v)", fe.Param(), fe.Value())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func issue(i int, d schema.DealRisk, field, msg string) schema.ValidationIssue {
	return schema.ValidationIssue{Index: i, DealID: d.DealID, Field: field, Message: msg}
}
