// Package schema holds the deal-risk record model and the derived result types.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Intervention is one entry of a deal's remediation plan.
type Intervention struct {
	Priority               Priority `json:"priority" validate:"required"`
	Action                 string   `json:"action"`
	RoleOwner              string   `json:"role_owner"`
	DeadlineRecommendation string   `json:"deadline_recommendation"`
}

// DealRisk is a scored sales opportunity. Records are produced externally
// and never mutated once loaded.
type DealRisk struct {
	DealID    string  `json:"deal_id" validate:"required"`
	DealName  string  `json:"deal_name"`
	DealValue float64 `json:"deal_value" validate:"gte=0"`
	DealStage Stage   `json:"deal_stage"`
	RepName   string  `json:"rep_name,omitempty"`

	OverallRiskScore int       `json:"overall_risk_score" validate:"gte=0,lte=100"`
	RiskLevel        RiskLevel `json:"risk_level"`

	CloseProbabilityPercent     float64 `json:"close_probability_percent" validate:"gte=0,lte=100"`
	ThirtyDayFailureProbability float64 `json:"thirty_day_failure_probability" validate:"gte=0,lte=100"`
	RevenueAtRisk               float64 `json:"revenue_at_risk" validate:"gte=0"`

	MomentumClassification         Momentum    `json:"momentum_classification"`
	CompetitiveThreatLevel         ThreatLevel `json:"competitive_threat_level,omitempty"`
	StakeholderCompletenessPercent float64     `json:"stakeholder_completeness_percent" validate:"gte=0,lte=100"`

	BehavioralRiskIndicators    []string `json:"behavioral_risk_indicators"`
	PsychologicalRiskIndicators []string `json:"psychological_risk_indicators"`
	StructuralRiskIndicators    []string `json:"structural_risk_indicators"`

	InterventionPlan []Intervention `json:"intervention_plan" validate:"dive"`

	SalesCoachingRecommendation      string `json:"sales_coaching_recommendation"`
	ForecastAdjustmentRecommendation string `json:"forecast_adjustment_recommendation"`
	TimelineRiskAssessment           string `json:"timeline_risk_assessment"`

	// source is the compacted JSON object the record was decoded from.
	source json.RawMessage
}

// DecodeDeal parses one JSON object and keeps its bytes so exports can
// reproduce the record exactly, including keys the model does not know.
func DecodeDeal(data []byte) (DealRisk, error) {
	var d DealRisk
	if err := json.Unmarshal(data, &d); err != nil {
		return DealRisk{}, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return DealRisk{}, fmt.Errorf("failed to compact deal JSON: %w", err)
	}
	d.source = buf.Bytes()
	return d, nil
}

// Source returns the JSON the record was decoded from, or nil for records
// built in code.
func (d DealRisk) Source() json.RawMessage {
	return d.source
}

// PresentFields returns the keys of the decoded object that carry a non-null
// value. It returns nil for records built in code, where every field counts
// as present.
func (d DealRisk) PresentFields() map[string]bool {
	if d.source == nil {
		return nil
	}
	var obj map[string]json.RawMessage
	_ = json.Unmarshal(d.source, &obj)
	present := make(map[string]bool, len(obj))
	for key, value := range obj {
		if string(value) != "null" {
			present[key] = true
		}
	}
	return present
}

// fallbackIndicator is shown when a deal carries no indicators at all.
const fallbackIndicator = "Risk score elevated"

// Rep returns the owning rep, or UnknownRep when absent.
func (d DealRisk) Rep() string {
	if d.RepName == "" {
		return UnknownRep
	}
	return d.RepName
}

// Threat returns the competitive threat level, or NoThreat when absent.
func (d DealRisk) Threat() ThreatLevel {
	if d.CompetitiveThreatLevel == "" {
		return NoThreat
	}
	return d.CompetitiveThreatLevel
}

// StageLabel returns the display label of the deal stage.
func (d DealRisk) StageLabel() string {
	return d.DealStage.Label()
}

// ImmediateActions counts intervention plan entries with Immediate priority.
func (d DealRisk) ImmediateActions() int {
	n := 0
	for _, item := range d.InterventionPlan {
		if item.Priority == ImmediatePriority {
			n++
		}
	}
	return n
}

// TopIndicator returns the primary risk indicator, preferring behavioral,
// then structural, then psychological signals.
func (d DealRisk) TopIndicator() string {
	for _, list := range [][]string{d.BehavioralRiskIndicators, d.StructuralRiskIndicators, d.PsychologicalRiskIndicators} {
		if len(list) > 0 && list[0] != "" {
			return list[0]
		}
	}
	return fallbackIndicator
}

// IsAlert reports whether the deal belongs on the alert feed.
func (d DealRisk) IsAlert() bool {
	return d.RiskLevel == CriticalRisk || d.RiskLevel == HighRisk
}
