package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sentinelhq/sentinel/core/agg"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/parquet"
	"github.com/sentinelhq/sentinel/schema"
)

// dealCSVHeader is the fixed column order of the deal export.
var dealCSVHeader = []string{
	"deal_id",
	"deal_name",
	"deal_value",
	"deal_stage",
	"rep_name",
	"overall_risk_score",
	"risk_level",
	"revenue_at_risk",
	"momentum_classification",
	"close_probability_percent",
}

// WriteDealResults outputs a ranked deal listing, dispatching based on the output format configured.
func WriteDealResults(deals []schema.RankedDeal, cfg *contract.Config, duration time.Duration) error {
	raw := unrank(deals)
	return dispatch(cfg, outputSpec{
		json:    func(w io.Writer) error { return writeDealsJSON(w, raw) },
		csv:     func(w io.Writer) error { return writeDealsCSV(w, raw) },
		parquet: func(w io.Writer) error { return parquet.Write(w, parquet.ConvertDeals(raw)) },
		table: func(w io.Writer) error {
			return writeDealsTable(w, deals, cfg, duration)
		},
	})
}

// WriteDealDetailResults outputs a single deal, dispatching based on the output format configured.
func WriteDealDetailResults(deal schema.RankedDeal, cfg *contract.Config) error {
	raw := []schema.DealRisk{deal.DealRisk}
	return dispatch(cfg, outputSpec{
		json:    func(w io.Writer) error { return writeJSON(w, deal) },
		csv:     func(w io.Writer) error { return writeDealsCSV(w, raw) },
		parquet: func(w io.Writer) error { return parquet.Write(w, parquet.ConvertDeals(raw)) },
		table:   func(w io.Writer) error { return writeDealDetail(w, deal, cfg) },
	})
}

// unrank strips the presentation fields so exports carry the records unchanged.
func unrank(deals []schema.RankedDeal) []schema.DealRisk {
	raw := make([]schema.DealRisk, len(deals))
	for i, d := range deals {
		raw[i] = d.DealRisk
	}
	return raw
}

// writeDealsJSON writes the records as they were read. Records built in
// code have no source bytes and are marshaled from their fields.
func writeDealsJSON(w io.Writer, deals []schema.DealRisk) error {
	records := make([]json.RawMessage, len(deals))
	for i, d := range deals {
		if src := d.Source(); src != nil {
			records[i] = src
			continue
		}
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to encode deal %s: %w", d.DealID, err)
		}
		records[i] = data
	}
	return writeJSON(w, records)
}

// writeDealsCSV writes the fixed ten-column export with raw field values.
// Keys absent or null in the source record are written as empty fields.
func writeDealsCSV(w io.Writer, deals []schema.DealRisk) error {
	rows := make([][]string, len(deals))
	for i, d := range deals {
		present := d.PresentFields()
		values := []string{
			d.DealID,
			d.DealName,
			rawNumber(d.DealValue),
			string(d.DealStage),
			d.RepName,
			strconv.Itoa(d.OverallRiskScore),
			string(d.RiskLevel),
			rawNumber(d.RevenueAtRisk),
			string(d.MomentumClassification),
			rawNumber(d.CloseProbabilityPercent),
		}
		for j, key := range dealCSVHeader {
			if present != nil && !present[key] {
				values[j] = ""
			}
		}
		rows[i] = values
	}
	return writeQuotedCSV(w, dealCSVHeader, rows)
}

// writeDealsTable generates and writes the human-readable deal table.
func writeDealsTable(w io.Writer, deals []schema.RankedDeal, cfg *contract.Config, duration time.Duration) error {
	nameWidth := maxNameWidth(cfg)
	var data [][]string
	for _, d := range deals {
		data = append(data, []string{
			strconv.Itoa(d.Rank),
			d.DealID,
			contract.TruncateText(d.DealName, nameWidth),
			agg.FormatCurrency(d.DealValue),
			d.StageLabel(),
			schema.AbbreviateRep(d.Rep()),
			scoreText(d.OverallRiskScore, cfg.UseColors),
			contract.GetColorLabel(d.RiskLevel, cfg.UseColors),
			agg.FormatCurrency(d.RevenueAtRisk),
			string(d.MomentumClassification),
		})
	}
	headers := []string{"Rank", "Deal", "Name", "Value", "Stage", "Rep", "Score", "Level", "At Risk", "Momentum"}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	var value, atRisk float64
	for _, d := range deals {
		value += d.DealValue
		atRisk += d.RevenueAtRisk
	}
	if _, err := fmt.Fprintf(w, "Showing %d %s (value: %s, at risk: %s)\n",
		len(deals), schema.Plural(len(deals), "deal", "deals"), agg.FormatCurrency(value), agg.FormatCurrency(atRisk)); err != nil {
		return err
	}
	return writeFooter(w, cfg, "Ranked", len(deals), duration)
}

// writeDealDetail writes every section of one deal record.
func writeDealDetail(w io.Writer, d schema.RankedDeal, cfg *contract.Config) error {
	_, fmtPercent := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%s  %s\n", d.DealID, d.DealName); err != nil {
		return err
	}
	fields := [][2]string{
		{"Rank:", fmt.Sprintf("#%d by risk", d.Rank)},
		{"Value:", agg.FormatCurrency(d.DealValue)},
		{"Stage:", d.StageLabel()},
		{"Rep:", d.Rep()},
		{"Risk:", fmt.Sprintf("%s (%s)", scoreText(d.OverallRiskScore, cfg.UseColors), contract.GetColorLabel(d.RiskLevel, cfg.UseColors))},
		{"At risk:", agg.FormatCurrency(d.RevenueAtRisk)},
		{"Close probability:", fmtPercent(d.CloseProbabilityPercent)},
		{"30-day failure:", fmtPercent(d.ThirtyDayFailureProbability)},
		{"Momentum:", string(d.MomentumClassification)},
		{"Competitive threat:", string(d.Threat())},
		{"Stakeholders:", fmtPercent(d.StakeholderCompletenessPercent)},
	}
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f[0]))
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "  %-*s %s\n", labelWidth, f[0], f[1]); err != nil {
			return err
		}
	}

	indicators := []struct {
		title string
		items []string
	}{
		{"Behavioral indicators", d.BehavioralRiskIndicators},
		{"Structural indicators", d.StructuralRiskIndicators},
		{"Psychological indicators", d.PsychologicalRiskIndicators},
	}
	for _, group := range indicators {
		if len(group.items) == 0 {
			continue
		}
		if err := writeBullets(w, group.title, group.items); err != nil {
			return err
		}
	}

	if len(d.InterventionPlan) > 0 {
		if err := writeSection(w, "Intervention plan"); err != nil {
			return err
		}
		var data [][]string
		for _, item := range d.InterventionPlan {
			data = append(data, []string{string(item.Priority), item.Action, item.RoleOwner, item.DeadlineRecommendation})
		}
		if err := renderTable(w, []string{"Priority", "Action", "Owner", "Deadline"}, data); err != nil {
			return err
		}
	}

	notes := [][2]string{
		{"Timeline", d.TimelineRiskAssessment},
		{"Coaching", d.SalesCoachingRecommendation},
		{"Forecast", d.ForecastAdjustmentRecommendation},
	}
	for _, n := range notes {
		if strings.TrimSpace(n[1]) == "" {
			continue
		}
		if err := writeSection(w, n[0]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\n", n[1]); err != nil {
			return err
		}
	}
	return nil
}

// writeBullets writes a titled bullet list.
func writeBullets(w io.Writer, title string, items []string) error {
	if err := writeSection(w, title); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "  - %s\n", item); err != nil {
			return err
		}
	}
	return nil
}
