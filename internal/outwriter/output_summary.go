package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sentinelhq/sentinel/core/agg"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// WriteSummaryResults outputs the portfolio dashboard, dispatching based on the output format configured.
func WriteSummaryResults(summary schema.PortfolioSummary, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, outputSpec{
		json: func(w io.Writer) error { return writeJSON(w, summary) },
		csv:  func(w io.Writer) error { return writeSummaryCSV(w, summary.Dashboard) },
		table: func(w io.Writer) error {
			return writeSummaryTable(w, summary, cfg, duration)
		},
	})
}

// WriteBreakdownResults outputs a stage or rep breakdown, dispatching based on the output format configured.
func WriteBreakdownResults(result schema.BreakdownResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, outputSpec{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csv:  func(w io.Writer) error { return writeBreakdownCSV(w, result) },
		table: func(w io.Writer) error {
			if err := writeBreakdownTable(w, result, cfg); err != nil {
				return err
			}
			return writeFooter(w, cfg, "Grouped", breakdownDealCount(result), duration)
		},
	})
}

// WriteDistributionResults outputs the categorical distributions, dispatching based on the output format configured.
func WriteDistributionResults(dist schema.Distribution, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, outputSpec{
		json: func(w io.Writer) error { return writeJSON(w, dist) },
		csv:  func(w io.Writer) error { return writeDistributionCSV(w, dist) },
		table: func(w io.Writer) error {
			if err := writeDistributionTable(w, dist, cfg); err != nil {
				return err
			}
			return writeFooter(w, cfg, "Classified", dist.DealCount, duration)
		},
	})
}

// summaryMetrics returns the headline dashboard figures as label/value pairs.
func summaryMetrics(dash schema.Dashboard, fmtPercent func(float64) string) [][]string {
	return [][]string{
		{"Deals", strconv.Itoa(dash.DealCount)},
		{"Pipeline value", agg.FormatCurrency(dash.TotalPipelineValue)},
		{"Revenue at risk", agg.FormatCurrency(dash.TotalRevenueAtRisk)},
		{"At-risk share", fmtPercent(dash.AtRiskPercent)},
		{"Average risk score", strconv.Itoa(dash.AverageRiskScore)},
		{"Critical deals", strconv.Itoa(dash.CriticalDeals)},
		{"Immediate actions", strconv.Itoa(dash.ImmediateActions)},
		{"Stakeholder completeness", fmtPercent(dash.AverageStakeholderCompleteness)},
		{"Team size", strconv.Itoa(len(dash.Reps))},
	}
}

// writeSummaryTable generates and writes the dashboard tables.
func writeSummaryTable(w io.Writer, summary schema.PortfolioSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)
	dash := summary.Dashboard

	if _, err := fmt.Fprintf(w, "%s\n\n", dash.ExecutiveSummary); err != nil {
		return err
	}
	if err := renderTable(w, []string{"Metric", "Value"}, summaryMetrics(dash, fmtPercent)); err != nil {
		return err
	}

	if dash.DealCount > 0 {
		if err := writeSection(w, "Pipeline by stage"); err != nil {
			return err
		}
		if err := writeStageTable(w, dash.Stages, dash.TotalPipelineValue, fmtPercent); err != nil {
			return err
		}
		if err := writeSection(w, "Pipeline by rep"); err != nil {
			return err
		}
		if err := writeRepTable(w, dash.Reps, fmtFloat); err != nil {
			return err
		}
	}

	if err := writeAlertsTable(w, summary.Alerts, cfg); err != nil {
		return err
	}
	if err := writeExtremes(w, summary.Extremes); err != nil {
		return err
	}
	return writeFooter(w, cfg, "Summarized", dash.DealCount, duration)
}

// writeAlertsTable writes the Critical/High alert feed, or nothing when it is empty.
func writeAlertsTable(w io.Writer, alerts []schema.Alert, cfg *contract.Config) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := writeSection(w, fmt.Sprintf("Alerts (%d)", len(alerts))); err != nil {
		return err
	}
	nameWidth := maxNameWidth(cfg)
	var data [][]string
	for _, a := range alerts {
		data = append(data, []string{
			a.DealID,
			contract.TruncateText(a.DealName, nameWidth),
			schema.AbbreviateRep(a.Rep),
			scoreText(a.RiskScore, cfg.UseColors),
			contract.GetColorLabel(a.RiskLevel, cfg.UseColors),
			agg.FormatCurrency(a.RevenueAtRisk),
			contract.TruncateText(a.TopIndicator, nameWidth),
		})
	}
	return renderTable(w, []string{"Deal", "Name", "Rep", "Score", "Level", "At Risk", "Top Indicator"}, data)
}

// writeExtremes writes one line per notable deal.
func writeExtremes(w io.Writer, ex schema.Extremes) error {
	lines := []struct {
		label string
		deal  *schema.DealRisk
		value func(schema.DealRisk) string
	}{
		{"Highest risk", ex.HighestRisk, func(d schema.DealRisk) string { return "score " + strconv.Itoa(d.OverallRiskScore) }},
		{"Lowest risk", ex.LowestRisk, func(d schema.DealRisk) string { return "score " + strconv.Itoa(d.OverallRiskScore) }},
		{"Most revenue at risk", ex.BiggestRevenueAtRisk, func(d schema.DealRisk) string { return agg.FormatCurrency(d.RevenueAtRisk) }},
		{"Largest deal", ex.LargestDeal, func(d schema.DealRisk) string { return agg.FormatCurrency(d.DealValue) }},
	}
	wrote := false
	for _, l := range lines {
		if l.deal == nil {
			continue
		}
		if !wrote {
			if err := writeSection(w, "Notable deals"); err != nil {
				return err
			}
			wrote = true
		}
		if _, err := fmt.Fprintf(w, "  %-21s %s %s (%s)\n", l.label+":", l.deal.DealID, l.deal.DealName, l.value(*l.deal)); err != nil {
			return err
		}
	}
	if wrote {
		_, err := fmt.Fprintln(w)
		return err
	}
	return nil
}

// writeStageTable writes the stage buckets with their share of pipeline value.
func writeStageTable(w io.Writer, stages []schema.StageBucket, total float64, fmtPercent func(float64) string) error {
	var data [][]string
	for _, s := range stages {
		data = append(data, []string{
			s.Stage,
			strconv.Itoa(s.Count),
			agg.FormatCurrency(s.Value),
			fmtPercent(agg.AtRiskPercent(s.Value, total)),
		})
	}
	return renderTable(w, []string{"Stage", "Deals", "Value", "Share"}, data)
}

// writeRepTable writes the rep buckets with average risk and revenue at risk.
func writeRepTable(w io.Writer, reps []schema.RepBucket, fmtFloat func(float64) string) error {
	var data [][]string
	for _, r := range reps {
		data = append(data, []string{
			r.Rep,
			strconv.Itoa(r.Count),
			agg.FormatCurrency(r.Value),
			fmtFloat(r.AverageRisk()),
			agg.FormatCurrency(r.AtRisk),
		})
	}
	return renderTable(w, []string{"Rep", "Deals", "Value", "Avg Risk", "At Risk"}, data)
}

// writeSummaryCSV writes the headline dashboard figures as metric/value rows.
func writeSummaryCSV(w io.Writer, dash schema.Dashboard) error {
	rows := [][]string{
		{"deal_count", strconv.Itoa(dash.DealCount)},
		{"total_pipeline_value", rawNumber(dash.TotalPipelineValue)},
		{"total_revenue_at_risk", rawNumber(dash.TotalRevenueAtRisk)},
		{"at_risk_percent", rawNumber(dash.AtRiskPercent)},
		{"average_risk_score", strconv.Itoa(dash.AverageRiskScore)},
		{"critical_deals", strconv.Itoa(dash.CriticalDeals)},
		{"immediate_actions", strconv.Itoa(dash.ImmediateActions)},
		{"average_stakeholder_completeness", rawNumber(dash.AverageStakeholderCompleteness)},
	}
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		return cw.WriteAll(rows)
	})
}

// breakdownDealCount sums the bucket counts of a breakdown.
func breakdownDealCount(result schema.BreakdownResult) int {
	n := 0
	for _, s := range result.Stages {
		n += s.Count
	}
	for _, r := range result.Reps {
		n += r.Count
	}
	return n
}

// writeBreakdownTable writes the stage or rep table of a breakdown.
func writeBreakdownTable(w io.Writer, result schema.BreakdownResult, cfg *contract.Config) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)
	if result.Kind == schema.RepBreakdownKind {
		return writeRepTable(w, result.Reps, fmtFloat)
	}
	var total float64
	for _, s := range result.Stages {
		total += s.Value
	}
	return writeStageTable(w, result.Stages, total, fmtPercent)
}

// writeBreakdownCSV writes a breakdown as one row per bucket.
func writeBreakdownCSV(w io.Writer, result schema.BreakdownResult) error {
	if result.Kind == schema.RepBreakdownKind {
		return writeCSVWithHeader(w, []string{"rep_name", "deal_count", "total_value", "average_risk_score", "revenue_at_risk"}, func(cw *csv.Writer) error {
			for _, r := range result.Reps {
				if err := cw.Write([]string{r.Rep, strconv.Itoa(r.Count), rawNumber(r.Value), rawNumber(r.AverageRisk()), rawNumber(r.AtRisk)}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return writeCSVWithHeader(w, []string{"deal_stage", "deal_count", "total_value"}, func(cw *csv.Writer) error {
		for _, s := range result.Stages {
			if err := cw.Write([]string{s.Stage, strconv.Itoa(s.Count), rawNumber(s.Value)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDistributionTable writes the risk level, momentum and threat tables.
func writeDistributionTable(w io.Writer, dist schema.Distribution, cfg *contract.Config) error {
	_, fmtPercent := createFormatters(cfg.Precision)
	share := func(n int) string {
		if dist.DealCount == 0 {
			return fmtPercent(0)
		}
		return fmtPercent(float64(n) / float64(dist.DealCount) * 100)
	}

	if _, err := fmt.Fprintln(w, "Risk levels"); err != nil {
		return err
	}
	var levels [][]string
	for _, level := range schema.AllRiskLevels {
		n := dist.RiskLevels.Get(level)
		levels = append(levels, []string{contract.GetColorLabel(level, cfg.UseColors), strconv.Itoa(n), share(n)})
	}
	if err := renderTable(w, []string{"Level", "Deals", "Share"}, levels); err != nil {
		return err
	}

	buckets := []struct {
		title   string
		header  string
		entries []schema.CountBucket
	}{
		{"Momentum", "Momentum", dist.Momentum},
		{"Competitive threats", "Threat", dist.CompetitiveThreats},
	}
	for _, b := range buckets {
		if err := writeSection(w, b.title); err != nil {
			return err
		}
		var data [][]string
		for _, e := range b.entries {
			data = append(data, []string{e.Key, strconv.Itoa(e.Count), share(e.Count)})
		}
		if err := renderTable(w, []string{b.header, "Deals", "Share"}, data); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Average stakeholder completeness: %s\n", fmtPercent(dist.AverageStakeholderCompleteness))
	return err
}

// writeDistributionCSV writes every distribution as category/key/count rows.
func writeDistributionCSV(w io.Writer, dist schema.Distribution) error {
	return writeCSVWithHeader(w, []string{"category", "key", "count"}, func(cw *csv.Writer) error {
		for _, level := range schema.AllRiskLevels {
			if err := cw.Write([]string{"risk_level", string(level), strconv.Itoa(dist.RiskLevels.Get(level))}); err != nil {
				return err
			}
		}
		for _, m := range dist.Momentum {
			if err := cw.Write([]string{"momentum", m.Key, strconv.Itoa(m.Count)}); err != nil {
				return err
			}
		}
		for _, t := range dist.CompetitiveThreats {
			if err := cw.Write([]string{"competitive_threat", t.Key, strconv.Itoa(t.Count)}); err != nil {
				return err
			}
		}
		return nil
	})
}
