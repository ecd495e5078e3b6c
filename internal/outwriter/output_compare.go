package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/sentinelhq/sentinel/core/agg"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// WriteComparisonResults outputs the comparison results, dispatching based on the output format configured.
func WriteComparisonResults(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, outputSpec{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csv:  func(w io.Writer) error { return writeComparisonCSV(w, result) },
		table: func(w io.Writer) error {
			return writeComparisonTable(w, result, cfg, duration)
		},
	})
}

// levelTransition describes how the stored risk level moved.
func levelTransition(d schema.DealDelta) string {
	switch d.Status {
	case schema.NewStatus:
		return "New: " + string(d.AfterLevel)
	case schema.RemovedStatus:
		return "Removed: " + string(d.BeforeLevel)
	}
	if d.LevelChanged() {
		return fmt.Sprintf("%s → %s", d.BeforeLevel, d.AfterLevel)
	}
	return string(d.AfterLevel) + " (stable)"
}

// signedCurrency renders a money delta with an explicit sign.
func signedCurrency(v float64) string {
	if v < 0 {
		return "-" + agg.FormatCurrency(-v)
	}
	return "+" + agg.FormatCurrency(v)
}

// writeComparisonTable writes the per-deal deltas and the comparison summary.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	var red, green, yellow func(...any) string
	if cfg.UseColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	} else {
		red = fmt.Sprint
		green = fmt.Sprint
		yellow = fmt.Sprint
	}

	var data [][]string
	for i, d := range result.Details {
		var deltaStr string
		switch {
		case d.Delta > 0:
			deltaStr = red(fmt.Sprintf("+%d ▲", d.Delta))
		case d.Delta < 0:
			deltaStr = green(fmt.Sprintf("%d ▼", d.Delta))
		default:
			deltaStr = yellow("0")
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			d.DealID,
			contract.TruncateText(d.DealName, maxNameWidth(cfg)),
			strconv.Itoa(d.BeforeScore),
			strconv.Itoa(d.AfterScore),
			deltaStr,
			signedCurrency(d.AtRiskDelta),
			levelTransition(d),
			string(d.Status),
		})
	}
	headers := []string{"Rank", "Deal", "Name", "Before", "After", "Delta", "Δ At Risk", "Level", "Status"}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(w, "Showing top %d changes\n", len(result.Details)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Net risk delta: %+d, Net at-risk delta: %s\n", s.NetRiskDelta, signedCurrency(s.NetAtRiskDelta)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average risk: %d → %d, Pipeline: %s → %s\n",
		s.BaseAverageRisk, s.TargetAverageRisk, agg.FormatCurrency(s.BasePipelineValue), agg.FormatCurrency(s.TargetPipelineValue)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "New deals: %d, Removed deals: %d, Active deals: %d, Level changes: %d\n",
		s.TotalNewDeals, s.TotalRemovedDeals, s.TotalActiveDeals, s.TotalLevelChanges); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Comparison completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, historyBackend(cfg))
	return err
}

// writeComparisonCSV writes the per-deal deltas.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult) error {
	header := []string{
		"rank",
		"deal_id",
		"deal_name",
		"rep_name",
		"status",
		"before_score",
		"after_score",
		"delta",
		"before_at_risk",
		"after_at_risk",
		"at_risk_delta",
		"before_level",
		"after_level",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, d := range result.Details {
			row := []string{
				strconv.Itoa(i + 1),
				d.DealID,
				d.DealName,
				d.Rep,
				string(d.Status),
				strconv.Itoa(d.BeforeScore),
				strconv.Itoa(d.AfterScore),
				strconv.Itoa(d.Delta),
				rawNumber(d.BeforeAtRisk),
				rawNumber(d.AfterAtRisk),
				rawNumber(d.AtRiskDelta),
				string(d.BeforeLevel),
				string(d.AfterLevel),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
