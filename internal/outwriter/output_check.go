package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// maxFailedShown caps the failed deals listed in text output.
const maxFailedShown = 5

// WriteCheckResults outputs policy check results, dispatching based on the output format configured.
func WriteCheckResults(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, outputSpec{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csv:  func(w io.Writer) error { return writeCheckCSV(w, result) },
		table: func(w io.Writer) error {
			return writeCheckText(w, result, cfg, duration)
		},
	})
}

// thresholdText renders the thresholds in their fixed display order.
func thresholdText(thresholds map[schema.ThresholdKey]float64) string {
	parts := make([]string, 0, len(schema.AllThresholdKeys))
	for _, key := range schema.AllThresholdKeys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, rawNumber(thresholds[key])))
	}
	return strings.Join(parts, ", ")
}

// writeCheckText prints the check result in a concise format suitable for CI/CD.
func writeCheckText(w io.Writer, result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	_, fmtPercent := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "Policy Check Results:\n  Thresholds: %s\n\nChecked %d %s in %v\n\n",
		thresholdText(result.Thresholds), result.TotalDeals, schema.Plural(result.TotalDeals, "deal", "deals"), duration); err != nil {
		return err
	}

	maxText := strconv.Itoa(result.MaxScore)
	if len(result.MaxScoreDeals) > 0 {
		maxText += " (" + result.MaxScoreDeals[0]
		if extra := len(result.MaxScoreDeals) - 1; extra > 0 {
			maxText += fmt.Sprintf(" +%d more", extra)
		}
		maxText += ")"
	}
	observed := fmt.Sprintf("Scores observed:\n  max=%s, avg=%d, at_risk=%s\n",
		maxText, result.AverageRisk, fmtPercent(result.AtRiskPercent))

	if result.Passed {
		_, err := fmt.Fprintf(w, "✅ Portfolio passed policy checks\n\n%s", observed)
		return err
	}

	if _, err := fmt.Fprintf(w, "❌ Policy check failed: %d threshold(s) exceeded\n\n", len(result.Violations)); err != nil {
		return err
	}
	for _, v := range result.Violations {
		var line string
		switch v {
		case schema.DealThreshold:
			line = fmt.Sprintf("deal: %d %s above %s", len(result.FailedDeals),
				schema.Plural(len(result.FailedDeals), "deal scores", "deals score"), rawNumber(result.Thresholds[v]))
		case schema.AverageThreshold:
			line = fmt.Sprintf("average: %d > %s", result.AverageRisk, rawNumber(result.Thresholds[v]))
		case schema.AtRiskThreshold:
			line = fmt.Sprintf("at_risk_percent: %s > %s", fmtPercent(result.AtRiskPercent), rawNumber(result.Thresholds[v])+"%")
		default:
			line = string(v)
		}
		if _, err := fmt.Fprintf(w, "  - %s\n", line); err != nil {
			return err
		}
	}

	if len(result.FailedDeals) > 0 {
		if _, err := fmt.Fprintf(w, "\nFailed deals (%d)\n", len(result.FailedDeals)); err != nil {
			return err
		}
		for i, f := range result.FailedDeals {
			if i >= maxFailedShown {
				if _, err := fmt.Fprintf(w, "  ... and %d more\n", len(result.FailedDeals)-maxFailedShown); err != nil {
					return err
				}
				break
			}
			if _, err := fmt.Fprintf(w, "  - %s %s (score: %s > threshold: %s)\n",
				f.DealID, f.DealName, scoreText(f.Score, cfg.UseColors), rawNumber(f.Threshold)); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\n%s", observed)
	return err
}

// writeCheckCSV writes one row per failed deal.
func writeCheckCSV(w io.Writer, result schema.CheckResult) error {
	header := []string{"deal_id", "deal_name", "rep_name", "score", "risk_level", "threshold"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range result.FailedDeals {
			row := []string{f.DealID, f.DealName, f.Rep, strconv.Itoa(f.Score), string(f.Level), rawNumber(f.Threshold)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
