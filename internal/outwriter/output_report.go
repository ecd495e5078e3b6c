package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// WriteReportResults outputs the risk summary report, dispatching based on the output format configured.
func WriteReportResults(report schema.Report, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, outputSpec{
		json: func(w io.Writer) error { return writeJSON(w, report) },
		csv:  func(w io.Writer) error { return writeReportCSV(w, report) },
		table: func(w io.Writer) error {
			return writeReportTable(w, report, cfg, duration)
		},
	})
}

// writeReportTable writes the executive summary, key metrics and recommendations.
func writeReportTable(w io.Writer, report schema.Report, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "Risk summary report\n\n%s\n", report.Dashboard.ExecutiveSummary); err != nil {
		return err
	}

	if err := writeSection(w, "Key metrics"); err != nil {
		return err
	}
	var data [][]string
	for _, m := range report.KeyMetrics {
		data = append(data, []string{m.Metric, m.Value, m.Detail})
	}
	if err := renderTable(w, []string{"Metric", "Value", "Detail"}, data); err != nil {
		return err
	}

	if err := writeBullets(w, "Recommendations", report.Recommendations); err != nil {
		return err
	}
	if err := writeAlertsTable(w, report.Alerts, cfg); err != nil {
		return err
	}
	if err := writeExtremes(w, report.Extremes); err != nil {
		return err
	}
	return writeFooter(w, cfg, "Reported on", report.Dashboard.DealCount, duration)
}

// writeReportCSV writes the key metrics table.
func writeReportCSV(w io.Writer, report schema.Report) error {
	return writeCSVWithHeader(w, []string{"metric", "value", "detail"}, func(cw *csv.Writer) error {
		for _, m := range report.KeyMetrics {
			if err := cw.Write([]string{m.Metric, m.Value, m.Detail}); err != nil {
				return err
			}
		}
		return nil
	})
}
