package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// WriteValidationResults outputs a validation report, dispatching based on the output format configured.
func WriteValidationResults(report schema.ValidationReport, cfg *contract.Config) error {
	return dispatch(cfg, outputSpec{
		json:  func(w io.Writer) error { return writeJSON(w, report) },
		csv:   func(w io.Writer) error { return writeValidationCSV(w, report) },
		table: func(w io.Writer) error { return writeValidationTable(w, report) },
	})
}

// writeValidationTable lists every issue, or a success line when there are none.
func writeValidationTable(w io.Writer, report schema.ValidationReport) error {
	deals := schema.Plural(report.TotalDeals, "deal", "deals")
	if report.Valid {
		_, err := fmt.Fprintf(w, "✅ %s: %d %s, no issues found\n", sourceName(report.Source), report.TotalDeals, deals)
		return err
	}

	var data [][]string
	for _, issue := range report.Issues {
		data = append(data, []string{strconv.Itoa(issue.Index), issue.DealID, issue.Field, issue.Message})
	}
	table := newTable(w, "Index", "Deal", "Field", "Issue")
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "❌ %s: %d %s in %d %s\n", sourceName(report.Source),
		len(report.Issues), schema.Plural(len(report.Issues), "issue", "issues"), report.TotalDeals, deals)
	return err
}

// writeValidationCSV writes one row per issue.
func writeValidationCSV(w io.Writer, report schema.ValidationReport) error {
	return writeCSVWithHeader(w, []string{"index", "deal_id", "field", "message"}, func(cw *csv.Writer) error {
		for _, issue := range report.Issues {
			if err := cw.Write([]string{strconv.Itoa(issue.Index), issue.DealID, issue.Field, issue.Message}); err != nil {
				return err
			}
		}
		return nil
	})
}
