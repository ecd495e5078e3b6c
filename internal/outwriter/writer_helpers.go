package outwriter

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
	"golang.org/x/term"
)

// ErrUnsupportedOutput is returned when a result has no rendering for the requested format.
var ErrUnsupportedOutput = errors.New("output format not supported for this command")

// outputSpec holds one renderer per output mode. A nil renderer means the
// mode is not available for that result.
type outputSpec struct {
	json    func(io.Writer) error
	csv     func(io.Writer) error
	parquet func(io.Writer) error
	table   func(io.Writer) error
}

// dispatch renders a result in the configured output mode.
func dispatch(cfg *contract.Config, spec outputSpec) error {
	var (
		render func(io.Writer) error
		msg    string
		label  string
	)
	switch cfg.Output {
	case schema.JSONOut:
		render, msg, label = spec.json, "Wrote JSON", "JSON"
	case schema.CSVOut:
		render, msg, label = spec.csv, "Wrote CSV", "CSV"
	case schema.ParquetOut:
		render, msg, label = spec.parquet, "Wrote Parquet", "Parquet"
	default:
		return writeWithFile(cfg.OutputFile, spec.table, "Wrote table")
	}
	if render == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, cfg.Output)
	}
	if err := writeWithFile(cfg.OutputFile, render, msg); err != nil {
		return fmt.Errorf("error writing %s output: %w", label, err)
	}
	return nil
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader creates a CSV writer, writes the header and then the data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// writeQuotedCSV writes a header line followed by rows where every field is
// quoted and embedded quotes are doubled.
func writeQuotedCSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(header, ",") + "\n"); err != nil {
		return err
	}
	quoted := make([]string, 0, len(header))
	for _, row := range rows {
		quoted = quoted[:0]
		for _, field := range row {
			quoted = append(quoted, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`)
		}
		if _, err := bw.WriteString(strings.Join(quoted, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtPercent func(float64) string) {
	fmtFloat = func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	fmtPercent = func(v float64) string {
		return fmtFloat(v) + "%"
	}
	return fmtFloat, fmtPercent
}

// rawNumber renders a number with the shortest exact representation.
func rawNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// newTable returns a table writer with right-aligned rows.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable fills and renders a table in one step.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := newTable(w, headers...)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeSection writes a blank line and a section title.
func writeSection(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, "\n%s\n", title)
	return err
}

// writeFooter writes the closing timing line shared by every table output.
func writeFooter(w io.Writer, cfg *contract.Config, verb string, count int, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "%s %d %s in %v with %d workers. History backend: %s\n",
		verb, count, schema.Plural(count, "deal", "deals"), duration, cfg.Workers, historyBackend(cfg))
	return err
}

// historyBackend names the run history backend for footers.
func historyBackend(cfg *contract.Config) schema.DatabaseBackend {
	if cfg.AnalysisBackend == "" {
		return schema.NoneBackend
	}
	return cfg.AnalysisBackend
}

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80
	}
	return detected
}

// maxNameWidth returns the width available to the deal name column.
func maxNameWidth(cfg *contract.Config) int {
	// Rank, ID, value, stage, rep, score, level, at-risk and momentum with borders
	const reserved = 100
	return min(max(terminalWidth(cfg)-reserved, 12), 40)
}

// scoreText renders a risk score colored by its display level.
func scoreText(score int, useColors bool) string {
	text := strconv.Itoa(score)
	if !useColors {
		return text
	}
	if c := contract.LevelColor(schema.LevelForScore(score)); c != nil {
		return c.Sprint(text)
	}
	return text
}
