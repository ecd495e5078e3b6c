// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the portfolio dashboard using the configured output format.
func (ow *OutWriter) WriteSummary(summary schema.PortfolioSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteSummaryResults(summary, cfg, duration)
}

// WriteDeals prints a ranked deal listing using the configured output format.
func (ow *OutWriter) WriteDeals(deals []schema.RankedDeal, cfg *contract.Config, duration time.Duration) error {
	return WriteDealResults(deals, cfg, duration)
}

// WriteBreakdown prints a stage or rep breakdown using the configured output format.
func (ow *OutWriter) WriteBreakdown(result schema.BreakdownResult, cfg *contract.Config, duration time.Duration) error {
	return WriteBreakdownResults(result, cfg, duration)
}

// WriteDistribution prints the categorical distributions using the configured output format.
func (ow *OutWriter) WriteDistribution(dist schema.Distribution, cfg *contract.Config, duration time.Duration) error {
	return WriteDistributionResults(dist, cfg, duration)
}

// WriteDealDetail prints one deal in full using the configured output format.
func (ow *OutWriter) WriteDealDetail(deal schema.RankedDeal, cfg *contract.Config) error {
	return WriteDealDetailResults(deal, cfg)
}

// WriteReport prints the risk summary report using the configured output format.
func (ow *OutWriter) WriteReport(report schema.Report, cfg *contract.Config, duration time.Duration) error {
	return WriteReportResults(report, cfg, duration)
}

// WriteCheck prints policy check results using the configured output format.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheckResults(result, cfg, duration)
}

// WriteComparison prints comparison results using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return WriteComparisonResults(result, cfg, duration)
}

// WriteValidation prints a validation report using the configured output format.
func (ow *OutWriter) WriteValidation(report schema.ValidationReport, cfg *contract.Config) error {
	return WriteValidationResults(report, cfg)
}

// PrintRunHeader prints a concise, 2-line header before a table output.
func PrintRunHeader(source string, count int, cfg *contract.Config) {
	writeRunHeader(os.Stdout, source, count, cfg)
}

// PrintCompareHeader prints the header for a comparison run.
func PrintCompareHeader(cfg *contract.Config) {
	writeCompareHeader(os.Stdout, cfg)
}

func writeRunHeader(w io.Writer, source string, count int, cfg *contract.Config) {
	fmt.Fprintf(w, "🔎 Source: %s (%d %s)\n", sourceName(source), count, schema.Plural(count, "deal", "deals"))
	fmt.Fprintf(w, "📊 Sort: %s%s\n", cfg.Sort, filterText(cfg.Filter))
}

func writeCompareHeader(w io.Writer, cfg *contract.Config) {
	fmt.Fprintf(w, "📊 Comparing: %s ↔ %s\n", sourceName(cfg.BaseInput), sourceName(cfg.TargetInput))
}

// sourceName shortens a source path to its base name for headers.
func sourceName(source string) string {
	switch source {
	case "":
		return "unknown"
	case "-":
		return "stdin"
	}
	return filepath.Base(source)
}

// filterText renders the active filter criteria, or nothing when unfiltered.
func filterText(f schema.DealFilter) string {
	if f.IsZero() {
		return ""
	}
	text := " | Filter:"
	if f.Search != "" {
		text += fmt.Sprintf(" search=%q", f.Search)
	}
	if f.Stage != "" {
		text += " stage=" + f.Stage
	}
	if f.Rep != "" {
		text += fmt.Sprintf(" rep=%q", f.Rep)
	}
	if f.Level != "" {
		text += " level=" + string(f.Level)
	}
	return text
}
