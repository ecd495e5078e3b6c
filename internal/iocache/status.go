package iocache

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sentinelhq/sentinel/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintAnalysisStatus prints analysis status information.
func PrintAnalysisStatus(w io.Writer, status schema.AnalysisStatus) {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis Backend: %s\n", status.Backend)
	fmt.Fprintf(&b, "Connected: %t\n", status.Connected)
	if status.Connected {
		fmt.Fprintf(&b, "Total Runs: %d\n", status.TotalRuns)
		if status.TotalRuns > 0 {
			fmt.Fprintf(&b, "Last Run ID: %d\n", status.LastRunID)
			fmt.Fprintf(&b, "Last Run: %s (%s)\n", status.LastRunTime.Local().Format(statusTimeLayout), humanize.Time(status.LastRunTime))
			fmt.Fprintf(&b, "Oldest Run: %s\n", status.OldestRunTime.Local().Format(statusTimeLayout))
			fmt.Fprintf(&b, "Total Deals Analyzed: %s\n", humanize.Comma(int64(status.TotalDealsAnalyzed)))
		}
		b.WriteString("Table Sizes:\n")
		tables := make([]string, 0, len(status.TableSizes))
		for table := range status.TableSizes {
			tables = append(tables, table)
		}
		slices.Sort(tables)
		for _, table := range tables {
			fmt.Fprintf(&b, "  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
		}
	}
	_, _ = io.WriteString(w, b.String())
}
