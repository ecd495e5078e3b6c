package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/parquet"
)

// ErrNoHistory is returned when an export finds no recorded runs.
var ErrNoHistory = errors.New("no analysis data found to export")

// Export file suffixes appended to the --output-file prefix.
const (
	analysisRunsSuffix  = ".analysis_runs.parquet"
	dealSnapshotsSuffix = ".deal_snapshots.parquet"
)

// ExecuteAnalysisExport writes the run history of store to two Parquet files
// sharing the outputFile prefix.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is disabled; set --analysis-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoHistory
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total deal snapshots: %d\n", status.TableSizes[dealSnapshotsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	snapshots, err := store.GetAllDealSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve deal snapshots: %w", err)
	}

	runRows := parquet.ConvertAnalysisRunRecords(runs)
	runsFile := outputFile + analysisRunsSuffix
	if err := parquet.WriteAnalysisRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runRows), runsFile)

	snapshotRows := parquet.ConvertDealSnapshotRecords(snapshots)
	snapshotsFile := outputFile + dealSnapshotsSuffix
	if err := parquet.WriteDealSnapshotsParquet(snapshotRows, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write deal snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d deal snapshots to: %s\n", len(snapshotRows), snapshotsFile)

	_, err = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read by DuckDB, Pandas (via pyarrow), Spark or Arrow.")
	return err
}
