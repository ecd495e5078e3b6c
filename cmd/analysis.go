package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/iocache"
	"github.com/sentinelhq/sentinel/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveAnalysisBackend reads and validates the backend settings from viper.
// An empty backend is treated as NoneBackend.
func resolveAnalysisBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	if level := viper.GetString("log-level"); level != "" {
		if err := contract.SetLogLevel(level); err != nil {
			return "", "", err
		}
	}

	backendStr := strings.ToLower(strings.TrimSpace(viper.GetString("analysis-backend")))
	connStr := viper.GetString("analysis-db-connect")

	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need the store without the full shared setup.
func analysisSetup() error {
	backend, connStr, err := resolveAnalysisBackend()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func analysisMigrateSetup() error {
	backend, connStr, err := resolveAnalysisBackend()
	if err != nil {
		return err
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// analysisMigrateSetupWrapper wraps analysisMigrateSetup to provide PreRunE for migrate command.
func analysisMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisMigrateSetup()
}

// sqliteHistoryPath returns the SQLite file holding run history.
func sqliteHistoryPath() string {
	if cfg.AnalysisDBConnect != "" {
		return cfg.AnalysisDBConnect
	}
	return contract.GetAnalysisDBFilePath()
}

// analysisCmd focused on run history management.
//
// Note: Analysis subcommands use minimal initialization (analysisSetup) instead of
// the full sharedSetup. No deal input is needed to inspect or manage history.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage run history tracking and exports",
	Long: `Manage the run history recorded when --analysis-backend is set.

Every command that folds a dashboard stores:
- Run metadata (run key, command, start/end time, duration, configuration)
- Portfolio totals (deals, pipeline value, revenue at risk, average risk, critical deals)
- One snapshot row per deal (score, level, value at risk, momentum, threat)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  sentinel analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  sentinel analysis export --analysis-backend sqlite --output-file history`,
}

// analysisClearCmd clears the run history.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete all stored runs and deal snapshots.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  sentinel analysis export --analysis-backend sqlite --output-file backup
  sentinel analysis clear --analysis-backend sqlite`,
	PreRunE: analysisMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, sqliteHistoryPath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows run history status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection state, number of runs, first and last run times,
deals analyzed across all runs and row counts per table.`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetAnalysisStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports run history to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and deal snapshots to two Parquet files sharing the
--output-file prefix:

  <prefix>.analysis_runs.parquet
  <prefix>.deal_snapshots.parquet

Examples:
  sentinel analysis export --analysis-backend sqlite --output-file history
  duckdb -c "SELECT deal_id, avg(risk_score) FROM 'history.deal_snapshots.parquet' GROUP BY 1"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(os.Stdout, iocache.Manager.GetAnalysisStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the run history store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  sentinel analysis migrate --analysis-backend postgresql --analysis-db-connect "host=db dbname=sentinel"

  # Rollback to the initial state
  sentinel analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(os.Stdout, cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
