package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// Table names for run history.
const (
	analysisRunsTable  = "sentinel_analysis_runs"
	dealSnapshotsTable = "sentinel_deal_snapshots"
)

// historyTables lists the run history tables in dependency order.
var historyTables = []string{analysisRunsTable, dealSnapshotsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
// The none backend yields a store that accepts every call and records nothing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	ddl, err := initialSchema(backend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether calls should be no-ops.
func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// table returns the quoted name of a history table.
func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// BeginAnalysis creates a new run keyed by a fresh UUID and returns its ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, command string, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}
	runKey := uuid.NewString()
	args := []any{runKey, command, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (run_key, command, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING analysis_id`, as.table(analysisRunsTable))
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (run_key, command, start_time, config_params) VALUES (?, ?, ?, ?)`, as.table(analysisRunsTable))
		var result sql.Result
		if result, err = as.db.Exec(query, args...); err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// RecordDealSnapshots stores one row per deal in a single transaction.
func (as *AnalysisStoreImpl) RecordDealSnapshots(analysisID int64, recordedAt time.Time, deals []schema.DealRisk) (err error) {
	if as.disabled() || len(deals) == 0 {
		return nil
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := rebind(fmt.Sprintf(`INSERT INTO %s (analysis_id, deal_id, deal_name, deal_stage, rep_name, recorded_at,
		deal_value, risk_score, risk_level, revenue_at_risk, momentum, threat_level, close_probability, immediate_actions)
		VALUES (%s)`, as.table(dealSnapshotsTable), placeholders(14)), as.backend)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	at := formatTime(recordedAt, as.backend)
	for _, d := range deals {
		var momentum *string
		if d.MomentumClassification != "" {
			m := string(d.MomentumClassification)
			momentum = &m
		}
		if _, err = stmt.Exec(
			analysisID, d.DealID, d.DealName, string(d.DealStage), d.Rep(), at,
			d.DealValue, d.OverallRiskScore, string(d.RiskLevel), d.RevenueAtRisk,
			momentum, string(d.Threat()), d.CloseProbabilityPercent, d.ImmediateActions(),
		); err != nil {
			return fmt.Errorf("failed to insert snapshot for deal %s: %w", d.DealID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deal snapshots: %w", err)
	}
	return nil
}

// EndAnalysis updates the run with its end time, duration and portfolio totals.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error {
	if as.disabled() {
		return nil
	}

	selectQuery := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = ?`, as.table(analysisRunsTable)), as.backend)
	var start dbTime
	if err := as.db.QueryRow(selectQuery, analysisID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_deals = ?,
		total_pipeline_value = ?, total_revenue_at_risk = ?, average_risk_score = ?, critical_deals = ?
		WHERE analysis_id = ?`, as.table(analysisRunsTable)), as.backend)
	if _, err := as.db.Exec(updateQuery,
		formatTime(endTime, as.backend), durationMs, summary.TotalDeals,
		summary.TotalPipelineValue, summary.TotalRevenueAtRisk, summary.AverageRiskScore, summary.CriticalDeals,
		analysisID,
	); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	runs := as.table(analysisRunsTable)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRun, oldestRun dbTime
		lastQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs)
		if err := as.db.QueryRow(lastQuery).Scan(&status.LastRunID, &lastRun); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRun.Time

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)
		if err := as.db.QueryRow(oldestQuery).Scan(&oldestRun); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRun.Time

		dealsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_deals), 0) FROM %s", runs)
		if err := as.db.QueryRow(dealsQuery).Scan(&status.TotalDealsAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total deals analyzed: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllAnalysisRuns retrieves every run ordered by ID.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_key, command, start_time, end_time, run_duration_ms,
		total_deals, total_pipeline_value, total_revenue_at_risk, average_risk_score, critical_deals, config_params
		FROM %s ORDER BY analysis_id`, as.table(analysisRunsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var (
			record     schema.AnalysisRunRecord
			start, end dbTime
		)
		if err := rows.Scan(&record.AnalysisID, &record.RunKey, &record.Command, &start, &end, &record.RunDurationMs,
			&record.TotalDeals, &record.TotalPipelineValue, &record.TotalRevenueAtRisk, &record.AverageRiskScore,
			&record.CriticalDeals, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.Ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllDealSnapshots retrieves every deal snapshot ordered by run and deal.
func (as *AnalysisStoreImpl) GetAllDealSnapshots() ([]schema.DealSnapshotRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, deal_id, deal_name, deal_stage, rep_name, recorded_at,
		deal_value, risk_score, risk_level, revenue_at_risk, momentum, threat_level, close_probability, immediate_actions
		FROM %s ORDER BY analysis_id, deal_id`, as.table(dealSnapshotsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query deal snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DealSnapshotRecord
	for rows.Next() {
		var (
			record     schema.DealSnapshotRecord
			recordedAt dbTime
		)
		if err := rows.Scan(&record.AnalysisID, &record.DealID, &record.DealName, &record.DealStage, &record.RepName,
			&recordedAt, &record.DealValue, &record.RiskScore, &record.RiskLevel, &record.RevenueAtRisk,
			&record.Momentum, &record.ThreatLevel, &record.CloseProbability, &record.ImmediateActions); err != nil {
			return nil, fmt.Errorf("failed to scan deal snapshot: %w", err)
		}
		record.RecordedAt = recordedAt.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deal snapshots: %w", err)
	}
	return results, nil
}
