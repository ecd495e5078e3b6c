// Package parquet provides row types and writers for exporting deals and run
// history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/sentinelhq/sentinel/schema"
)

// AnalysisRun is one tracked command run.
// This struct maps to the sentinel_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID         int64      `parquet:"analysis_id,snappy"`
	RunKey             string     `parquet:"run_key,snappy"`
	Command            string     `parquet:"command,snappy"`
	StartTime          time.Time  `parquet:"start_time,snappy"`
	EndTime            *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs      *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalDeals         int32      `parquet:"total_deals,snappy"`
	TotalPipelineValue float64    `parquet:"total_pipeline_value,snappy"`
	TotalRevenueAtRisk float64    `parquet:"total_revenue_at_risk,snappy"`
	AverageRiskScore   int32      `parquet:"average_risk_score,snappy"`
	CriticalDeals      int32      `parquet:"critical_deals,snappy"`

	// ConfigParams contains the JSON-encoded settings of the run (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DealSnapshot is the state of one deal as seen by a tracked run.
// This struct maps to the sentinel_deal_snapshots database table.
type DealSnapshot struct {
	AnalysisID       int64     `parquet:"analysis_id,snappy"`
	DealID           string    `parquet:"deal_id,snappy"`
	DealName         string    `parquet:"deal_name,snappy"`
	DealStage        string    `parquet:"deal_stage,snappy"`
	RepName          string    `parquet:"rep_name,snappy"`
	RecordedAt       time.Time `parquet:"recorded_at,snappy"`
	DealValue        float64   `parquet:"deal_value,snappy"`
	RiskScore        int32     `parquet:"risk_score,snappy"`
	RiskLevel        string    `parquet:"risk_level,snappy"`
	RevenueAtRisk    float64   `parquet:"revenue_at_risk,snappy"`
	Momentum         *string   `parquet:"momentum,optional,snappy"`
	ThreatLevel      string    `parquet:"threat_level,snappy"`
	CloseProbability float64   `parquet:"close_probability,snappy"`
	ImmediateActions int32     `parquet:"immediate_actions,snappy"`
}

// DealRow is the flat export of a deal listing. Columns follow the CSV
// export, followed by the derived fields.
type DealRow struct {
	DealID                         string  `parquet:"deal_id,snappy"`
	DealName                       string  `parquet:"deal_name,snappy"`
	DealValue                      float64 `parquet:"deal_value,snappy"`
	DealStage                      string  `parquet:"deal_stage,snappy"`
	RepName                        string  `parquet:"rep_name,snappy"`
	OverallRiskScore               int32   `parquet:"overall_risk_score,snappy"`
	RiskLevel                      string  `parquet:"risk_level,snappy"`
	RevenueAtRisk                  float64 `parquet:"revenue_at_risk,snappy"`
	MomentumClassification         string  `parquet:"momentum_classification,snappy"`
	CloseProbabilityPercent        float64 `parquet:"close_probability_percent,snappy"`
	ThirtyDayFailureProbability    float64 `parquet:"thirty_day_failure_probability,snappy"`
	CompetitiveThreatLevel         string  `parquet:"competitive_threat_level,snappy"`
	StakeholderCompletenessPercent float64 `parquet:"stakeholder_completeness_percent,snappy"`
	ImmediateActions               int32   `parquet:"immediate_actions,snappy"`
	TopIndicator                   string  `parquet:"top_indicator,snappy"`
}

// Write encodes rows of any tagged struct type to w.
func Write[T any](w io.Writer, rows []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes run rows to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteDealSnapshotsParquet writes snapshot rows to a Parquet file.
func WriteDealSnapshotsParquet(data []DealSnapshot, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ReadFile decodes every row of a Parquet file.
func ReadFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:         record.AnalysisID,
			RunKey:             record.RunKey,
			Command:            record.Command,
			StartTime:          record.StartTime,
			EndTime:            record.EndTime,
			RunDurationMs:      record.RunDurationMs,
			TotalDeals:         record.TotalDeals,
			TotalPipelineValue: record.TotalPipelineValue,
			TotalRevenueAtRisk: record.TotalRevenueAtRisk,
			AverageRiskScore:   record.AverageRiskScore,
			CriticalDeals:      record.CriticalDeals,
			ConfigParams:       record.ConfigParams,
		}
	}
	return result
}

// ConvertDealSnapshotRecords converts schema.DealSnapshotRecord to DealSnapshot for Parquet export.
func ConvertDealSnapshotRecords(records []schema.DealSnapshotRecord) []DealSnapshot {
	result := make([]DealSnapshot, len(records))
	for i, record := range records {
		result[i] = DealSnapshot{
			AnalysisID:       record.AnalysisID,
			DealID:           record.DealID,
			DealName:         record.DealName,
			DealStage:        record.DealStage,
			RepName:          record.RepName,
			RecordedAt:       record.RecordedAt,
			DealValue:        record.DealValue,
			RiskScore:        record.RiskScore,
			RiskLevel:        record.RiskLevel,
			RevenueAtRisk:    record.RevenueAtRisk,
			Momentum:         record.Momentum,
			ThreatLevel:      record.ThreatLevel,
			CloseProbability: record.CloseProbability,
			ImmediateActions: record.ImmediateActions,
		}
	}
	return result
}

// ConvertDeals flattens deals into export rows with defaults applied.
func ConvertDeals(deals []schema.DealRisk) []DealRow {
	result := make([]DealRow, len(deals))
	for i, d := range deals {
		result[i] = DealRow{
			DealID:                         d.DealID,
			DealName:                       d.DealName,
			DealValue:                      d.DealValue,
			DealStage:                      string(d.DealStage),
			RepName:                        d.Rep(),
			OverallRiskScore:               int32(d.OverallRiskScore),
			RiskLevel:                      string(d.RiskLevel),
			RevenueAtRisk:                  d.RevenueAtRisk,
			MomentumClassification:         string(d.MomentumClassification),
			CloseProbabilityPercent:        d.CloseProbabilityPercent,
			ThirtyDayFailureProbability:    d.ThirtyDayFailureProbability,
			CompetitiveThreatLevel:         string(d.Threat()),
			StakeholderCompletenessPercent: d.StakeholderCompletenessPercent,
			ImmediateActions:               int32(d.ImmediateActions()),
			TopIndicator:                   d.TopIndicator(),
		}
	}
	return result
}
