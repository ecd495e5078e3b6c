// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/sentinelhq/sentinel/schema"
)

// DealSource loads a portfolio of deal-risk records.
// This allows the command layer to be tested without touching files or stdin.
type DealSource interface {
	// Load reads and decodes every record of the source.
	Load(ctx context.Context) ([]schema.DealRisk, error)

	// Name describes where the records come from, for logs and run history.
	Name() string
}

// StoreManager defines the interface for managing history stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetAnalysisStore() AnalysisStore
}

// AnalysisStore defines the interface for tracking runs and storing deal snapshots.
type AnalysisStore interface {
	// BeginAnalysis creates a new run and returns its unique ID
	BeginAnalysis(startTime time.Time, command string, configParams map[string]any) (int64, error)

	// RecordDealSnapshots stores one row per deal for the run
	RecordDealSnapshots(analysisID int64, recordedAt time.Time, deals []schema.DealRisk) error

	// EndAnalysis updates the run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run ordered by ID
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllDealSnapshots returns every deal snapshot ordered by run and deal
	GetAllDealSnapshots() ([]schema.DealSnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
