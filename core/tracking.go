package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// analysisStoreFrom returns the history store, or nil when tracking is off.
func analysisStoreFrom(mgr contract.StoreManager) contract.AnalysisStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAnalysisStore()
}

// beginTracking opens a run in the history store and stores its ID in the
// returned context. Failures are logged and never stop the command.
func beginTracking(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, command string) context.Context {
	store := analysisStoreFrom(mgr)
	if store == nil {
		return ctx
	}
	analysisID, err := store.BeginAnalysis(time.Now(), command, cfg.ConfigParams())
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return ctx
	}
	contract.LogDebug("analysis run started", "analysis_id", analysisID, "command", command)
	return withAnalysisID(ctx, analysisID)
}

// endTracking records one snapshot per deal and closes the run opened by beginTracking.
func endTracking(ctx context.Context, mgr contract.StoreManager, deals []schema.DealRisk, dash schema.Dashboard) {
	analysisID, ok := getAnalysisID(ctx)
	if !ok || analysisID <= 0 {
		return
	}
	store := analysisStoreFrom(mgr)
	if store == nil {
		return
	}

	now := time.Now()
	if err := store.RecordDealSnapshots(analysisID, now, deals); err != nil {
		logTrackingError("RecordDealSnapshots", analysisID, err)
	}
	if err := store.EndAnalysis(analysisID, now, runSummary(dash)); err != nil {
		logTrackingError("EndAnalysis", analysisID, err)
	}
}

// runSummary extracts the totals persisted with a completed run.
func runSummary(dash schema.Dashboard) schema.RunSummary {
	return schema.RunSummary{
		TotalDeals:         dash.DealCount,
		TotalPipelineValue: dash.TotalPipelineValue,
		TotalRevenueAtRisk: dash.TotalRevenueAtRisk,
		AverageRiskScore:   dash.AverageRiskScore,
		CriticalDeals:      dash.CriticalDeals,
	}
}

// logTrackingError logs history store errors without disrupting the command.
func logTrackingError(operation string, analysisID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s on run %d", operation, analysisID), err)
}
