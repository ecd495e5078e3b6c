// Package iocache persists run history for the analysis commands.
package iocache

import (
	"sync"

	"github.com/sentinelhq/sentinel/internal/contract"
)

// StoreManager owns the process-wide AnalysisStore.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	analysis     contract.AnalysisStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetAnalysisStore returns the analysis AnalysisStore, or nil when tracking is off.
func (mgr *StoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
