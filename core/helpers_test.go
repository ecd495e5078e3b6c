package core

import (
	"maps"
	"path/filepath"
	"testing"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// demoConfig returns a validated-looking config that reads the embedded demo
// portfolio and writes JSON into a temporary file.
func demoConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		UseDemo:     true,
		ResultLimit: contract.DefaultResultLimit,
		Workers:     2,
		Output:      schema.JSONOut,
		OutputFile:  filepath.Join(t.TempDir(), "out.json"),
		Sort:        schema.RiskDescSort,
		Thresholds:  maps.Clone(schema.DefaultThresholds),
	}
}

// deal builds a minimal record for comparison and check tests.
func deal(id string, score int, level schema.RiskLevel, atRisk float64) schema.DealRisk {
	return schema.DealRisk{
		DealID:           id,
		DealName:         "Deal " + id,
		DealValue:        100000,
		OverallRiskScore: score,
		RiskLevel:        level,
		RevenueAtRisk:    atRisk,
	}
}
