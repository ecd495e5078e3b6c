package cmd

import (
	"github.com/sentinelhq/sentinel/core"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Enforce risk thresholds for CI/CD pipelines (fails on violations)",
	Long: `Evaluate the portfolio against policy thresholds and exit non-zero when any is exceeded.

Thresholds:
- deal             - no single deal may score above it (default 75)
- average          - the average risk score may not exceed it (default 50)
- at_risk_percent  - revenue at risk as a share of pipeline may not exceed it (default 40)

Thresholds come from the 'thresholds' section of .sentinel.yaml; --thresholds-override wins.

Examples:
  # Gate a nightly forecast job
  sentinel check --input deals.json

  # Custom thresholds
  sentinel check --input deals.json --thresholds-override "deal:80,average:60,at_risk_percent:30"

  # Only gate the enterprise segment in negotiation
  sentinel check --input deals.json --stage negotiation`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
