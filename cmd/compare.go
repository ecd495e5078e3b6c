package cmd

import (
	"github.com/sentinelhq/sentinel/core"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd focused on per-deal changes between two snapshots.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two portfolio snapshots deal by deal.",
	Long: `Match deals by ID across two scored exports and show how risk has moved.

Ideal for:
- Weekly forecast reviews - see which deals got riskier
- Intervention follow-up - verify that plans lowered risk
- Pipeline hygiene - spot new and dropped deals

Each row shows before/after scores, the risk and at-risk deltas, the level
transition and whether the deal is new, active or removed.

Examples:
  sentinel compare --base last-week.json --target today.json
  sentinel compare --base last-week.json --target today.json --output csv --output-file deltas.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
