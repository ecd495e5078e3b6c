package cmd

import (
	"github.com/sentinelhq/sentinel/core"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
	"github.com/spf13/cobra"
)

// summaryCmd shows the portfolio dashboard.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show pipeline totals, revenue at risk and the alert feed.",
	Long: `Fold every deal into the portfolio dashboard.

Shows:
- Total pipeline value and revenue at risk
- Average risk score and critical deal count
- Pipeline by stage and by rep
- Critical and High alerts with their primary risk indicator
- The executive summary sentence

Examples:
  # Summarize a scored export
  sentinel summary --input deals.json

  # Try it with the built-in portfolio
  sentinel summary --demo

  # Pipe records from another tool
  scorer export | sentinel summary --input -`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot summarize portfolio", err)
		}
	},
}

// dealsCmd lists deals in the configured order.
var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "List deals ranked by risk, value or revenue at risk.",
	Long: `Rank deals and show one row per deal.

The text table is truncated to --limit; csv, json and parquet exports carry
every deal that matches the filters.

Examples:
  # Top ten riskiest deals
  sentinel deals --demo --limit 10

  # Largest deals in negotiation
  sentinel deals --input deals.json --stage negotiation --sort value_desc

  # Export one rep's book to CSV
  sentinel deals --input deals.json --rep "Sarah Chen" --output csv --output-file sarah.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDeals(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list deals", err)
		}
	},
}

// breakdownCmd groups the pipeline by stage or rep.
var breakdownCmd = &cobra.Command{
	Use:       "breakdown [stage|rep]",
	Short:     "Group pipeline value by deal stage or by rep.",
	Long:      `Roll the pipeline up by deal stage (default) or by rep, in first-seen order.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(schema.StageBreakdownKind), string(schema.RepBreakdownKind)},
	PreRunE:   sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		kind := schema.StageBreakdownKind
		if len(args) == 1 {
			kind = schema.BreakdownKind(args[0])
		}
		if err := core.ExecuteBreakdown(rootCtx, cfg, storeManager, kind); err != nil {
			contract.LogFatal("Cannot build breakdown", err)
		}
	},
}

// distributionCmd counts deals per risk level, momentum and threat.
var distributionCmd = &cobra.Command{
	Use:     "distribution",
	Short:   "Count deals per risk level, momentum and competitive threat.",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDistribution(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build distribution", err)
		}
	},
}

// dealCmd prints one deal in full.
var dealCmd = &cobra.Command{
	Use:   "deal <deal-id>",
	Short: "Show every field of one deal, including its intervention plan.",
	Long: `Look up one deal by ID across the whole portfolio (filters are ignored) and show
its risk indicators, intervention plan, timeline assessment and coaching notes.

Examples:
  sentinel deal DEAL-4907 --demo`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteDealDetail(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot show deal", err)
		}
	},
}

// reportCmd prints the executive report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce the executive report with key metrics and recommendations.",
	Long: `Combine the executive summary, key metrics, recommendations, alerts and notable
deals into one report.

Examples:
  sentinel report --input deals.json
  sentinel report --input deals.json --output json --output-file report.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}

// validateCmd checks every record of the source.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check records for out-of-range values, duplicates and level mismatches.",
	Long: `Validate every record without aggregating. Exits non-zero when any issue is found.

Checks:
- Scores and percentages within 0..100
- Non-negative deal value and revenue at risk
- Required deal_id and no duplicate IDs
- Known intervention priorities
- Stored risk_level agreeing with the score

Examples:
  sentinel validate --input deals.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValidate(rootCtx, cfg); err != nil {
			contract.LogFatal("Validation failed", err)
		}
	},
}
