package cmd

import (
	"github.com/sentinelhq/sentinel/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Sentinel MCP server",
	Long: `Launch an MCP server over stdio so AI agents can query portfolio summaries,
ranked deals, breakdowns, deal details and policy checks as tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
