// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sentinelhq/sentinel/internal/contract"
)

// Shared tool arguments for choosing the portfolio.
var (
	inputArg = mcp.WithString("input", mcp.Description("Path to a JSON file of deal-risk records. Defaults to the server's --input."))
	demoArg  = mcp.WithBoolean("demo", mcp.Description("Use the built-in five-deal demo portfolio instead of a file."))
)

// NewMCPServer initializes and configures the Sentinel MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Sentinel Deal Risk Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("get_portfolio_summary",
		mcp.WithDescription("Summarize pipeline value, revenue at risk, risk levels and alerts for a portfolio of scored deals."),
		inputArg, demoArg,
	), h.handleGetPortfolioSummary)

	s.AddTool(mcp.NewTool("get_ranked_deals",
		mcp.WithDescription("List deals ordered by risk, value or revenue at risk, optionally filtered."),
		inputArg, demoArg,
		mcp.WithString("sort", mcp.Description("Ordering of the list. Defaults to 'risk_desc'."), mcp.Enum("risk_desc", "risk_asc", "value_desc", "value_asc", "at_risk_desc")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of deals returned.")),
		mcp.WithString("search", mcp.Description("Case-insensitive substring of the deal ID or name.")),
		mcp.WithString("stage", mcp.Description("Deal stage code or label (e.g. 'negotiation').")),
		mcp.WithString("rep", mcp.Description("Exact rep name.")),
		mcp.WithString("level", mcp.Description("Risk level."), mcp.Enum("Low", "Moderate", "High", "Critical")),
	), h.handleGetRankedDeals)

	s.AddTool(mcp.NewTool("get_breakdown",
		mcp.WithDescription("Group pipeline value and revenue at risk by deal stage or by rep."),
		inputArg, demoArg,
		mcp.WithString("by", mcp.Description("Grouping key. Defaults to 'stage'."), mcp.Enum("stage", "rep")),
	), h.handleGetBreakdown)

	s.AddTool(mcp.NewTool("get_deal_detail",
		mcp.WithDescription("Show every field of one deal, including its intervention plan and risk rank."),
		inputArg, demoArg,
		mcp.WithString("deal_id", mcp.Description("The deal ID to look up."), mcp.Required()),
	), h.handleGetDealDetail)

	s.AddTool(mcp.NewTool("check_portfolio",
		mcp.WithDescription("Evaluate the portfolio against policy thresholds and report violations."),
		inputArg, demoArg,
		mcp.WithString("thresholds", mcp.Description("Threshold overrides such as 'deal:80,average:60,at_risk_percent:30'.")),
	), h.handleCheckPortfolio)

	return s
}

// StartMCPServer starts the Sentinel MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
