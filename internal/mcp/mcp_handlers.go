package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sentinelhq/sentinel/core"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/dealsource"
	"github.com/sentinelhq/sentinel/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// errStdinInput is returned for "-" because stdin carries the protocol stream.
var errStdinInput = errors.New("input cannot be stdin while serving over stdio")

// requestConfig clones the base config and applies the portfolio arguments.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("input", ""); p != "" {
		cfg = cfg.CloneWithInput(p)
	}
	if request.GetBool("demo", false) {
		cfg.InputPath = ""
		cfg.UseDemo = true
	}
	if cfg.InputPath == dealsource.StdinPath {
		return nil, errStdinInput
	}
	return cfg, nil
}

// jsonResult encodes v as an indented text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetPortfolioSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := core.GetSummaryResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *toolHandler) handleGetRankedDeals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	filter := schema.DealFilter{
		Search: request.GetString("search", ""),
		Stage:  request.GetString("stage", ""),
		Rep:    request.GetString("rep", ""),
		Level:  schema.RiskLevel(request.GetString("level", "")),
	}
	if err := contract.RevalidateListing(cfg, request.GetString("sort", ""), filter); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid listing parameters: %v", err)), nil
	}

	ranked, err := core.GetRankedDealsResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return jsonResult(ranked)
}

func (h *toolHandler) handleGetBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind := schema.BreakdownKind(request.GetString("by", string(schema.StageBreakdownKind)))

	result, err := core.GetBreakdownResults(core.WithSuppressHeader(ctx), cfg, h.mgr, kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("breakdown failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetDealDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dealID := request.GetString("deal_id", "")
	if dealID == "" {
		return mcp.NewToolResultError("deal_id is required"), nil
	}

	deal, err := core.GetDealDetailResults(core.WithSuppressHeader(ctx), cfg, dealID)
	if errors.Is(err, core.ErrDealNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no deal with ID %s", dealID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return jsonResult(deal)
}

func (h *toolHandler) handleCheckPortfolio(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := contract.RevalidateThresholds(cfg, request.GetString("thresholds", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: %v", err)), nil
	}

	result, err := core.GetCheckResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(result)
}
