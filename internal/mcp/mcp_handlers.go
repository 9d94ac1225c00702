package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/attrib/core"
	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	es      contract.EventStore
}

func (h *toolHandler) handleGetExperimentSubjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("dataset_path", ""); p != "" {
		cfg.DatasetPath = p
	}
	if f := request.GetString("subject_id_field", ""); f != "" {
		cfg.SubjectIDField = f
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	startStr := request.GetString("start", "")
	endStr := request.GetString("end", "")
	if err := contract.RevalidateWindow(cfg, startStr, endStr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}

	subjects, err := core.GetSubjectsResults(ctx, cfg, h.es)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("attribution failed: %v", err)), nil
	}

	if cfg.ResultLimit > 0 && len(subjects) > cfg.ResultLimit {
		subjects = subjects[:cfg.ResultLimit]
	}
	jsonData, _ := json.MarshalIndent(subjects, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetConversionReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("dataset_path", ""); p != "" {
		cfg.DatasetPath = p
	}
	if f := request.GetString("subject_id_field", ""); f != "" {
		cfg.SubjectIDField = f
	}
	if p := request.GetString("policy", ""); p != "" {
		policy := schema.AttributionPolicy(p)
		if _, ok := schema.ValidAttributionPolicies[policy]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid policy: %s", p)), nil
		}
		cfg.Policy = policy
	}

	startStr := request.GetString("start", "")
	endStr := request.GetString("end", "")
	if err := contract.RevalidateWindow(cfg, startStr, endStr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}

	report, err := core.GetReportResults(ctx, cfg, h.es)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("attribution failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
