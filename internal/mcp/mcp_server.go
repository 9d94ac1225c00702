// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/attrib/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the attrib MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, es contract.EventStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Experiment Attribution Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		es:      es,
	}

	// --- 1. Tool: get_experiment_subjects ---
	s.AddTool(mcp.NewTool("get_experiment_subjects",
		mcp.WithDescription("Compute experiment subjects: one row per (experiment, subject) with the variation and timestamp of the first in-window exposure."),
		mcp.WithString("dataset_path", mcp.Description("Path to the dataset directory holding the decisions and events tables (defaults to current directory).")),
		mcp.WithString("start", mcp.Description("Window start, ISO8601 or 'N [units] ago'. Unbounded if omitted.")),
		mcp.WithString("end", mcp.Description("Window end, ISO8601 or 'N [units] ago'. Unbounded if omitted.")),
		mcp.WithString("subject_id_field", mcp.Description("Decision column used as the grouping key."), mcp.Enum("visitor_id", "session_id")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of subject rows returned.")),
	), h.handleGetExperimentSubjects)

	// --- 2. Tool: get_conversion_report ---
	s.AddTool(mcp.NewTool("get_conversion_report",
		mcp.WithDescription("Compute unique-visitor and attributed-conversion counts per (experiment, variation) under the Web or Full Stack policy."),
		mcp.WithString("dataset_path", mcp.Description("Path to the dataset directory holding the decisions and events tables.")),
		mcp.WithString("policy", mcp.Description("Attribution policy. Defaults to 'web'."), mcp.Enum("web", "fullstack")),
		mcp.WithString("start", mcp.Description("Window start, ISO8601 or 'N [units] ago'.")),
		mcp.WithString("end", mcp.Description("Window end, ISO8601 or 'N [units] ago'.")),
		mcp.WithString("subject_id_field", mcp.Description("Decision column used as the grouping key."), mcp.Enum("visitor_id", "session_id")),
	), h.handleGetConversionReport)

	return s
}

// StartMCPServer starts the attrib MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, es contract.EventStore) error {
	s := NewMCPServer(baseCfg, es)
	return server.ServeStdio(s)
}
