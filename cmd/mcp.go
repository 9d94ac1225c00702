package cmd

import (
	"github.com/huangsam/attrib/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Attrib MCP server",
	Long:  `Launch an MCP server that allows AI agents to run attribution queries via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdio carries the protocol, so setup must not write to stdout.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, eventStore)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
