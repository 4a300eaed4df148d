package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts Tinct as an MCP Server, so AI agents can render and check templates
through the tools render_template, render_named, check_template and list_templates.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := serveOptions(cmd)
		opts.Transport, _ = cmd.Flags().GetString("transport")
		return cli.RunMCP(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("redis", "", "Redis address (host:port) to load templates from")
	mcpCmd.Flags().String("redis-prefix", "", "Redis key prefix (default tinct:templates:)")
}
