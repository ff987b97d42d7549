package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/agentwizard/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the agent creation wizard as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		deps, err := setup(cmd)
		if err != nil {
			return err
		}
		logger := deps.logger
		defer deps.wizard.Close(context.Background())

		srv := mcp.NewServer(deps.wizard)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Agent Wizard MCP Server (Stdio)")
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
		case "sse":
			logger.Info("Starting Agent Wizard MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
