package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/perceptlab/staircase/internal/logging"
	"github.com/perceptlab/staircase/pkg/adapters/mcp"
	"github.com/perceptlab/staircase/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP server over stdio.
This lets AI agents drive staircase sessions as tools: begin a session,
fetch the current trial, register responses and read the recorded data.`,
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")

		logger := logging.NewNop()
		if debug {
			// Stdout carries the protocol, so logs must stay on stderr.
			logger = logging.New(slog.LevelDebug)
		}

		manager := session.NewManager(session.WithLogger(logger))
		if err := mcp.NewServer(manager).ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
}
