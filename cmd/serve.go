package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/config"
	mcpserver "github.com/privacykit/cohortd/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing domain classification and cohort tools for AI agents like Claude Code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		st, err := buildStack(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "cohortd MCP server started on stdio (data=%s)\n", cfg.DataDir)

		srv := mcpserver.NewServer(st.taxonomy, st.classifier, st.cohorts, st.metrics)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
