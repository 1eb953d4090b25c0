// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-intel/internal/mcpserver"
	"github.com/pdiddy/paper-intel/internal/source"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve analysis tools over MCP on stdio",
	Long: `Mcp runs a Model Context Protocol server on stdin and stdout with two tools:
analyze_papers, which takes PDF paths, URLs, arXiv IDs or DOIs, and
parse_reply, which takes a saved model reply. Logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	a, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	r := source.NewResolver(cfg.Source, logger)
	return mcpserver.New(a, r, version, logger).Run(ctx)
}
