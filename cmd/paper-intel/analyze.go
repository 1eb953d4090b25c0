// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-intel/internal/corpus"
	"github.com/pdiddy/paper-intel/internal/source"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [sources...]",
	Short: "Analyse two or more papers and print the report",
	Long: `Analyze resolves each source (a local PDF path, a PDF URL, an arXiv ID or a
DOI), extracts the text, sends one prompt to the model and prints the report.

Use --save-reply to keep the raw model reply for later use with parse.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", formatTerminal, "output format: terminal, markdown, json, yaml or html")
	analyzeCmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().String("save-reply", "", "write the raw model reply to this file")
	analyzeCmd.Flags().Int("width", 0, "word-wrap column for terminal output (default 80)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	saveReply, _ := cmd.Flags().GetString("save-reply")
	width, _ := cmd.Flags().GetInt("width")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	a, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	if err := a.Ready(); err != nil {
		return surface(err)
	}
	if len(args) < a.MinDocuments() {
		return surface(corpus.TooFew(a.MinDocuments()))
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Resolving %d sources...\n", len(args))
	uploads, err := source.NewResolver(cfg.Source, logger).ResolveAll(ctx, args)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "Analyzing %d papers...\n", len(uploads))
	out, err := a.Run(ctx, uploads)
	if err != nil {
		return surface(err)
	}

	if saveReply != "" {
		if err := os.WriteFile(saveReply, []byte(out.Reply), 0o644); err != nil {
			return fmt.Errorf("saving model reply: %w", err)
		}
	}
	for _, d := range out.Documents {
		if d.Truncated {
			fmt.Fprintf(stderr, "Note: %s was truncated to %d characters.\n", d.Name, d.Chars)
		}
	}
	fmt.Fprintln(stderr, "Analysis complete!")
	return emit(cmd.OutOrStdout(), output, out, format, width)
}
