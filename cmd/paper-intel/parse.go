// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-intel/internal/analysis"
)

var parseCmd = &cobra.Command{
	Use:   "parse <reply-file>",
	Short: "Build the report from a saved model reply",
	Long: `Parse runs only report extraction and rendering on a raw model reply, for
example one saved with analyze --save-reply. No credential is needed. Use "-"
to read the reply from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringP("format", "f", formatTerminal, "output format: terminal, markdown, json, yaml or html")
	parseCmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")
	parseCmd.Flags().Int("width", 0, "word-wrap column for terminal output (default 80)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	reply, err := readReply(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	a := analysis.New(analysis.Options{Extract: cfg.Extract, Logger: logger})
	out, err := a.ParseReply(reply)
	if err != nil {
		return surface(err)
	}
	for _, d := range out.Drift {
		logger.Sugar().Debugf("schema drift: %s", d)
	}
	return emit(cmd.OutOrStdout(), output, out, format, width)
}

func readReply(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading reply: %w", err)
	}
	return string(data), nil
}
