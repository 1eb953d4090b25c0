// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-intel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/paper-intel/internal/analysis"
	"github.com/pdiddy/paper-intel/internal/llm"
	"github.com/pdiddy/paper-intel/internal/pdftext"
	"github.com/pdiddy/paper-intel/internal/secrets"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE from the --verbose flag.
var logger = zap.NewNop()

// rootCmd is the base command for the paper-intel CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-intel",
	Short: "Cross-paper intelligence reports from research PDFs",
	Long: `paper-intel reads two or more research papers, asks a hosted model for a
joint analysis and renders the answer as a seven-section report: shared and
unique constructs, summaries with bias, the causal contradiction and its
conflict graph, a reading recommendation and links to other disciplines.

Run it as a browser UI (serve), from the command line (analyze), offline on a
saved model reply (parse) or as an MCP server for agents (mcp).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-intel.yaml or ~/.config/paper-intel/config.yaml)")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.String("provider", "", "model provider: gemini or claude")
	pf.String("model", "", "model identifier (default depends on provider)")
	pf.String("backend", "", "PDF text backend: native, pdftotext or markitdown")
	pf.String("span-policy", "", "JSON span policy: greedy or balanced")
	pf.String("secrets-dir", "", "directory of credential files (default .secrets)")

	bindFlag("model.provider", pf.Lookup("provider"))
	bindFlag("model.model", pf.Lookup("model"))
	bindFlag("corpus.backend", pf.Lookup("backend"))
	bindFlag("extract.span_policy", pf.Lookup("span-policy"))
	bindFlag("secrets_dir", pf.Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-intel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-intel"))
		}
	}

	configureEnv(viper.GetViper())
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Reading config file:", err)
		}
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

// newAnalyzer wires the pipeline from cfg. A missing credential does not
// fail: the analyzer reports it from Ready and Run.
func newAnalyzer(ctx context.Context, cfg types.Config) (*analysis.Analyzer, error) {
	text, err := pdftext.New(ctx, cfg.Corpus.Backend, pdftext.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	loaded, err := secrets.Load(cfg.SecretsDir, logger)
	if err != nil {
		return nil, err
	}
	if len(loaded) > 0 {
		logger.Debug("loaded secrets", zap.Int("count", len(loaded)))
	}

	opts := analysis.Options{
		Text:        text,
		Corpus:      cfg.Corpus,
		Extract:     cfg.Extract,
		CallTimeout: cfg.Model.CallTimeout,
		Logger:      logger,
	}
	key, err := secrets.Credential(cfg.Model, loaded, os.LookupEnv, cfg.SecretsDir)
	if err != nil {
		logger.Warn("model credential missing, analysis disabled", zap.Error(err))
		opts.ConfigErr = err
		return analysis.New(opts), nil
	}
	model, err := llm.New(ctx, cfg.Model, key)
	if err != nil {
		return nil, err
	}
	opts.Model = model
	logger.Debug("model configured", zap.String("model", model.Name()))
	return analysis.New(opts), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
