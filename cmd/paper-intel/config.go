// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-intel/internal/corpus"
	"github.com/pdiddy/paper-intel/internal/httputil"
	"github.com/pdiddy/paper-intel/internal/llm"
	"github.com/pdiddy/paper-intel/internal/report"
	"github.com/pdiddy/paper-intel/internal/secrets"
	"github.com/pdiddy/paper-intel/internal/source"
	"github.com/pdiddy/paper-intel/internal/web"
	"github.com/pdiddy/paper-intel/pkg/types"
)

func userAgent() string {
	return "paper-intel/" + version
}

// configureEnv maps keys to PAPER_INTEL_ variables, so model.call_timeout
// reads PAPER_INTEL_MODEL_CALL_TIMEOUT.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("PAPER_INTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers the default for every config key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model.provider", string(types.ProviderGemini))
	v.SetDefault("model.call_timeout", llm.DefaultCallTimeout)
	v.SetDefault("model.timeout", llm.DefaultCallTimeout)
	v.SetDefault("model.user_agent", userAgent())

	v.SetDefault("corpus.backend", string(types.TextNative))
	v.SetDefault("corpus.max_document_chars", corpus.DefaultMaxDocumentChars)
	v.SetDefault("corpus.min_documents", corpus.DefaultMinDocuments)
	v.SetDefault("corpus.workers", corpus.DefaultWorkers)

	v.SetDefault("extract.span_policy", string(types.SpanGreedy))
	v.SetDefault("extract.excerpt_bytes", report.DefaultExcerptBytes)

	v.SetDefault("server.addr", web.DefaultAddr)
	v.SetDefault("server.max_upload_bytes", web.DefaultMaxUploadBytes)

	v.SetDefault("source.timeout", httputil.DefaultTimeout)
	v.SetDefault("source.user_agent", userAgent())
	v.SetDefault("source.max_bytes", source.DefaultMaxBytes)

	v.SetDefault("secrets_dir", secrets.DefaultDir)
}

// loadConfig reads every key from v.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		Model: types.ModelConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("model.timeout"),
				UserAgent: v.GetString("model.user_agent"),
			},
			Provider:    types.ModelProvider(v.GetString("model.provider")),
			Model:       v.GetString("model.model"),
			APIKey:      v.GetString("model.api_key"),
			CallTimeout: v.GetDuration("model.call_timeout"),
		},
		Corpus: types.CorpusConfig{
			Backend:          types.TextBackend(v.GetString("corpus.backend")),
			MaxDocumentChars: v.GetInt("corpus.max_document_chars"),
			MinDocuments:     v.GetInt("corpus.min_documents"),
			Workers:          v.GetInt("corpus.workers"),
		},
		Extract: types.ExtractConfig{
			SpanPolicy:   types.SpanPolicy(v.GetString("extract.span_policy")),
			ExcerptBytes: v.GetInt("extract.excerpt_bytes"),
		},
		Server: types.ServerConfig{
			Addr:           v.GetString("server.addr"),
			MaxUploadBytes: v.GetInt64("server.max_upload_bytes"),
		},
		Source: types.SourceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("source.timeout"),
				UserAgent: v.GetString("source.user_agent"),
			},
			Mailto:   v.GetString("source.mailto"),
			MaxBytes: v.GetInt64("source.max_bytes"),
		},
		SecretsDir: v.GetString("secrets_dir"),
	}

	switch cfg.Model.Provider {
	case types.ProviderGemini, types.ProviderClaude:
	default:
		return cfg, fmt.Errorf("unknown model provider %q (want gemini or claude)", cfg.Model.Provider)
	}
	switch cfg.Extract.SpanPolicy {
	case types.SpanGreedy, types.SpanBalanced:
	default:
		return cfg, fmt.Errorf("unknown span policy %q (want greedy or balanced)", cfg.Extract.SpanPolicy)
	}
	if cfg.Corpus.MinDocuments < 1 {
		return cfg, fmt.Errorf("corpus.min_documents must be at least 1, got %d", cfg.Corpus.MinDocuments)
	}
	return cfg, nil
}

func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		fmt.Fprintf(os.Stderr, "binding flag %s: %v\n", f.Name, err)
	}
}
