// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends the analysis prompt to a hosted model and returns the
// raw reply text. Calls are single-shot: a failure is reported, never
// retried.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// DefaultCallTimeout bounds one Generate call when none is configured.
const DefaultCallTimeout = 120 * time.Second

// HarmCategory names a content-safety category using the provider's
// enumeration spelling.
type HarmCategory string

const (
	HarmHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmSexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// BlockNone disables blocking for a category.
const BlockNone = "BLOCK_NONE"

// SafetySetting pairs a category with a blocking threshold.
type SafetySetting struct {
	Category  HarmCategory
	Threshold string
}

// Safety is the content-safety configuration sent with every call.
type Safety []SafetySetting

// DefaultSafety disables blocking in all four categories. Research papers
// on sensitive topics are otherwise refused.
func DefaultSafety() Safety {
	return Safety{
		{Category: HarmHateSpeech, Threshold: BlockNone},
		{Category: HarmHarassment, Threshold: BlockNone},
		{Category: HarmSexuallyExplicit, Threshold: BlockNone},
		{Category: HarmDangerousContent, Threshold: BlockNone},
	}
}

// Generator sends one prompt to a model and returns its reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string, safety Safety) (string, error)

	// Name identifies the provider and model for logs.
	Name() string
}

// ModelInvocationError reports a failed or timed-out model call.
type ModelInvocationError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *ModelInvocationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("model call to %s timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("model call to %s failed: %v", e.Provider, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// Invoke calls g with DefaultSafety under timeout (DefaultCallTimeout when
// zero). Every failure, including an empty reply, is returned as a
// *ModelInvocationError.
func Invoke(ctx context.Context, g Generator, prompt string, timeout time.Duration, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := g.Generate(ctx, prompt, DefaultSafety())
	elapsed := time.Since(start)
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
		log.Warn("model call failed",
			zap.String("model", g.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Bool("timeout", timedOut),
			zap.Error(err),
		)
		return "", &ModelInvocationError{Provider: g.Name(), Timeout: timedOut, Err: err}
	}
	if reply == "" {
		return "", &ModelInvocationError{Provider: g.Name(), Err: errors.New("empty reply")}
	}

	log.Info("model call complete",
		zap.String("model", g.Name()),
		zap.Duration("elapsed", elapsed),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("reply_chars", len(reply)),
	)
	return reply, nil
}

// New builds the Generator for cfg.Provider with apiKey.
func New(ctx context.Context, cfg types.ModelConfig, apiKey string) (Generator, error) {
	switch cfg.Provider {
	case "", types.ProviderGemini:
		return NewGemini(ctx, GeminiOptions{APIKey: apiKey, Model: cfg.Model, HTTP: cfg.HTTPConfig})
	case types.ProviderClaude:
		return NewClaude(ClaudeOptions{APIKey: apiKey, Model: cfg.Model, HTTP: cfg.HTTPConfig}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q (want gemini or claude)", cfg.Provider)
	}
}

// modelHTTP raises an unset client timeout to DefaultCallTimeout so the
// deadline set by Invoke governs.
func modelHTTP(cfg types.HTTPConfig) types.HTTPConfig {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}
	return cfg
}
