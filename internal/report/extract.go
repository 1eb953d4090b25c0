// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns raw model reply text into a fully defaulted
// types.Report. The reply may carry prose or markdown fences around the JSON
// object; any member missing at any depth resolves to its default.
package report

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// Result is a Report plus what was learned while building it.
type Result struct {
	Report types.Report

	// Drift lists schema violations in the decoded reply. Drift never fails
	// extraction: wrong-typed members are defaulted or shown as JSON text.
	Drift []string

	// Span is the JSON text that was decoded.
	Span string
}

// Extractor locates, decodes and default-fills model replies. The zero
// value is usable and applies the greedy span policy.
type Extractor struct {
	policy       types.SpanPolicy
	excerptBytes int
	log          *zap.Logger
}

// NewExtractor builds an Extractor from cfg. A nil logger is replaced by a
// no-op logger.
func NewExtractor(cfg types.ExtractConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	policy := cfg.SpanPolicy
	if policy == "" {
		policy = types.SpanGreedy
	}
	excerptBytes := cfg.ExcerptBytes
	if excerptBytes <= 0 {
		excerptBytes = DefaultExcerptBytes
	}
	return &Extractor{policy: policy, excerptBytes: excerptBytes, log: log}
}

// Extract parses reply with the greedy span policy.
func Extract(reply string) (types.Report, error) {
	var e Extractor
	res, err := e.Analyze(reply)
	if err != nil {
		return types.Report{}, err
	}
	return res.Report, nil
}

// Extract parses reply and returns the Report only.
func (e *Extractor) Extract(reply string) (types.Report, error) {
	res, err := e.Analyze(reply)
	if err != nil {
		return types.Report{}, err
	}
	return res.Report, nil
}

// Analyze parses reply and reports schema drift alongside the Report. It
// fails with *NoJSONFoundError when the reply holds no brace-delimited span
// and with *MalformedJSONError when the span does not decode as an object.
func (e *Extractor) Analyze(reply string) (Result, error) {
	policy, excerptBytes, log := e.settings()

	sp, ok := locate(reply, policy)
	if !ok {
		return Result{}, &NoJSONFoundError{Excerpt: excerpt(reply, excerptBytes)}
	}

	var root object
	if err := json.Unmarshal([]byte(sp.text), &root); err != nil {
		return Result{}, &MalformedJSONError{
			Excerpt: excerpt(reply, excerptBytes),
			Offset:  sp.offset,
			Err:     err,
		}
	}

	var generic any
	// The span already decoded once, so this cannot fail.
	_ = json.Unmarshal([]byte(sp.text), &generic)
	issues := drift(generic)
	if len(issues) > 0 {
		log.Debug("model reply drifted from report schema",
			zap.Int("issues", len(issues)),
			zap.Strings("drift", issues))
	}

	return Result{
		Report: fillReport(root),
		Drift:  issues,
		Span:   sp.text,
	}, nil
}

func (e *Extractor) settings() (types.SpanPolicy, int, *zap.Logger) {
	policy, excerptBytes, log := e.policy, e.excerptBytes, e.log
	if policy == "" {
		policy = types.SpanGreedy
	}
	if excerptBytes <= 0 {
		excerptBytes = DefaultExcerptBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return policy, excerptBytes, log
}
