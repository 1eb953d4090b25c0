// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF bytes. Three backends are
// available: an in-process reader, the poppler pdftotext binary, and the
// markitdown container image.
package pdftext

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/internal/container"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// Extractor turns the bytes of one PDF into plain text. Implementations
// must be safe for concurrent use.
type Extractor interface {
	ExtractPlainText(ctx context.Context, data []byte) (string, error)
}

// Options tunes backend construction.
type Options struct {
	// PdftotextBin is the pdftotext binary name or path (default "pdftotext").
	PdftotextBin string

	// Logger receives per-call debug output. Nil means no logging.
	Logger *zap.Logger
}

// New builds the Extractor for backend. The markitdown backend needs a
// working container runtime with the image present; the check happens here
// so a misconfigured backend fails at startup, not on the first upload.
func New(ctx context.Context, backend types.TextBackend, opts Options) (Extractor, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch backend {
	case "", types.TextNative:
		return NewNative(log), nil
	case types.TextPdftotext:
		return NewPdftotext(opts.PdftotextBin, log), nil
	case types.TextMarkitdown:
		rt, err := container.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("markitdown backend: %w", err)
		}
		return NewMarkitdown(ctx, rt, log)
	default:
		return nil, fmt.Errorf("unknown text backend %q (want native, pdftotext or markitdown)", backend)
	}
}
