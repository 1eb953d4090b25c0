// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/internal/container"
)

// ImageMarkitdown is the container image used by the markitdown backend.
const ImageMarkitdown = "markitdown:latest"

// Markitdown converts PDFs by piping them through the markitdown image. The
// output is Markdown, which the model reads as plain text.
type Markitdown struct {
	runtime container.Runtime
	log     *zap.Logger
}

// NewMarkitdown verifies the image exists in rt and returns the extractor.
func NewMarkitdown(ctx context.Context, rt container.Runtime, log *zap.Logger) (*Markitdown, error) {
	if err := rt.ImageExists(ctx, ImageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Markitdown{runtime: rt, log: log}, nil
}

// ExtractPlainText pipes data through the container.
func (m *Markitdown) ExtractPlainText(ctx context.Context, data []byte) (string, error) {
	var out bytes.Buffer
	if err := m.runtime.Pipe(ctx, ImageMarkitdown, bytes.NewReader(data), &out); err != nil {
		return "", fmt.Errorf("converting with markitdown: %w", err)
	}
	if out.Len() == 0 {
		return "", errors.New("markitdown produced empty output")
	}
	m.log.Debug("pdf text extracted",
		zap.String("backend", "markitdown"),
		zap.String("runtime", m.runtime.Name()),
		zap.Int("chars", out.Len()),
	)
	return out.String(), nil
}
