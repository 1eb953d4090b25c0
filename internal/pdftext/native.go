// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Native reads PDFs in process with github.com/ledongthuc/pdf.
type Native struct {
	log *zap.Logger
}

// NewNative returns the in-process extractor.
func NewNative(log *zap.Logger) *Native {
	if log == nil {
		log = zap.NewNop()
	}
	return &Native{log: log}
}

// ExtractPlainText returns the text of every page in page order.
func (n *Native) ExtractPlainText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading extracted text: %w", err)
	}
	if n.log != nil {
		n.log.Debug("pdf text extracted",
			zap.String("backend", "native"),
			zap.Int("pages", r.NumPage()),
			zap.Int("chars", buf.Len()),
		)
	}
	return buf.String(), nil
}
