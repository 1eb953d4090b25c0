// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus turns uploaded PDFs into the combined text submitted in
// one prompt. Each document is extracted, cut to a per-document cap and
// prefixed with a delimiter line naming its source file.
package corpus

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-intel/internal/pdftext"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// Defaults for zero-valued CorpusConfig fields.
const (
	DefaultMaxDocumentChars = 8000
	DefaultMinDocuments     = 2
	DefaultWorkers          = 4
)

// InputValidationError reports a request that cannot be analysed as
// submitted. Nothing has been extracted or sent when it is returned.
type InputValidationError struct {
	Reason string
}

func (e *InputValidationError) Error() string {
	return e.Reason
}

// TooFew is the validation failure for fewer than minDocs uploads.
func TooFew(minDocs int) *InputValidationError {
	return &InputValidationError{Reason: fmt.Sprintf("Please upload at least %d PDFs.", minDocs)}
}

// Delimiter returns the line that introduces a document in the corpus.
func Delimiter(name string) string {
	return "--- Paper: " + name + " ---\n"
}

// Validate checks uploads before any extraction. It requires at least
// minDocs uploads (DefaultMinDocuments when minDocs <= 0), each with content.
func Validate(uploads []types.Upload, minDocs int) error {
	if minDocs <= 0 {
		minDocs = DefaultMinDocuments
	}
	if len(uploads) < minDocs {
		return TooFew(minDocs)
	}
	for i, u := range uploads {
		if len(u.Data) == 0 {
			name := u.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			return &InputValidationError{Reason: fmt.Sprintf("Uploaded file %s is empty.", name)}
		}
	}
	return nil
}

// Truncate cuts text to at most limit Unicode code points. It reports
// whether anything was removed.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i], true
		}
		n++
	}
	return text, false
}

// Build concatenates docs in order into a Corpus.
func Build(docs []types.RawDocument) types.Corpus {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(Delimiter(d.Name))
		b.WriteString(d.Text)
		b.WriteString("\n\n")
	}
	return types.Corpus{Documents: docs, Text: b.String()}
}

// Ingest validates uploads, extracts their text concurrently and builds the
// corpus. Documents keep upload order regardless of completion order. The
// first extraction failure cancels the rest.
func Ingest(ctx context.Context, ex pdftext.Extractor, uploads []types.Upload, cfg types.CorpusConfig, log *zap.Logger) (types.Corpus, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := Validate(uploads, cfg.MinDocuments); err != nil {
		return types.Corpus{}, err
	}

	maxChars := cfg.MaxDocumentChars
	if maxChars <= 0 {
		maxChars = DefaultMaxDocumentChars
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	docs := make([]types.RawDocument, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range uploads {
		g.Go(func() error {
			text, err := ex.ExtractPlainText(gctx, u.Data)
			if err != nil {
				return fmt.Errorf("extracting text from %s: %w", u.Name, err)
			}
			cut, truncated := Truncate(text, maxChars)
			docs[i] = types.RawDocument{Name: u.Name, Text: cut, Truncated: truncated}
			log.Debug("document ingested",
				zap.String("name", u.Name),
				zap.Int("chars", utf8.RuneCountInString(text)),
				zap.Bool("truncated", truncated),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.Corpus{}, err
	}

	return Build(docs), nil
}
