// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// echoExtractor returns the upload bytes as text. Delays are keyed by the
// text so tests can force out-of-order completion.
type echoExtractor struct {
	delay map[string]time.Duration
	fail  map[string]error
	calls atomic.Int32
}

func (e *echoExtractor) ExtractPlainText(ctx context.Context, data []byte) (string, error) {
	e.calls.Add(1)
	s := string(data)
	if d := e.delay[s]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := e.fail[s]; err != nil {
		return "", err
	}
	return s, nil
}

func uploads(names ...string) []types.Upload {
	out := make([]types.Upload, len(names))
	for i, n := range names {
		out[i] = types.Upload{Name: n + ".pdf", Data: []byte("text of " + n)}
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		uploads []types.Upload
		min     int
		wantErr string
	}{
		{name: "no uploads", uploads: nil, wantErr: "Please upload at least 2 PDFs."},
		{name: "one upload", uploads: uploads("a"), wantErr: "Please upload at least 2 PDFs."},
		{name: "two uploads", uploads: uploads("a", "b")},
		{name: "custom minimum", uploads: uploads("a", "b"), min: 3, wantErr: "Please upload at least 3 PDFs."},
		{
			name:    "empty upload",
			uploads: []types.Upload{{Name: "a.pdf", Data: []byte("x")}, {Name: "b.pdf"}},
			wantErr: "Uploaded file b.pdf is empty.",
		},
		{
			name:    "empty upload without name",
			uploads: []types.Upload{{Data: []byte("x")}, {}},
			wantErr: "Uploaded file #2 is empty.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.uploads, tt.min)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ive *InputValidationError
			require.ErrorAs(t, err, &ive)
			assert.Equal(t, tt.wantErr, ive.Reason)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		limit         int
		want          string
		wantTruncated bool
	}{
		{name: "under cap", text: "abc", limit: 5, want: "abc"},
		{name: "exactly cap", text: "abcde", limit: 5, want: "abcde"},
		{name: "over cap", text: "abcdefg", limit: 5, want: "abcde", wantTruncated: true},
		{name: "counts code points", text: "αβγδεζ", limit: 3, want: "αβγ", wantTruncated: true},
		{name: "no cap", text: "abc", limit: 0, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestBuild(t *testing.T) {
	c := Build([]types.RawDocument{
		{Name: "a.pdf", Text: "alpha"},
		{Name: "b.pdf", Text: "beta"},
	})
	assert.Equal(t, "--- Paper: a.pdf ---\nalpha\n\n--- Paper: b.pdf ---\nbeta\n\n", c.Text)
	assert.Len(t, c.Documents, 2)
}

func TestIngestRejectsSingleUploadBeforeExtraction(t *testing.T) {
	ex := &echoExtractor{}
	_, err := Ingest(context.Background(), ex, uploads("only"), types.CorpusConfig{}, nil)

	var ive *InputValidationError
	require.ErrorAs(t, err, &ive)
	assert.Zero(t, ex.calls.Load())
}

func TestIngestKeepsUploadOrder(t *testing.T) {
	ex := &echoExtractor{delay: map[string]time.Duration{
		"text of first":  30 * time.Millisecond,
		"text of second": 10 * time.Millisecond,
	}}
	c, err := Ingest(context.Background(), ex, uploads("first", "second", "third"), types.CorpusConfig{Workers: 3}, nil)
	require.NoError(t, err)

	names := []string{c.Documents[0].Name, c.Documents[1].Name, c.Documents[2].Name}
	assert.Equal(t, []string{"first.pdf", "second.pdf", "third.pdf"}, names)
	assert.Less(t, strings.Index(c.Text, "first.pdf"), strings.Index(c.Text, "second.pdf"))
	assert.Less(t, strings.Index(c.Text, "second.pdf"), strings.Index(c.Text, "third.pdf"))
}

func TestIngestTruncatesEachDocument(t *testing.T) {
	long := strings.Repeat("x", DefaultMaxDocumentChars+100)
	in := []types.Upload{
		{Name: "long.pdf", Data: []byte(long)},
		{Name: "short.pdf", Data: []byte("short")},
	}
	c, err := Ingest(context.Background(), &echoExtractor{}, in, types.CorpusConfig{}, nil)
	require.NoError(t, err)

	assert.Len(t, c.Documents[0].Text, DefaultMaxDocumentChars)
	assert.True(t, c.Documents[0].Truncated)
	assert.Equal(t, "short", c.Documents[1].Text)
	assert.False(t, c.Documents[1].Truncated)
	assert.True(t, strings.HasPrefix(c.Text, "--- Paper: long.pdf ---\n"+strings.Repeat("x", DefaultMaxDocumentChars)+"\n\n--- Paper: short.pdf ---\n"))
}

func TestIngestCustomCap(t *testing.T) {
	c, err := Ingest(context.Background(), &echoExtractor{}, uploads("a", "b"), types.CorpusConfig{MaxDocumentChars: 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, "--- Paper: a.pdf ---\ntext\n\n--- Paper: b.pdf ---\ntext\n\n", c.Text)
}

func TestIngestExtractionFailure(t *testing.T) {
	boom := errors.New("not a PDF")
	ex := &echoExtractor{fail: map[string]error{"text of b": boom}}

	_, err := Ingest(context.Background(), ex, uploads("a", "b"), types.CorpusConfig{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "extracting text from b.pdf")
}
