// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis runs one request end to end: ingest the uploads, render
// the prompt, call the model, extract the report and lay it out as display
// sections. Failures come back as typed errors; UserMessage turns them into
// the text a surface shows.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/internal/corpus"
	"github.com/pdiddy/paper-intel/internal/llm"
	"github.com/pdiddy/paper-intel/internal/pdftext"
	"github.com/pdiddy/paper-intel/internal/prompt"
	"github.com/pdiddy/paper-intel/internal/render"
	"github.com/pdiddy/paper-intel/internal/report"
	"github.com/pdiddy/paper-intel/internal/secrets"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// Timings records how long each stage took.
type Timings struct {
	Ingest  time.Duration `json:"ingest" yaml:"ingest"`
	Model   time.Duration `json:"model" yaml:"model"`
	Extract time.Duration `json:"extract" yaml:"extract"`
}

// Outcome is the result of one successful request.
type Outcome struct {
	RequestID string `json:"request_id" yaml:"request_id"`

	// Documents lists the ingested papers in upload order. Empty for
	// ParseReply.
	Documents []DocumentInfo `json:"documents,omitempty" yaml:"documents,omitempty"`

	Report   types.Report     `json:"report" yaml:"report"`
	Drift    []string         `json:"drift,omitempty" yaml:"drift,omitempty"`
	Sections []render.Section `json:"-" yaml:"-"`

	// Reply is the raw model reply.
	Reply   string  `json:"-" yaml:"-"`
	Timings Timings `json:"timings" yaml:"timings"`
}

// DocumentInfo describes one ingested paper without its text.
type DocumentInfo struct {
	Name      string `json:"name" yaml:"name"`
	Chars     int    `json:"chars" yaml:"chars"`
	Truncated bool   `json:"truncated" yaml:"truncated"`
}

// Options wires an Analyzer.
type Options struct {
	// Text extracts plain text from uploaded PDFs. Nil selects the
	// in-process reader.
	Text pdftext.Extractor

	// Model answers the prompt. Nil disables Run; ConfigErr says why.
	Model llm.Generator

	// ConfigErr is the startup configuration failure, usually a
	// *secrets.ConfigurationError. Run returns it unchanged.
	ConfigErr error

	Corpus      types.CorpusConfig
	Extract     types.ExtractConfig
	CallTimeout time.Duration
	Logger      *zap.Logger
}

// Analyzer runs requests. It is safe for concurrent use.
type Analyzer struct {
	text        pdftext.Extractor
	model       llm.Generator
	configErr   error
	corpus      types.CorpusConfig
	extractor   *report.Extractor
	callTimeout time.Duration
	log         *zap.Logger
}

// New builds an Analyzer from opts.
func New(opts Options) *Analyzer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	configErr := opts.ConfigErr
	if opts.Model == nil && configErr == nil {
		configErr = errors.New("no model configured")
	}
	text := opts.Text
	if text == nil {
		text = pdftext.NewNative(log)
	}
	return &Analyzer{
		text:        text,
		model:       opts.Model,
		configErr:   configErr,
		corpus:      opts.Corpus,
		extractor:   report.NewExtractor(opts.Extract, log),
		callTimeout: opts.CallTimeout,
		log:         log,
	}
}

// Ready returns the configuration error that disables Run, or nil.
func (a *Analyzer) Ready() error {
	return a.configErr
}

// MinDocuments is the number of uploads Run requires.
func (a *Analyzer) MinDocuments() int {
	if a.corpus.MinDocuments > 0 {
		return a.corpus.MinDocuments
	}
	return corpus.DefaultMinDocuments
}

// Run analyses uploads. Validation happens before any extraction and the
// model is called exactly once.
func (a *Analyzer) Run(ctx context.Context, uploads []types.Upload) (*Outcome, error) {
	if a.configErr != nil {
		return nil, a.configErr
	}
	id := uuid.NewString()
	log := a.log.With(zap.String("request_id", id))

	start := time.Now()
	c, err := corpus.Ingest(ctx, a.text, uploads, a.corpus, log)
	if err != nil {
		log.Info("ingest failed", zap.Int("uploads", len(uploads)), zap.Error(err))
		return nil, err
	}
	ingest := time.Since(start)

	p, err := prompt.Render(c.Text)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	reply, err := llm.Invoke(ctx, a.model, p, a.callTimeout, log)
	if err != nil {
		return nil, err
	}
	model := time.Since(start)

	out, err := a.parse(id, reply, log)
	if err != nil {
		return nil, err
	}
	out.Timings.Ingest = ingest
	out.Timings.Model = model
	out.Documents = make([]DocumentInfo, len(c.Documents))
	for i, d := range c.Documents {
		out.Documents[i] = DocumentInfo{Name: d.Name, Chars: len([]rune(d.Text)), Truncated: d.Truncated}
	}
	log.Info("analysis complete",
		zap.Int("documents", len(c.Documents)),
		zap.Int("corpus_chars", len(c.Text)),
		zap.Duration("ingest", ingest),
		zap.Duration("model", model),
		zap.Int("drift", len(out.Drift)),
	)
	return out, nil
}

// ParseReply runs only extraction and rendering on a saved model reply.
// It needs no credential.
func (a *Analyzer) ParseReply(reply string) (*Outcome, error) {
	id := uuid.NewString()
	return a.parse(id, reply, a.log.With(zap.String("request_id", id)))
}

func (a *Analyzer) parse(id, reply string, log *zap.Logger) (*Outcome, error) {
	start := time.Now()
	res, err := a.extractor.Analyze(reply)
	if err != nil {
		log.Warn("model reply could not be parsed", zap.Int("reply_chars", len(reply)), zap.Error(err))
		return nil, err
	}
	return &Outcome{
		RequestID: id,
		Report:    res.Report,
		Drift:     res.Drift,
		Sections:  render.Render(res.Report),
		Reply:     reply,
		Timings:   Timings{Extract: time.Since(start)},
	}, nil
}

// UserMessage returns the text a surface shows for err.
func UserMessage(err error) string {
	var (
		cfgErr   *secrets.ConfigurationError
		inputErr *corpus.InputValidationError
		modelErr *llm.ModelInvocationError
		noJSON   *report.NoJSONFoundError
		badJSON  *report.MalformedJSONError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return cfgErr.Error()
	case errors.As(err, &inputErr):
		return inputErr.Reason
	case errors.As(err, &modelErr):
		if modelErr.Timeout {
			return "Analysis failed: the model did not answer in time. Please try again."
		}
		return fmt.Sprintf("Analysis failed: the model call failed: %v", modelErr.Err)
	case errors.As(err, &noJSON):
		return fmt.Sprintf("Analysis failed: the model reply contained no JSON object. Reply began: %s", noJSON.Excerpt)
	case errors.As(err, &badJSON):
		return fmt.Sprintf("Analysis failed: the model reply was not valid JSON (%v). Reply began: %s", badJSON.Err, badJSON.Excerpt)
	case errors.Is(err, context.Canceled):
		return "Analysis cancelled."
	default:
		return fmt.Sprintf("Analysis failed: %v", err)
	}
}
