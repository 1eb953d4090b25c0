// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source resolves the paper identifiers accepted by the CLI and the
// MCP server (local paths, arXiv IDs, DOIs, http(s) URLs) into uploads.
// DOIs are looked up in OpenAlex for an open-access PDF before falling back
// to the doi.org resolver.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-intel/internal/httputil"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// DefaultMaxBytes bounds one PDF when SourceConfig.MaxBytes is zero.
const DefaultMaxBytes = 50 << 20

// concurrency bounds parallel downloads in ResolveAll.
const concurrency = 4

// Endpoints used for resolution. Tests substitute httptest servers.
type Endpoints struct {
	ArxivPDF string
	DOI      string
	OpenAlex string
}

// DefaultEndpoints are the public services.
var DefaultEndpoints = Endpoints{
	ArxivPDF: "https://arxiv.org/pdf/",
	DOI:      "https://doi.org/",
	OpenAlex: "https://api.openalex.org/works/",
}

// Resolver loads sources into uploads.
type Resolver struct {
	client    *http.Client
	endpoints Endpoints
	mailto    string
	maxBytes  int64
	log       *zap.Logger
}

// NewResolver builds a Resolver from cfg.
func NewResolver(cfg types.SourceConfig, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Resolver{
		client:    httputil.NewClient(cfg.HTTPConfig),
		endpoints: DefaultEndpoints,
		mailto:    cfg.Mailto,
		maxBytes:  maxBytes,
		log:       log,
	}
}

// Resolve loads one identifier.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (types.Upload, error) {
	kind, normalized := Classify(identifier)
	name := Name(kind, normalized)

	var (
		data []byte
		err  error
	)
	switch kind {
	case KindPath:
		data, err = r.readFile(normalized)
	case KindArxiv:
		data, err = r.download(ctx, r.endpoints.ArxivPDF+normalized)
	case KindDOI:
		data, err = r.resolveDOI(ctx, normalized)
	case KindURL:
		data, err = r.download(ctx, normalized)
	default:
		return types.Upload{}, fmt.Errorf("unrecognized source %q (want a PDF path, URL, arXiv ID or DOI)", identifier)
	}
	if err != nil {
		return types.Upload{}, fmt.Errorf("loading %s %s: %w", kind, normalized, err)
	}

	r.log.Debug("source resolved",
		zap.String("kind", kind.String()),
		zap.String("name", name),
		zap.Int("bytes", len(data)),
	)
	return types.Upload{Name: name, Data: data}, nil
}

// ResolveAll loads identifiers concurrently and returns uploads in input
// order. The first failure cancels the rest.
func (r *Resolver) ResolveAll(ctx context.Context, identifiers []string) ([]types.Upload, error) {
	uploads := make([]types.Upload, len(identifiers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range identifiers {
		g.Go(func() error {
			u, err := r.Resolve(gctx, id)
			if err != nil {
				return err
			}
			uploads[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Size() > r.maxBytes {
		return nil, fmt.Errorf("file is %d bytes, limit is %d", fi.Size(), r.maxBytes)
	}
	return os.ReadFile(path)
}

// resolveDOI prefers the OpenAlex open-access PDF and falls back to the
// doi.org resolver, which usually redirects to the publisher.
func (r *Resolver) resolveDOI(ctx context.Context, doi string) ([]byte, error) {
	pdfURL, err := r.openAlexPDF(ctx, doi)
	if err != nil {
		r.log.Debug("OpenAlex lookup failed", zap.String("doi", doi), zap.Error(err))
	}
	if pdfURL != "" {
		return r.download(ctx, pdfURL)
	}
	return r.download(ctx, r.endpoints.DOI+doi)
}

type openAlexWork struct {
	BestOALocation *struct {
		PDFURL string `json:"pdf_url"`
	} `json:"best_oa_location"`
}

// openAlexPDF returns the open-access PDF URL for doi, or "" when OpenAlex
// knows none.
func (r *Resolver) openAlexPDF(ctx context.Context, doi string) (string, error) {
	apiURL := r.endpoints.OpenAlex + "https://doi.org/" + doi
	if r.mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(r.mailto)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating OpenAlex request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus("OpenAlex API", resp); err != nil {
		return "", err
	}
	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	if work.BestOALocation == nil {
		return "", nil
	}
	return work.BestOALocation.PDFURL, nil
}

var pdfMagic = []byte("%PDF")

func (r *Resolver) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(rawURL, resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("download exceeds %d bytes", r.maxBytes)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("response from %s is not a PDF (content type %q)", rawURL, resp.Header.Get("Content-Type"))
	}
	return data, nil
}
