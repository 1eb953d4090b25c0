// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the browser UI: an upload form, the rendered report
// and a health endpoint. One analysis runs at a time; a failed request
// re-renders the form with a message and leaves the server usable.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/internal/analysis"
	"github.com/pdiddy/paper-intel/internal/corpus"
	"github.com/pdiddy/paper-intel/internal/llm"
	"github.com/pdiddy/paper-intel/internal/render"
	"github.com/pdiddy/paper-intel/internal/report"
	"github.com/pdiddy/paper-intel/internal/secrets"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// Defaults for zero-valued ServerConfig fields.
const (
	DefaultAddr           = ":8080"
	DefaultMaxUploadBytes = 64 << 20
)

// Title is shown in the page header.
const Title = "RationelMind AI - Research Intelligence"

// multipartMemory is held in memory before parts spill to temp files.
const multipartMemory = 32 << 20

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// Analyzer is the pipeline the server drives.
type Analyzer interface {
	Run(ctx context.Context, uploads []types.Upload) (*analysis.Outcome, error)
	Ready() error
	MinDocuments() int
}

// Server is the browser UI.
type Server struct {
	analyzer Analyzer
	addr     string
	maxBytes int64
	log      *zap.Logger

	// busy admits one analysis at a time.
	busy chan struct{}
}

// New returns a Server for a.
func New(a Analyzer, cfg types.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Server{
		analyzer: a,
		addr:     addr,
		maxBytes: maxBytes,
		log:      log,
		busy:     make(chan struct{}, 1),
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("web UI listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type pageData struct {
	Title        string
	MinDocuments int
	ConfigError  string
	Error        string
	RequestID    string
	Documents    []analysis.DocumentInfo
	Drift        []string
	Report       template.HTML
}

func (s *Server) page() pageData {
	d := pageData{Title: Title, MinDocuments: s.analyzer.MinDocuments()}
	if err := s.analyzer.Ready(); err != nil {
		d.ConfigError = analysis.UserMessage(err)
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, s.page())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	d := s.page()

	uploads, err := s.readUploads(w, r)
	if err != nil {
		d.Error = analysis.UserMessage(err)
		s.write(w, statusFor(err), d)
		return
	}

	select {
	case s.busy <- struct{}{}:
		defer func() { <-s.busy }()
	case <-r.Context().Done():
		return
	}

	out, err := s.analyzer.Run(r.Context(), uploads)
	if err != nil {
		d.Error = analysis.UserMessage(err)
		s.write(w, statusFor(err), d)
		return
	}

	frag, err := render.HTMLFragment(out.Sections)
	if err != nil {
		s.log.Error("rendering report", zap.String("request_id", out.RequestID), zap.Error(err))
		d.Error = analysis.UserMessage(err)
		s.write(w, http.StatusInternalServerError, d)
		return
	}
	d.RequestID = out.RequestID
	d.Documents = out.Documents
	d.Drift = out.Drift
	d.Report = frag
	s.write(w, http.StatusOK, d)
}

// uploadTooLargeError reports a request body over the configured limit.
type uploadTooLargeError struct {
	limit int64
}

func (e *uploadTooLargeError) Error() string {
	return fmt.Sprintf("upload exceeds %d bytes", e.limit)
}

// readUploads returns the files posted in the "files" field in form
// order. A request without a multipart body yields no uploads, which the
// analyzer rejects as too few.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]types.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, &uploadTooLargeError{limit: s.maxBytes}
		case errors.Is(err, http.ErrNotMultipart):
			return nil, nil
		default:
			return nil, fmt.Errorf("reading upload: %w", err)
		}
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	uploads := make([]types.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, types.Upload{Name: fh.Filename, Data: data})
	}
	return uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func statusFor(err error) int {
	var (
		cfgErr   *secrets.ConfigurationError
		inputErr *corpus.InputValidationError
		tooLarge *uploadTooLargeError
		modelErr *llm.ModelInvocationError
		noJSON   *report.NoJSONFoundError
		badJSON  *report.MalformedJSONError
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &modelErr):
		if modelErr.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &noJSON), errors.As(err, &badJSON):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := struct {
		Status string `json:"status"`
		Ready  bool   `json:"ready"`
	}{Status: "ok", Ready: s.analyzer.Ready() == nil}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) write(w http.ResponseWriter, status int, d pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, "index", d); err != nil {
		s.log.Error("rendering page", zap.Error(err))
	}
}
