// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/paper-intel/internal/analysis"
	"github.com/pdiddy/paper-intel/internal/llm"
	"github.com/pdiddy/paper-intel/internal/secrets"
	"github.com/pdiddy/paper-intel/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const reply = `{
  "construct_analysis": {"shared": ["trust"], "unique_by_paper": []},
  "paper_summaries": [{"filename": "a.pdf", "authors": "A", "summary": "<b>bold</b>"}],
  "causal_contradiction": {"central_thesis": "T", "graph": {"nodes": [], "edges": []}},
  "reference_intelligence": {"recommendation_found": false},
  "multidisciplinary_connections": []
}`

type textOnly struct{}

func (textOnly) ExtractPlainText(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

type scriptedModel struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (m *scriptedModel) Name() string { return "scripted/test" }

func (m *scriptedModel) Generate(context.Context, string, llm.Safety) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.reply, m.err
}

func (m *scriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newServer(t *testing.T, opts analysis.Options, cfg types.ServerConfig) *Server {
	t.Helper()
	if opts.Text == nil {
		opts.Text = textOnly{}
	}
	log := zaptest.NewLogger(t)
	opts.Logger = log
	return New(analysis.New(opts), cfg, log)
}

// multipartBody builds a form with one "files" part per entry of files.
func multipartBody(t *testing.T, files map[string]string, order ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range order {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postFiles(t *testing.T, h http.Handler, names ...string) *httptest.ResponseRecorder {
	t.Helper()
	files := make(map[string]string, len(names))
	for _, n := range names {
		files[n] = "text of " + n
	}
	body, ct := multipartBody(t, files, names...)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	s := newServer(t, analysis.Options{Model: &scriptedModel{reply: reply}}, types.ServerConfig{})

	rec := get(s.Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, Title)
	assert.Contains(t, body, `name="files"`)
	assert.Contains(t, body, "Upload 2 or more PDFs")
	assert.NotContains(t, body, `type="submit" disabled`)
	assert.NotContains(t, body, `role="alert"`)
}

func TestIndexUnknownPath(t *testing.T) {
	s := newServer(t, analysis.Options{Model: &scriptedModel{}}, types.ServerConfig{})
	assert.Equal(t, http.StatusNotFound, get(s.Handler(), "/nope").Code)
}

func TestIndexShowsConfigurationBanner(t *testing.T) {
	cfgErr := &secrets.ConfigurationError{EnvVar: "GEMINI_API_KEY", File: ".secrets/gemini-api-key"}
	s := newServer(t, analysis.Options{ConfigErr: cfgErr}, types.ServerConfig{})

	body := get(s.Handler(), "/").Body.String()
	assert.Contains(t, body, "GEMINI_API_KEY not found.")
	assert.Contains(t, body, `type="submit" disabled`)
}

func TestAnalyze(t *testing.T) {
	m := &scriptedModel{reply: reply}
	s := newServer(t, analysis.Options{Model: m}, types.ServerConfig{})

	rec := postFiles(t, s.Handler(), "a.pdf", "b.pdf")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "Analysis complete!")
	assert.Contains(t, body, "a.pdf, b.pdf")
	assert.Contains(t, body, "<h2>7. Multidisciplinary Connections</h2>")
	assert.Contains(t, body, "&lt;b&gt;bold&lt;/b&gt;")
	assert.Equal(t, 1, m.Calls())
}

func TestAnalyzeRejectsSingleUpload(t *testing.T) {
	m := &scriptedModel{reply: reply}
	s := newServer(t, analysis.Options{Model: m}, types.ServerConfig{})

	rec := postFiles(t, s.Handler(), "a.pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload at least 2 PDFs.")
	assert.Zero(t, m.Calls())
}

func TestAnalyzeWithoutMultipartBody(t *testing.T) {
	m := &scriptedModel{reply: reply}
	s := newServer(t, analysis.Options{Model: m}, types.ServerConfig{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload at least 2 PDFs.")
	assert.Zero(t, m.Calls())
}

func TestAnalyzeConfigurationError(t *testing.T) {
	cfgErr := &secrets.ConfigurationError{EnvVar: "GEMINI_API_KEY", File: ".secrets/gemini-api-key"}
	s := newServer(t, analysis.Options{ConfigErr: cfgErr}, types.ServerConfig{})

	rec := postFiles(t, s.Handler(), "a.pdf", "b.pdf")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "GEMINI_API_KEY not found.")
}

func TestAnalyzeFailureKeepsServerUsable(t *testing.T) {
	tests := []struct {
		name   string
		model  *scriptedModel
		status int
		want   string
	}{
		{"model error", &scriptedModel{err: errors.New("quota exceeded")}, http.StatusBadGateway, "the model call failed: quota exceeded"},
		{"no json", &scriptedModel{reply: "I am unable to comply."}, http.StatusBadGateway, "contained no JSON object"},
		{"malformed json", &scriptedModel{reply: `{"a": }`}, http.StatusBadGateway, "was not valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, analysis.Options{Model: tt.model}, types.ServerConfig{})
			h := s.Handler()

			rec := postFiles(t, h, "a.pdf", "b.pdf")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Contains(t, rec.Body.String(), `name="files"`, "form is re-rendered")

			assert.Equal(t, http.StatusOK, get(h, "/").Code)
			tt.model.reply, tt.model.err = reply, nil
			assert.Equal(t, http.StatusOK, postFiles(t, h, "a.pdf", "b.pdf").Code)
		})
	}
}

func TestAnalyzeModelTimeout(t *testing.T) {
	s := newServer(t, analysis.Options{Model: blockingModel{}, CallTimeout: 10 * time.Millisecond}, types.ServerConfig{})

	rec := postFiles(t, s.Handler(), "a.pdf", "b.pdf")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "did not answer in time")
}

type blockingModel struct{}

func (blockingModel) Name() string { return "blocking/test" }

func (blockingModel) Generate(ctx context.Context, _ string, _ llm.Safety) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	m := &scriptedModel{reply: reply}
	s := newServer(t, analysis.Options{Model: m}, types.ServerConfig{MaxUploadBytes: 1024})

	files := map[string]string{"a.pdf": strings.Repeat("x", 4096), "b.pdf": "small"}
	body, ct := multipartBody(t, files, "a.pdf", "b.pdf")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload exceeds 1024 bytes")
	assert.Zero(t, m.Calls())
}

func TestAnalyzeWaitsForRunningAnalysis(t *testing.T) {
	m := &scriptedModel{reply: reply}
	s := newServer(t, analysis.Options{Model: m}, types.ServerConfig{})

	// Hold the slot as if another analysis were running.
	s.busy <- struct{}{}
	defer func() { <-s.busy }()

	body, ct := multipartBody(t, map[string]string{"a.pdf": "a", "b.pdf": "b"}, "a.pdf", "b.pdf")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/analyze", body).WithContext(ctx)
	req.Header.Set("Content-Type", ct)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	assert.Zero(t, m.Calls(), "second analysis must not start while the first runs")
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name  string
		opts  analysis.Options
		ready bool
	}{
		{"ready", analysis.Options{Model: &scriptedModel{}}, true},
		{"missing credential", analysis.Options{ConfigErr: &secrets.ConfigurationError{EnvVar: "GEMINI_API_KEY"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.opts, types.ServerConfig{})
			rec := get(s.Handler(), "/healthz")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got struct {
				Status string `json:"status"`
				Ready  bool   `json:"ready"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "ok", got.Status)
			assert.Equal(t, tt.ready, got.Ready)
		})
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newServer(t, analysis.Options{Model: &scriptedModel{reply: reply}}, types.ServerConfig{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
