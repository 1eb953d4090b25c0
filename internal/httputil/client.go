// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client and error helpers shared by the
// model providers and source downloads.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// DefaultTimeout applies when HTTPConfig.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// MaxErrorBody bounds the response body carried by StatusError.
const MaxErrorBody = 2 << 10

// NewClient returns a client with cfg's timeout that sets cfg's User-Agent
// on requests that do not carry one.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var rt http.RoundTripper = http.DefaultTransport
	if cfg.UserAgent != "" {
		rt = &userAgent{agent: cfg.UserAgent, next: rt}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type userAgent struct {
	agent string
	next  http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", u.agent)
	return u.next.RoundTrip(req)
}

// StatusError is a non-2xx response. Body holds at most MaxErrorBody bytes.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Body)
}

// CheckStatus returns nil for 2xx responses. Otherwise it drains a bounded
// prefix of the body into a *StatusError. The caller still closes the body.
func CheckStatus(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody+1))
	body := strings.TrimSpace(string(data))
	if len(data) > MaxErrorBody {
		body = strings.TrimSpace(string(data[:MaxErrorBody])) + "..."
	}
	return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: body}
}
