// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-intel/internal/httputil"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// Claude Messages API defaults.
const (
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
	claudeAPIURL       = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion   = "2023-06-01"
	claudeMaxTokens    = 8192
)

// ClaudeOptions configures a ClaudeGenerator.
type ClaudeOptions struct {
	APIKey string
	Model  string
	HTTP   types.HTTPConfig

	// URL overrides the Messages endpoint. Tests point it at httptest.
	URL string
}

// ClaudeGenerator calls the Anthropic Messages API. The API has no
// per-request safety thresholds, so Safety is not sent.
type ClaudeGenerator struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewClaude returns a ClaudeGenerator.
func NewClaude(opts ClaudeOptions) *ClaudeGenerator {
	model := opts.Model
	if model == "" {
		model = DefaultClaudeModel
	}
	url := opts.URL
	if url == "" {
		url = claudeAPIURL
	}
	return &ClaudeGenerator{
		apiKey: opts.APIKey,
		model:  model,
		url:    url,
		client: httputil.NewClient(modelHTTP(opts.HTTP)),
	}
}

// Name returns "claude/<model>".
func (c *ClaudeGenerator) Name() string { return "claude/" + c.model }

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate sends prompt as one user message and joins the text blocks of
// the reply.
func (c *ClaudeGenerator) Generate(ctx context.Context, prompt string, _ Safety) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus("Claude API", resp); err != nil {
		return "", err
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var b strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text content in Claude API response")
	}
	return b.String(), nil
}
