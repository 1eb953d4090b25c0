// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/pdiddy/paper-intel/internal/httputil"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiOptions configures a GeminiGenerator.
type GeminiOptions struct {
	APIKey string
	Model  string
	HTTP   types.HTTPConfig

	// BaseURL overrides the API endpoint. Tests point it at httptest.
	BaseURL string
}

// GeminiGenerator calls the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. It does not contact the API.
func NewGemini(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httputil.NewClient(modelHTTP(opts.HTTP)),
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Name returns "gemini/<model>".
func (g *GeminiGenerator) Name() string { return "gemini/" + g.model }

// Generate sends prompt as a single user turn with safety applied.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, safety Safety) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SafetySettings: geminiSafety(safety),
	})
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", fb.BlockReason)
		}
		return "", errors.New("Gemini API returned no candidates")
	}
	return resp.Text(), nil
}

func geminiSafety(s Safety) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(s))
	for _, setting := range s {
		out = append(out, &genai.SafetySetting{
			Category:  genai.HarmCategory(setting.Category),
			Threshold: genai.HarmBlockThreshold(setting.Threshold),
		})
	}
	return out
}
