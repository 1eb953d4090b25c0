// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests (model providers, source downloads).
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-intel/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ModelProvider identifies the hosted model API.
type ModelProvider string

const (
	ProviderGemini ModelProvider = "gemini"
	ProviderClaude ModelProvider = "claude"
)

// ModelConfig holds settings for the model invocation stage.
type ModelConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the hosted API: gemini (default) or claude.
	Provider ModelProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the credential for the provider. Usually left empty in the
	// config file and resolved from the environment or .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CallTimeout bounds one generate call. Expiry is reported as a model
	// invocation failure.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`
}

// TextBackend identifies the PDF text extraction tool.
type TextBackend string

const (
	TextNative     TextBackend = "native"
	TextPdftotext  TextBackend = "pdftotext"
	TextMarkitdown TextBackend = "markitdown"
)

// CorpusConfig holds settings for text ingestion.
type CorpusConfig struct {
	// Backend selects the text extraction tool.
	Backend TextBackend `json:"backend" yaml:"backend"`

	// MaxDocumentChars caps the extracted text of each document, counted in
	// Unicode code points (default 8000).
	MaxDocumentChars int `json:"max_document_chars" yaml:"max_document_chars"`

	// MinDocuments is the minimum number of uploads per analysis (default 2).
	MinDocuments int `json:"min_documents" yaml:"min_documents"`

	// Workers bounds concurrent text extraction (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// SpanPolicy selects how the JSON object is located in a model reply.
type SpanPolicy string

const (
	// SpanGreedy takes everything from the first '{' to the last '}'.
	SpanGreedy SpanPolicy = "greedy"
	// SpanBalanced takes the first structurally complete object.
	SpanBalanced SpanPolicy = "balanced"
)

// ExtractConfig holds settings for the report extractor.
type ExtractConfig struct {
	SpanPolicy SpanPolicy `json:"span_policy" yaml:"span_policy"`

	// ExcerptBytes bounds the raw reply excerpt carried by parse errors
	// (default 500).
	ExcerptBytes int `json:"excerpt_bytes" yaml:"excerpt_bytes"`
}

// ServerConfig holds settings for the browser UI.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// MaxUploadBytes bounds the multipart request body (default 64 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// SourceConfig holds settings for resolving CLI and MCP sources (paths,
// URLs, arXiv IDs, DOIs) to PDF bytes.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Mailto is sent to OpenAlex to join its polite pool when resolving DOIs.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// MaxBytes bounds one downloaded or read PDF (default 50 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`
}

// Config groups all settings for one process.
type Config struct {
	Model   ModelConfig   `json:"model" yaml:"model"`
	Corpus  CorpusConfig  `json:"corpus" yaml:"corpus"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Source  SourceConfig  `json:"source" yaml:"source"`

	// SecretsDir is the directory of credential files (default ".secrets/").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}
