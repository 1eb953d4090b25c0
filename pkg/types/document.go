// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Upload is one file as received from a surface (web form, CLI argument,
// MCP tool call) before any text extraction.
type Upload struct {
	// Name is the display name, usually the original filename.
	Name string `json:"name" yaml:"name"`

	// Data is the raw PDF bytes.
	Data []byte `json:"-" yaml:"-"`
}

// RawDocument is the extracted, truncated text of one upload. It lives
// only until it has been concatenated into a Corpus.
type RawDocument struct {
	// Name is the source filename shown in the corpus delimiter line.
	Name string `json:"name" yaml:"name"`

	// Text is the extracted plain text, truncated to the per-document cap.
	Text string `json:"text" yaml:"text"`

	// Truncated reports whether Text was cut at the cap.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// Corpus is the ordered concatenation of RawDocuments submitted in one
// prompt. Documents keep upload order.
type Corpus struct {
	Documents []RawDocument `json:"documents" yaml:"documents"`

	// Text is the prompt-ready concatenation, each document prefixed with a
	// "--- Paper: <name> ---" delimiter line.
	Text string `json:"text" yaml:"text"`
}
