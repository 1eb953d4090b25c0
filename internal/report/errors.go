// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptBytes bounds the raw reply excerpt attached to parse errors.
const DefaultExcerptBytes = 500

// NoJSONFoundError reports a reply with no brace-delimited span at all.
type NoJSONFoundError struct {
	// Excerpt is a bounded prefix of the raw reply.
	Excerpt string
}

func (e *NoJSONFoundError) Error() string {
	return fmt.Sprintf("no JSON object found in model reply (raw: %q)", e.Excerpt)
}

// MalformedJSONError reports a located span that did not decode as a JSON
// object.
type MalformedJSONError struct {
	// Excerpt is a bounded prefix of the raw reply.
	Excerpt string

	// Offset is the byte offset of the span within the reply.
	Offset int

	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON in model reply at offset %d: %v (raw: %q)", e.Offset, e.Err, e.Excerpt)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// excerpt returns at most limit bytes of s, cut on a rune boundary, with an
// ellipsis when anything was dropped.
func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		limit = DefaultExcerptBytes
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
