// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// span is the candidate JSON text and its byte offset in the reply.
type span struct {
	text   string
	offset int
}

// locate finds the JSON candidate in reply according to policy. The
// boolean is false only when the reply holds no '{' followed later by '}'.
func locate(reply string, policy types.SpanPolicy) (span, bool) {
	if policy == types.SpanBalanced {
		if s, ok := firstBalanced(reply); ok {
			return s, true
		}
		// An unterminated object still yields a greedy span so the caller
		// reports it as malformed rather than missing.
	}
	return greedy(reply)
}

// greedy returns everything from the first '{' to the last '}'. Multiple
// independent objects in one reply end up in one span and fail to decode.
func greedy(reply string) (span, bool) {
	start := strings.IndexByte(reply, '{')
	if start < 0 {
		return span{}, false
	}
	end := strings.LastIndexByte(reply, '}')
	if end < start {
		return span{}, false
	}
	return span{text: reply[start : end+1], offset: start}, true
}

// firstBalanced scans for the first top-level object whose braces balance,
// skipping braces inside JSON strings. Byte iteration is safe because the
// delimiters are ASCII and never occur inside a multi-byte UTF-8 sequence.
func firstBalanced(reply string) (span, bool) {
	depth := 0
	start := -1
	inString := false
	escape := false

	for i := 0; i < len(reply); i++ {
		b := reply[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			// Quotes only open strings once we are inside an object; prose
			// before the first brace may contain stray quotes.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return span{text: reply[start : i+1], offset: start}, true
			}
		}
	}
	return span{}, false
}
