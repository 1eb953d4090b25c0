// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies a source identifier.
type Kind int

const (
	KindUnknown Kind = iota
	KindPath
	KindArxiv
	KindDOI
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindArxiv:
		return "arxiv"
	case KindDOI:
		return "doi"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// arxivPattern matches "2301.07041", "arXiv:2301.07041" and "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches DOIs such as "10.1145/1234567.1234568", with or
// without a "doi:" or resolver prefix.
var doiPattern = regexp.MustCompile(`^(?:doi:|https?://(?:dx\.)?doi\.org/)?(10\.\d{4,9}/\S+)$`)

// Classify determines the identifier kind and its normalized form. An
// existing file wins over every pattern; a non-URL ending in ".pdf" is
// treated as a path so a typo yields a file error, not "unrecognized".
func Classify(identifier string) (Kind, string) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return KindUnknown, identifier
	}

	if fi, err := os.Stat(identifier); err == nil && !fi.IsDir() {
		return KindPath, identifier
	}

	if m := arxivPattern.FindStringSubmatch(identifier); m != nil {
		return KindArxiv, m[1]
	}

	if m := doiPattern.FindStringSubmatch(identifier); m != nil {
		return KindDOI, m[1]
	}

	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL, identifier
	}

	if strings.EqualFold(filepath.Ext(identifier), ".pdf") {
		return KindPath, identifier
	}

	return KindUnknown, identifier
}

// Name returns the display filename for a classified identifier. It is the
// name the model sees in the corpus delimiter line.
func Name(kind Kind, normalized string) string {
	switch kind {
	case KindPath:
		return filepath.Base(normalized)
	case KindArxiv:
		return normalized + ".pdf"
	case KindDOI:
		return strings.NewReplacer("/", "-", ":", "-").Replace(normalized) + ".pdf"
	case KindURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return urlHashName(normalized)
		}
		base := filepath.Base(u.Path)
		if base == "" || base == "." || base == "/" {
			return urlHashName(normalized)
		}
		if filepath.Ext(base) == "" {
			base += ".pdf"
		}
		return base
	default:
		return normalized
	}
}

func urlHashName(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("url-%x.pdf", h[:8])
}
