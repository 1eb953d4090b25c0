// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-intel/internal/analysis"
	"github.com/pdiddy/paper-intel/internal/render"
)

// Output formats accepted by --format.
const (
	formatTerminal = "terminal"
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatHTML     = "html"
)

// writeOutcome encodes out to w in format. width applies to terminal
// output only.
func writeOutcome(w io.Writer, out *analysis.Outcome, format string, width int) error {
	switch format {
	case formatTerminal, "":
		s, err := render.Terminal(out.Sections, render.TerminalOptions{Width: width})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s)
		return err
	case formatMarkdown:
		_, err := io.WriteString(w, render.Markdown(out.Sections))
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case formatHTML:
		return render.WriteHTML(w, "", out.Sections)
	default:
		return fmt.Errorf("unknown format %q (want terminal, markdown, json, yaml or html)", format)
	}
}

// emit writes out to path, or to stdout when path is empty.
func emit(stdout io.Writer, path string, out *analysis.Outcome, format string, width int) error {
	if path == "" {
		return writeOutcome(stdout, out, format, width)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writeOutcome(f, out, format, width); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// userError shows the surface message for err while keeping err in the
// chain.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func surface(err error) error {
	if err == nil {
		return nil
	}
	return &userError{msg: analysis.UserMessage(err), err: err}
}
