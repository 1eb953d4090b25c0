// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown encodes sections as a Markdown document. Report strings are
// written as-is; the graph becomes a fenced JSON block.
func Markdown(sections []Section) string {
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, sec.Title)

		var prev ItemKind
		for j, it := range sec.Items {
			if j > 0 && !(it.Kind == KindBullet && prev == KindBullet) {
				b.WriteString("\n")
			}
			writeMarkdownItem(&b, it)
			prev = it.Kind
		}
	}
	return b.String()
}

func writeMarkdownItem(b *strings.Builder, it Item) {
	switch it.Kind {
	case KindHeading:
		fmt.Fprintf(b, "**%s**\n", withNote(it.Label, it.Note))
	case KindBullet:
		if it.Label == "" {
			fmt.Fprintf(b, "- %s\n", it.Text)
			return
		}
		fmt.Fprintf(b, "- **%s**: %s\n", withNote(it.Label, it.Note), it.Text)
	case KindField:
		fmt.Fprintf(b, "**%s:** %s\n", it.Label, withNote(it.Text, it.Note))
	case KindText:
		fmt.Fprintf(b, "%s\n", it.Text)
	case KindNotice:
		fmt.Fprintf(b, "_%s_\n", it.Text)
	case KindGraph:
		if it.Graph == nil {
			return
		}
		fmt.Fprintf(b, "```json\n{\"nodes\": %s, \"edges\": %s}\n```\n", it.Graph.Nodes, it.Graph.Edges)
	}
}

// withNote renders "s (note)", or s alone when note is empty.
func withNote(s, note string) string {
	if note == "" {
		return s
	}
	return s + " (" + note + ")"
}

// TerminalOptions controls terminal rendering.
type TerminalOptions struct {
	// Width is the word-wrap column (default 80).
	Width int

	// Style is a glamour standard style name ("dark", "light", "notty").
	// Empty selects a style from the terminal background.
	Style string
}

// Terminal renders sections for a terminal via glamour.
func Terminal(sections []Section, opts TerminalOptions) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if opts.Style != "" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(Markdown(sections))
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
