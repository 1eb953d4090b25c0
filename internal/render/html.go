// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var htmlTmpl = template.Must(template.New("render").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	// jsArray marks a GraphPayload array as script content. The arrays come
	// from json.Marshal, which escapes <, > and &, so they cannot close the
	// surrounding script element.
	"jsArray": func(s string) template.JS { return template.JS(s) },
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// DefaultTitle is the page title for standalone reports.
const DefaultTitle = "Research Intelligence Report"

type htmlData struct {
	Title    string
	Sections []Section
}

// HTMLFragment renders sections as an HTML fragment for embedding in a
// larger page. The fragment includes the vis-network graph script.
func HTMLFragment(sections []Section) (template.HTML, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.ExecuteTemplate(&buf, "report", htmlData{Sections: sections}); err != nil {
		return "", fmt.Errorf("rendering report fragment: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// WriteHTML writes a standalone HTML page for sections to w.
func WriteHTML(w io.Writer, title string, sections []Section) error {
	if title == "" {
		title = DefaultTitle
	}
	if err := htmlTmpl.ExecuteTemplate(w, "page", htmlData{Title: title, Sections: sections}); err != nil {
		return fmt.Errorf("rendering report page: %w", err)
	}
	return nil
}
