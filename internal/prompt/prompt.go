// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the analysis instruction sent to the model. The
// template is fixed; the combined corpus text is its only input.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// analysisTmpl spells out the JSON object the report extractor reads. Key
// names here must stay in step with the report package.
var analysisTmpl = template.Must(template.New("analysis").Parse(`You are a research intelligence analyst. You are given the extracted text of several academic papers. Each paper starts with a line of the form "--- Paper: <filename> ---". Compare the papers and produce a structured intelligence report.

Produce a single JSON object with exactly these keys:

- "construct_analysis": an object with
  - "shared": an array of strings naming theoretical constructs that appear in two or more papers;
  - "unique_by_paper": an array of objects {"filename": string, "unique": array of strings}, one per paper, listing constructs found only in that paper.
- "paper_summaries": an array with one object per paper:
  {"filename": string, "authors": string, "summary": string, "bias_assessment": {"level": "Low" | "Medium" | "High", "justification": string}}.
- "causal_contradiction": an object with
  - "central_thesis": a one-sentence causal claim that the papers address;
  - "stances": an array of {"filename": string, "authors": string, "stance": string} describing whether each paper supports, contradicts or qualifies the thesis;
  - "graph": {"nodes": array, "edges": array} for a vis-network diagram. Nodes are {"id": string, "label": string, "group": string}. Edges are {"from": string, "to": string, "label": string}. Include one node for the thesis and one per paper.
- "reference_intelligence": an object with
  - "recommendation_found": boolean, true only if a paper cited in the references is clearly worth reading next;
  - "recommended_paper_title": string;
  - "justification": string.
- "multidisciplinary_connections": an array of {"field": string, "connection": string} linking the findings to other disciplines.

Use the filenames exactly as they appear in the paper headers. Use an empty string or empty array when something cannot be determined.

Papers:

{{.Corpus}}
Return exactly one JSON object, no markdown.
`))

// Render substitutes corpus into the analysis template.
func Render(corpus string) (string, error) {
	var buf bytes.Buffer
	if err := analysisTmpl.Execute(&buf, struct{ Corpus string }{Corpus: corpus}); err != nil {
		return "", fmt.Errorf("rendering analysis prompt: %w", err)
	}
	return buf.String(), nil
}
