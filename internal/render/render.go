// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render walks a types.Report into ordered display sections and
// encodes those sections as Markdown, terminal text or an HTML page.
package render

import (
	"encoding/json"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// Section titles in display order.
const (
	TitleShared      = "Shared Constructs"
	TitleUnique      = "Unique Constructs by Paper"
	TitleSummaries   = "Paper Summaries & Bias"
	TitleCausal      = "Causal Contradiction"
	TitleGraph       = "Conflict Graph"
	TitleReference   = "Reference Intelligence"
	TitleConnections = "Multidisciplinary Connections"
)

// NoRecommendation is shown when the model found no paper to recommend.
const NoRecommendation = "No specific paper could be recommended from the references."

// ItemKind selects how a display item is drawn.
type ItemKind string

const (
	// KindHeading is a bold sub-heading: Label, with Note in parentheses.
	KindHeading ItemKind = "heading"
	// KindBullet is a list entry: Text, optionally led by Label (Note).
	KindBullet ItemKind = "bullet"
	// KindField is a labelled line: Label: Text, with Note in parentheses.
	KindField ItemKind = "field"
	// KindText is a plain paragraph.
	KindText ItemKind = "text"
	// KindNotice is a fixed informational message.
	KindNotice ItemKind = "notice"
	// KindGraph carries a conflict graph payload.
	KindGraph ItemKind = "graph"
)

// Item is one display element. String fields hold report content verbatim.
type Item struct {
	Kind  ItemKind      `json:"kind" yaml:"kind"`
	Label string        `json:"label,omitempty" yaml:"label,omitempty"`
	Note  string        `json:"note,omitempty" yaml:"note,omitempty"`
	Text  string        `json:"text,omitempty" yaml:"text,omitempty"`
	Graph *GraphPayload `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// Section is a titled, ordered list of items.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

// GraphPayload is the vis-network input: JSON arrays of nodes and edges.
// Elements are passed through without validation.
type GraphPayload struct {
	Nodes string `json:"nodes" yaml:"nodes"`
	Edges string `json:"edges" yaml:"edges"`
}

// Render maps r onto the seven display sections. It never fails: every
// Report field already carries a default. List order follows the report.
func Render(r types.Report) []Section {
	return []Section{
		sharedSection(r.ConstructAnalysis),
		uniqueSection(r.ConstructAnalysis),
		summariesSection(r.PaperSummaries),
		causalSection(r.CausalContradiction),
		graphSection(r.CausalContradiction.Graph),
		referenceSection(r.ReferenceIntelligence),
		connectionsSection(r.MultidisciplinaryConnections),
	}
}

func sharedSection(ca types.ConstructAnalysis) Section {
	items := make([]Item, 0, len(ca.Shared))
	for _, c := range ca.Shared {
		items = append(items, Item{Kind: KindBullet, Text: c})
	}
	return Section{Title: TitleShared, Items: items}
}

func uniqueSection(ca types.ConstructAnalysis) Section {
	var items []Item
	for _, p := range ca.UniqueByPaper {
		items = append(items, Item{Kind: KindHeading, Label: p.Filename})
		for _, u := range p.Unique {
			items = append(items, Item{Kind: KindBullet, Text: u})
		}
	}
	return Section{Title: TitleUnique, Items: nonNil(items)}
}

func summariesSection(papers []types.PaperSummary) Section {
	items := make([]Item, 0, 3*len(papers))
	for _, p := range papers {
		items = append(items,
			Item{Kind: KindHeading, Label: p.Filename, Note: p.Authors},
			Item{Kind: KindField, Label: "Summary", Text: p.Summary},
			Item{Kind: KindField, Label: "Bias", Text: p.BiasAssessment.Level, Note: p.BiasAssessment.Justification},
		)
	}
	return Section{Title: TitleSummaries, Items: items}
}

func causalSection(cc types.CausalContradiction) Section {
	items := make([]Item, 0, 1+len(cc.Stances))
	items = append(items, Item{Kind: KindField, Label: "Central Thesis", Text: cc.CentralThesis})
	for _, s := range cc.Stances {
		items = append(items, Item{Kind: KindBullet, Label: s.Filename, Note: s.Authors, Text: s.Stance})
	}
	return Section{Title: TitleCausal, Items: items}
}

func graphSection(g types.ConflictGraph) Section {
	payload := Graph(g)
	return Section{Title: TitleGraph, Items: []Item{{Kind: KindGraph, Graph: &payload}}}
}

func referenceSection(ref types.ReferenceIntelligence) Section {
	if !ref.RecommendationFound {
		return Section{Title: TitleReference, Items: []Item{{Kind: KindNotice, Text: NoRecommendation}}}
	}
	return Section{Title: TitleReference, Items: []Item{
		{Kind: KindField, Label: "Recommended Paper", Text: ref.RecommendedPaperTitle},
		{Kind: KindText, Text: ref.Justification},
	}}
}

func connectionsSection(conns []types.Connection) Section {
	items := make([]Item, 0, len(conns))
	for _, c := range conns {
		items = append(items, Item{Kind: KindBullet, Label: c.Field, Text: c.Connection})
	}
	return Section{Title: TitleConnections, Items: items}
}

// Graph serializes the opaque node and edge arrays for the graph renderer.
// Missing arrays serialize as [].
func Graph(g types.ConflictGraph) GraphPayload {
	return GraphPayload{Nodes: rawArray(g.Nodes), Edges: rawArray(g.Edges)}
}

func rawArray(elems []json.RawMessage) string {
	if len(elems) == 0 {
		return "[]"
	}
	b, err := json.Marshal(elems)
	if err != nil {
		// Elements came out of a successful decode, so they are valid JSON.
		return "[]"
	}
	return string(b)
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
