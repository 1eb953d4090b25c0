// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-intel pipeline:
// uploaded documents, the combined corpus, the structured Report parsed from
// a model reply, and configuration.
package types

import "encoding/json"

// Report is the fully defaulted structured result of one analysis. Every
// field has a usable zero value so rendering never has to check for
// absence. A Report is built once by the extractor and not mutated after.
type Report struct {
	// ConstructAnalysis lists constructs shared by all papers and those
	// unique to each paper.
	ConstructAnalysis ConstructAnalysis `json:"construct_analysis" yaml:"construct_analysis"`

	// PaperSummaries holds one summary and bias assessment per paper.
	PaperSummaries []PaperSummary `json:"paper_summaries" yaml:"paper_summaries"`

	// CausalContradiction describes the central thesis, each paper's stance
	// on it, and the conflict graph.
	CausalContradiction CausalContradiction `json:"causal_contradiction" yaml:"causal_contradiction"`

	// ReferenceIntelligence is the model's follow-up reading recommendation.
	ReferenceIntelligence ReferenceIntelligence `json:"reference_intelligence" yaml:"reference_intelligence"`

	// MultidisciplinaryConnections links the papers to other fields.
	MultidisciplinaryConnections []Connection `json:"multidisciplinary_connections" yaml:"multidisciplinary_connections"`
}

// ConstructAnalysis groups shared and per-paper constructs.
type ConstructAnalysis struct {
	Shared        []string          `json:"shared" yaml:"shared"`
	UniqueByPaper []PaperConstructs `json:"unique_by_paper" yaml:"unique_by_paper"`
}

// PaperConstructs lists the constructs only one paper uses.
type PaperConstructs struct {
	Filename string   `json:"filename" yaml:"filename"`
	Unique   []string `json:"unique" yaml:"unique"`
}

// PaperSummary is the model's summary of one paper.
type PaperSummary struct {
	Filename       string         `json:"filename" yaml:"filename"`
	Authors        string         `json:"authors" yaml:"authors"`
	Summary        string         `json:"summary" yaml:"summary"`
	BiasAssessment BiasAssessment `json:"bias_assessment" yaml:"bias_assessment"`
}

// BiasAssessment rates the bias of one paper.
type BiasAssessment struct {
	// Level is free text as produced by the model (e.g. "Low", "Moderate").
	Level         string `json:"level" yaml:"level"`
	Justification string `json:"justification" yaml:"justification"`
}

// CausalContradiction captures where the papers disagree.
type CausalContradiction struct {
	CentralThesis string        `json:"central_thesis" yaml:"central_thesis"`
	Stances       []Stance      `json:"stances" yaml:"stances"`
	Graph         ConflictGraph `json:"graph" yaml:"graph"`
}

// Stance is one paper's position on the central thesis.
type Stance struct {
	Filename string `json:"filename" yaml:"filename"`
	Authors  string `json:"authors" yaml:"authors"`
	Stance   string `json:"stance" yaml:"stance"`
}

// ConflictGraph holds vis-network nodes and edges. Elements are opaque:
// they are kept as the model wrote them and only re-serialized for the
// graph renderer.
type ConflictGraph struct {
	Nodes []json.RawMessage `json:"nodes" yaml:"nodes"`
	Edges []json.RawMessage `json:"edges" yaml:"edges"`
}

// MarshalYAML decodes the opaque elements so YAML output shows structure
// instead of byte arrays.
func (g ConflictGraph) MarshalYAML() (any, error) {
	decode := func(raw []json.RawMessage) ([]any, error) {
		out := make([]any, 0, len(raw))
		for _, r := range raw {
			var v any
			if err := json.Unmarshal(r, &v); err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	nodes, err := decode(g.Nodes)
	if err != nil {
		return nil, err
	}
	edges, err := decode(g.Edges)
	if err != nil {
		return nil, err
	}
	return map[string]any{"nodes": nodes, "edges": edges}, nil
}

// ReferenceIntelligence is the recommended next paper, if any.
type ReferenceIntelligence struct {
	RecommendationFound   bool   `json:"recommendation_found" yaml:"recommendation_found"`
	RecommendedPaperTitle string `json:"recommended_paper_title" yaml:"recommended_paper_title"`
	Justification         string `json:"justification" yaml:"justification"`
}

// Connection links the analysed papers to another discipline.
type Connection struct {
	Field      string `json:"field" yaml:"field"`
	Connection string `json:"connection" yaml:"connection"`
}
