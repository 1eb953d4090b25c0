// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-intel/pkg/types"
)

const fullReply = "Here is the analysis you asked for:\n```json\n" + `{
  "construct_analysis": {
    "shared": ["working memory", "cognitive load"],
    "unique_by_paper": [
      {"filename": "a.pdf", "unique": ["schema theory"]},
      {"filename": "b.pdf", "unique": ["dual coding", "split attention"]}
    ]
  },
  "paper_summaries": [
    {"filename": "a.pdf", "authors": "Sweller", "summary": "Load matters.",
     "bias_assessment": {"level": "Low", "justification": "Controlled trials."}},
    {"filename": "b.pdf", "authors": "Paivio", "summary": "Two channels.",
     "bias_assessment": {"level": "Moderate", "justification": "Small sample."}}
  ],
  "causal_contradiction": {
    "central_thesis": "Extra media always helps learning.",
    "stances": [
      {"filename": "a.pdf", "authors": "Sweller", "stance": "Rejects"},
      {"filename": "b.pdf", "authors": "Paivio", "stance": "Supports"}
    ],
    "graph": {
      "nodes": [{"id": 1, "label": "a.pdf"}, {"id": 2, "label": "b.pdf"}],
      "edges": [{"from": 1, "to": 2, "label": "contradicts"}]
    }
  },
  "reference_intelligence": {
    "recommendation_found": true,
    "recommended_paper_title": "Cognitive Load During Problem Solving",
    "justification": "Cited by both papers."
  },
  "multidisciplinary_connections": [
    {"field": "UX design", "connection": "Interface clutter raises load."}
  ]
}` + "\n```\nLet me know if you need more."

func TestExtractFullReply(t *testing.T) {
	r, err := Extract(fullReply)
	require.NoError(t, err)

	assert.Equal(t, []string{"working memory", "cognitive load"}, r.ConstructAnalysis.Shared)
	require.Len(t, r.ConstructAnalysis.UniqueByPaper, 2)
	assert.Equal(t, "b.pdf", r.ConstructAnalysis.UniqueByPaper[1].Filename)
	assert.Equal(t, []string{"dual coding", "split attention"}, r.ConstructAnalysis.UniqueByPaper[1].Unique)

	require.Len(t, r.PaperSummaries, 2)
	assert.Equal(t, types.PaperSummary{
		Filename: "a.pdf",
		Authors:  "Sweller",
		Summary:  "Load matters.",
		BiasAssessment: types.BiasAssessment{
			Level:         "Low",
			Justification: "Controlled trials.",
		},
	}, r.PaperSummaries[0])

	cc := r.CausalContradiction
	assert.Equal(t, "Extra media always helps learning.", cc.CentralThesis)
	assert.Equal(t, []types.Stance{
		{Filename: "a.pdf", Authors: "Sweller", Stance: "Rejects"},
		{Filename: "b.pdf", Authors: "Paivio", Stance: "Supports"},
	}, cc.Stances)
	require.Len(t, cc.Graph.Nodes, 2)
	require.Len(t, cc.Graph.Edges, 1)
	assert.JSONEq(t, `{"id": 1, "label": "a.pdf"}`, string(cc.Graph.Nodes[0]))
	assert.JSONEq(t, `{"from": 1, "to": 2, "label": "contradicts"}`, string(cc.Graph.Edges[0]))

	assert.Equal(t, types.ReferenceIntelligence{
		RecommendationFound:   true,
		RecommendedPaperTitle: "Cognitive Load During Problem Solving",
		Justification:         "Cited by both papers.",
	}, r.ReferenceIntelligence)

	assert.Equal(t, []types.Connection{
		{Field: "UX design", Connection: "Interface clutter raises load."},
	}, r.MultidisciplinaryConnections)
}

func TestExtractNoJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"empty", ""},
		{"prose only", "I could not analyse these papers."},
		{"closing brace only", "oops } nothing"},
		{"closing before opening", "} then {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.reply)
			var noJSON *NoJSONFoundError
			require.ErrorAs(t, err, &noJSON)
		})
	}
}

func TestExtractUnknownKeysDefaultEverything(t *testing.T) {
	r, err := Extract(`noise {"title": "X"} trailing noise`)
	require.NoError(t, err)

	assert.Empty(t, r.ConstructAnalysis.Shared)
	assert.Empty(t, r.ConstructAnalysis.UniqueByPaper)
	assert.Empty(t, r.PaperSummaries)
	assert.Empty(t, r.CausalContradiction.CentralThesis)
	assert.Empty(t, r.CausalContradiction.Stances)
	assert.Empty(t, r.CausalContradiction.Graph.Nodes)
	assert.Empty(t, r.CausalContradiction.Graph.Edges)
	assert.False(t, r.ReferenceIntelligence.RecommendationFound)
	assert.Empty(t, r.ReferenceIntelligence.RecommendedPaperTitle)
	assert.Empty(t, r.MultidisciplinaryConnections)

	// Defaults are empty slices, not nil, so JSON output shows [] not null.
	assert.NotNil(t, r.ConstructAnalysis.Shared)
	assert.NotNil(t, r.PaperSummaries)
	assert.NotNil(t, r.CausalContradiction.Graph.Nodes)
}

func TestExtractTwoObjectsGreedyIsMalformed(t *testing.T) {
	_, err := Extract(`{"a":1} {"b":2}`)

	var malformed *MalformedJSONError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Offset)
	assert.Contains(t, malformed.Excerpt, `{"a":1} {"b":2}`)

	var noJSON *NoJSONFoundError
	assert.False(t, errors.As(err, &noJSON))
}

func TestExtractTwoObjectsBalancedTakesFirst(t *testing.T) {
	e := NewExtractor(types.ExtractConfig{SpanPolicy: types.SpanBalanced}, nil)
	res, err := e.Analyze(`{"construct_analysis": {"shared": ["x"]}} {"b":2}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Report.ConstructAnalysis.Shared)
	assert.Equal(t, `{"construct_analysis": {"shared": ["x"]}}`, res.Span)
}

func TestExtractAlternateKeys(t *testing.T) {
	reply := `{
		"construct_analysis": {"unique_by_paper": [{"paper": "P1", "constructs": ["x"]}]},
		"paper_summaries": [{"paper": "P2", "summary": "s"}],
		"causal_contradiction": {"stances": [{"paper": "P3", "stance": "for"}]}
	}`
	r, err := Extract(reply)
	require.NoError(t, err)

	require.Len(t, r.ConstructAnalysis.UniqueByPaper, 1)
	assert.Equal(t, "P1", r.ConstructAnalysis.UniqueByPaper[0].Filename)
	assert.Equal(t, []string{"x"}, r.ConstructAnalysis.UniqueByPaper[0].Unique)
	assert.Equal(t, "P2", r.PaperSummaries[0].Filename)
	assert.Equal(t, "P3", r.CausalContradiction.Stances[0].Filename)
}

func TestExtractPrefersFirstPresentKey(t *testing.T) {
	r, err := Extract(`{"construct_analysis": {"unique_by_paper": [
		{"filename": "primary", "paper": "secondary", "unique": ["u"], "constructs": ["c"]},
		{"filename": null, "paper": "fallback"}
	]}}`)
	require.NoError(t, err)

	items := r.ConstructAnalysis.UniqueByPaper
	require.Len(t, items, 2)
	assert.Equal(t, "primary", items[0].Filename)
	assert.Equal(t, []string{"u"}, items[0].Unique)
	assert.Equal(t, "fallback", items[1].Filename)
	assert.Empty(t, items[1].Unique)
}

func TestExtractNestedDefaults(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		check func(t *testing.T, r types.Report)
	}{
		{
			name:  "summary without bias assessment",
			reply: `{"paper_summaries": [{"filename": "a.pdf"}]}`,
			check: func(t *testing.T, r types.Report) {
				require.Len(t, r.PaperSummaries, 1)
				assert.Equal(t, "a.pdf", r.PaperSummaries[0].Filename)
				assert.Equal(t, types.BiasAssessment{}, r.PaperSummaries[0].BiasAssessment)
			},
		},
		{
			name:  "graph without edges",
			reply: `{"causal_contradiction": {"graph": {"nodes": [{"id": 1}]}}}`,
			check: func(t *testing.T, r types.Report) {
				assert.Len(t, r.CausalContradiction.Graph.Nodes, 1)
				assert.Empty(t, r.CausalContradiction.Graph.Edges)
			},
		},
		{
			name:  "null sections",
			reply: `{"construct_analysis": null, "paper_summaries": null, "reference_intelligence": null}`,
			check: func(t *testing.T, r types.Report) {
				assert.Empty(t, r.ConstructAnalysis.Shared)
				assert.Empty(t, r.PaperSummaries)
				assert.False(t, r.ReferenceIntelligence.RecommendationFound)
			},
		},
		{
			name:  "list is not an array",
			reply: `{"construct_analysis": {"shared": "one construct"}}`,
			check: func(t *testing.T, r types.Report) {
				assert.Empty(t, r.ConstructAnalysis.Shared)
			},
		},
		{
			name:  "item is not an object",
			reply: `{"multidisciplinary_connections": ["biology", {"field": "law", "connection": "c"}]}`,
			check: func(t *testing.T, r types.Report) {
				assert.Equal(t, []types.Connection{{}, {Field: "law", Connection: "c"}}, r.MultidisciplinaryConnections)
			},
		},
		{
			name:  "camelCase section names",
			reply: `{"constructAnalysis": {"shared": ["s"], "uniqueByPaper": [{"filename": "f"}]}, "referenceIntelligence": {"recommendationFound": true}}`,
			check: func(t *testing.T, r types.Report) {
				assert.Equal(t, []string{"s"}, r.ConstructAnalysis.Shared)
				assert.Equal(t, "f", r.ConstructAnalysis.UniqueByPaper[0].Filename)
				assert.True(t, r.ReferenceIntelligence.RecommendationFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Extract(tt.reply)
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestExtractWrongTypedLeavesPassThrough(t *testing.T) {
	e := NewExtractor(types.ExtractConfig{}, nil)
	res, err := e.Analyze(`{
		"paper_summaries": [{"filename": 7, "authors": ["A", "B"], "summary": true}],
		"reference_intelligence": {"recommendation_found": "yes", "recommended_paper_title": "T"}
	}`)
	require.NoError(t, err)

	s := res.Report.PaperSummaries[0]
	assert.Equal(t, "7", s.Filename)
	assert.Equal(t, `["A","B"]`, s.Authors)
	assert.Equal(t, "true", s.Summary)
	assert.False(t, res.Report.ReferenceIntelligence.RecommendationFound)

	require.NotEmpty(t, res.Drift)
	joined := strings.Join(res.Drift, "\n")
	assert.Contains(t, joined, "paper_summaries")
	assert.Contains(t, joined, "recommendation_found")
}

func TestAnalyzeNoDriftOnWellFormedReply(t *testing.T) {
	e := NewExtractor(types.ExtractConfig{}, nil)
	res, err := e.Analyze(fullReply)
	require.NoError(t, err)
	assert.Empty(t, res.Drift)
}

func TestExtractBoundedExcerpt(t *testing.T) {
	reply := "{" + strings.Repeat("x", 2000) + "}"
	e := NewExtractor(types.ExtractConfig{ExcerptBytes: 100}, nil)
	_, err := e.Extract(reply)

	var malformed *MalformedJSONError
	require.ErrorAs(t, err, &malformed)
	assert.LessOrEqual(t, len(malformed.Excerpt), 103)
	assert.True(t, strings.HasSuffix(malformed.Excerpt, "..."))

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestExtractIsDeterministic(t *testing.T) {
	a, err := Extract(fullReply)
	require.NoError(t, err)
	b, err := Extract(fullReply)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
