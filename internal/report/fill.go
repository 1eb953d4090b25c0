// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// object is one decoded JSON object whose members are still raw, so that
// opaque values (graph nodes and edges) and wrong-typed leaves keep the
// bytes the model wrote.
type object map[string]json.RawMessage

// asObject decodes raw as an object. Anything else, including null and
// absence, yields an empty object, which in turn yields all defaults.
func asObject(raw json.RawMessage) object {
	if len(raw) == 0 {
		return object{}
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return object{}
	}
	return o
}

// field returns the first of keys that is present and not null.
func (o object) field(keys ...string) json.RawMessage {
	for _, k := range keys {
		v, ok := o[k]
		if !ok || isNull(v) {
			continue
		}
		return v
	}
	return nil
}

func (o object) text(keys ...string) string {
	return asText(o.field(keys...))
}

func (o object) strings(keys ...string) []string {
	return asStrings(o.field(keys...))
}

func (o object) array(keys ...string) []json.RawMessage {
	return asArray(o.field(keys...))
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// asArray decodes raw as an array; anything else is an empty list.
func asArray(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return []json.RawMessage{}
	}
	var a []json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil || a == nil {
		return []json.RawMessage{}
	}
	return a
}

// asText returns a JSON string's value. Other JSON types are not coerced:
// they are shown as their compact JSON text.
func asText(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func asStrings(raw json.RawMessage) []string {
	items := asArray(raw)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, asText(it))
	}
	return out
}

// asBool is true only for the JSON literal true.
func asBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// Key lists: the snake_case wire name first, then tolerated spellings.
var (
	keyConstructAnalysis = []string{"construct_analysis", "constructAnalysis"}
	keyShared            = []string{"shared"}
	keyUniqueByPaper     = []string{"unique_by_paper", "uniqueByPaper"}
	keyIdentifier        = []string{"filename", "paper"}
	keyUniqueList        = []string{"unique", "constructs"}
	keyPaperSummaries    = []string{"paper_summaries", "paperSummaries"}
	keyAuthors           = []string{"authors"}
	keySummary           = []string{"summary"}
	keyBiasAssessment    = []string{"bias_assessment", "biasAssessment"}
	keyLevel             = []string{"level"}
	keyJustification     = []string{"justification"}
	keyCausal            = []string{"causal_contradiction", "causalContradiction"}
	keyCentralThesis     = []string{"central_thesis", "centralThesis"}
	keyStances           = []string{"stances"}
	keyStance            = []string{"stance"}
	keyGraph             = []string{"graph"}
	keyNodes             = []string{"nodes"}
	keyEdges             = []string{"edges"}
	keyReference         = []string{"reference_intelligence", "referenceIntelligence"}
	keyRecFound          = []string{"recommendation_found", "recommendationFound"}
	keyRecTitle          = []string{"recommended_paper_title", "recommendedPaperTitle"}
	keyConnections       = []string{"multidisciplinary_connections", "multidisciplinaryConnections"}
	keyField             = []string{"field"}
	keyConnection        = []string{"connection"}
)

// fillReport maps a decoded top-level object onto a Report, substituting
// the default for every missing, null or wrong-shaped member at any depth.
// Unknown keys are ignored.
func fillReport(root object) types.Report {
	return types.Report{
		ConstructAnalysis:            fillConstructs(asObject(root.field(keyConstructAnalysis...))),
		PaperSummaries:               fillSummaries(root.array(keyPaperSummaries...)),
		CausalContradiction:          fillCausal(asObject(root.field(keyCausal...))),
		ReferenceIntelligence:        fillReference(asObject(root.field(keyReference...))),
		MultidisciplinaryConnections: fillConnections(root.array(keyConnections...)),
	}
}

func fillConstructs(o object) types.ConstructAnalysis {
	items := o.array(keyUniqueByPaper...)
	unique := make([]types.PaperConstructs, 0, len(items))
	for _, raw := range items {
		it := asObject(raw)
		unique = append(unique, types.PaperConstructs{
			Filename: it.text(keyIdentifier...),
			Unique:   it.strings(keyUniqueList...),
		})
	}
	return types.ConstructAnalysis{
		Shared:        o.strings(keyShared...),
		UniqueByPaper: unique,
	}
}

func fillSummaries(items []json.RawMessage) []types.PaperSummary {
	out := make([]types.PaperSummary, 0, len(items))
	for _, raw := range items {
		it := asObject(raw)
		bias := asObject(it.field(keyBiasAssessment...))
		out = append(out, types.PaperSummary{
			Filename: it.text(keyIdentifier...),
			Authors:  it.text(keyAuthors...),
			Summary:  it.text(keySummary...),
			BiasAssessment: types.BiasAssessment{
				Level:         bias.text(keyLevel...),
				Justification: bias.text(keyJustification...),
			},
		})
	}
	return out
}

func fillCausal(o object) types.CausalContradiction {
	items := o.array(keyStances...)
	stances := make([]types.Stance, 0, len(items))
	for _, raw := range items {
		it := asObject(raw)
		stances = append(stances, types.Stance{
			Filename: it.text(keyIdentifier...),
			Authors:  it.text(keyAuthors...),
			Stance:   it.text(keyStance...),
		})
	}
	graph := asObject(o.field(keyGraph...))
	return types.CausalContradiction{
		CentralThesis: o.text(keyCentralThesis...),
		Stances:       stances,
		Graph: types.ConflictGraph{
			Nodes: graph.array(keyNodes...),
			Edges: graph.array(keyEdges...),
		},
	}
}

func fillReference(o object) types.ReferenceIntelligence {
	return types.ReferenceIntelligence{
		RecommendationFound:   asBool(o.field(keyRecFound...)),
		RecommendedPaperTitle: o.text(keyRecTitle...),
		Justification:         o.text(keyJustification...),
	}
}

func fillConnections(items []json.RawMessage) []types.Connection {
	out := make([]types.Connection, 0, len(items))
	for _, raw := range items {
		it := asObject(raw)
		out = append(out, types.Connection{
			Field:      it.text(keyField...),
			Connection: it.text(keyConnection...),
		})
	}
	return out
}
