// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

const reportSchemaURL = "report.schema.json"

// reportSchema describes the reply shape the prompt asks for. It is used
// only to describe drift; extraction never fails on it.
var reportSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(reportSchemaURL, bytes.NewReader(reportSchemaJSON)); err != nil {
		panic(fmt.Sprintf("adding report schema: %v", err))
	}
	schema, err := compiler.Compile(reportSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compiling report schema: %v", err))
	}
	return schema
}

// drift validates a decoded reply against the report schema and returns
// one line per leaf violation, e.g. "/paper_summaries/0/summary: expected
// string or null, but got number".
func drift(v any) []string {
	err := reportSchema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	collectLeaves(ve, &out)
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}
