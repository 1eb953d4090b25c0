// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver exposes analysis as MCP tools so agents can request a
// report for a set of papers, or re-parse a saved model reply.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/internal/analysis"
	"github.com/pdiddy/paper-intel/internal/corpus"
	"github.com/pdiddy/paper-intel/internal/render"
	"github.com/pdiddy/paper-intel/pkg/types"
)

// Name is the implementation name announced to clients.
const Name = "paper-intel"

// Analyzer is the pipeline the tools drive.
type Analyzer interface {
	Run(ctx context.Context, uploads []types.Upload) (*analysis.Outcome, error)
	ParseReply(reply string) (*analysis.Outcome, error)
	MinDocuments() int
}

// Resolver turns source identifiers into uploads.
type Resolver interface {
	ResolveAll(ctx context.Context, ids []string) ([]types.Upload, error)
}

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server

	analyzer Analyzer
	resolver Resolver
	log      *zap.Logger
}

// New returns a Server with the analysis tools registered.
func New(a Analyzer, r Resolver, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{analyzer: a, resolver: r, log: log}
	s.MCPServer = sdkmcp.NewServer(&sdkmcp.Implementation{Name: Name, Version: version}, nil)
	s.registerTools()
	return s
}

// Run serves over stdin and stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name: "analyze_papers",
		Description: "Analyse two or more research papers together. Each source is a local PDF path, " +
			"a PDF URL, an arXiv ID or a DOI. Returns the structured report and a Markdown rendering.",
	}, s.handleAnalyzePapers)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "parse_reply",
		Description: "Extract the structured report from a saved model reply without calling the model.",
	}, s.handleParseReply)
}

type analyzePapersInput struct {
	Sources []string `json:"sources" jsonschema:"PDF paths, PDF URLs, arXiv IDs or DOIs, at least two"`
}

type parseReplyInput struct {
	Reply string `json:"reply" jsonschema:"raw model reply containing one JSON object"`
}

type document struct {
	Name      string `json:"name"`
	Chars     int    `json:"chars"`
	Truncated bool   `json:"truncated"`
}

// reportOutput carries the report as a generic object. The conflict graph
// elements are opaque JSON and have no fixed schema.
type reportOutput struct {
	RequestID string         `json:"request_id"`
	Documents []document     `json:"documents,omitempty"`
	Report    map[string]any `json:"report"`
	Drift     []string       `json:"drift,omitempty"`
	Markdown  string         `json:"markdown"`
}

func (s *Server) handleAnalyzePapers(ctx context.Context, _ *sdkmcp.CallToolRequest, in analyzePapersInput) (*sdkmcp.CallToolResult, reportOutput, error) {
	if minDocs := s.analyzer.MinDocuments(); len(in.Sources) < minDocs {
		return nil, reportOutput{}, toolError(corpus.TooFew(minDocs))
	}

	uploads, err := s.resolver.ResolveAll(ctx, in.Sources)
	if err != nil {
		s.log.Info("resolving sources failed", zap.Strings("sources", in.Sources), zap.Error(err))
		return nil, reportOutput{}, err
	}

	out, err := s.analyzer.Run(ctx, uploads)
	if err != nil {
		return nil, reportOutput{}, toolError(err)
	}
	res, err := toOutput(out)
	return nil, res, err
}

func (s *Server) handleParseReply(_ context.Context, _ *sdkmcp.CallToolRequest, in parseReplyInput) (*sdkmcp.CallToolResult, reportOutput, error) {
	out, err := s.analyzer.ParseReply(in.Reply)
	if err != nil {
		return nil, reportOutput{}, toolError(err)
	}
	res, err := toOutput(out)
	return nil, res, err
}

// toolError replaces err with the message a user would see, keeping the
// original in the chain.
func toolError(err error) error {
	msg := analysis.UserMessage(err)
	if msg == err.Error() {
		return err
	}
	return &userError{msg: msg, err: err}
}

type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func toOutput(out *analysis.Outcome) (reportOutput, error) {
	raw, err := json.Marshal(out.Report)
	if err != nil {
		return reportOutput{}, fmt.Errorf("encoding report: %w", err)
	}
	var report map[string]any
	if err := json.Unmarshal(raw, &report); err != nil {
		return reportOutput{}, fmt.Errorf("encoding report: %w", err)
	}

	res := reportOutput{
		RequestID: out.RequestID,
		Report:    report,
		Drift:     out.Drift,
		Markdown:  render.Markdown(out.Sections),
	}
	for _, d := range out.Documents {
		res.Documents = append(res.Documents, document{Name: d.Name, Chars: d.Chars, Truncated: d.Truncated})
	}
	return res, nil
}
