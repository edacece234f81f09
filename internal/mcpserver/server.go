// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the document pipeline to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/graphblog/internal/apperr"
	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/models"
)

const formatURI = "graphblog://document-format"

// Server wraps the MCP server with graphblog tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *docservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"graphblog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document's decoded metadata and Markdown body."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug: path without extension (e.g. notes/hello_world)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("render_document",
		mcp.WithDescription("Render a document body to sanitized HTML."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug")),
	), s.renderDocument)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Build the site graph: nodes, links and the files that were skipped."),
	), s.getGraph)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List every document slug in the corpus."),
		mcp.WithString("prefix", mcp.Description("Optional slug prefix to filter by (e.g. notes/)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find the ids of all documents that link to the given id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the corpus document format: metadata keys and link rules. "+
			"Call this before writing documents."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format",
			mcp.WithResourceDescription("TOML metadata block and link rules every document follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func toolError(slug string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Source(ctx, slug)
	if err != nil {
		return toolError(slug, err), nil
	}
	return jsonResult(doc)
}

func (s *Server) renderDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Document(ctx, slug)
	if err != nil {
		return toolError(slug, err), nil
	}
	return mcp.NewToolResultText(string(doc.HTML)), nil
}

type skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (s *Server) getGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Graph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := struct {
		*models.Graph
		Skipped    []skipped `json:"skipped"`
		Duplicates []string  `json:"duplicates"`
	}{Graph: res.Graph, Skipped: []skipped{}, Duplicates: []string{}}
	for _, sk := range res.Skipped {
		out.Skipped = append(out.Skipped, skipped{Path: sk.Path, Reason: sk.Reason()})
	}
	for _, d := range res.Duplicates {
		out.Duplicates = append(out.Duplicates, d.Path)
	}
	return jsonResult(out)
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := req.GetString("prefix", "")
	slugs, err := s.svc.Index(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var matched []string
	for _, slug := range slugs {
		if strings.HasPrefix(slug, prefix) {
			matched = append(matched, slug)
		}
	}
	if len(matched) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	return mcp.NewToolResultText(strings.Join(matched, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Graph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seen := make(map[string]bool)
	var sources []string
	for _, l := range res.Graph.Links {
		if l.Target == id && !seen[l.Source] {
			seen[l.Source] = true
			sources = append(sources, l.Source)
		}
	}
	if len(sources) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(sources, "\n")), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
