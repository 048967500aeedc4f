// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the capture pipeline to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/capture"
	"github.com/starford/ansuz/internal/daily"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/routing"
)

// Server wraps the MCP server with capture tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *capture.Service
	rules *routing.Snapshot
	notes *daily.Notes
	now   func() time.Time
}

// New creates a new MCP server with all tools registered.
func New(svc *capture.Service, rules *routing.Snapshot, notes *daily.Notes) *Server {
	s := &Server{svc: svc, rules: rules, notes: notes, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("capture_text",
		mcp.WithDescription("Capture a free-text snippet into the vault. The pipeline "+
			"detects trigger phrases, routes by the configured rules, formats the line, "+
			"and files it into today's daily note. Read the ansuz://capture-contract "+
			"resource for the semantics."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The text to capture")),
		mcp.WithString("type", mcp.Description("Declared content type: task, thought, link, transcript, screenshot")),
	), s.captureText)

	s.mcp.AddTool(mcp.NewTool("preview_route",
		mcp.WithDescription("Preview where a capture would be filed without writing anything. "+
			"Uses the deterministic rule engine only; the AI fallback is not consulted."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The text to route")),
		mcp.WithString("type", mcp.Description("Declared content type")),
	), s.previewRoute)

	s.mcp.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the currently loaded routing rules in evaluation order."),
	), s.listRules)

	s.mcp.AddTool(mcp.NewTool("read_daily_note",
		mcp.WithDescription("Read the daily note for a given date (today when omitted)."),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
	), s.readDailyNote)

	// Resource: capture semantics contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://capture-contract", "Capture Contract",
			mcp.WithResourceDescription("How captures are classified, routed, and formatted."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCaptureContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func itemFrom(req mcp.CallToolRequest, content string) *models.CaptureItem {
	item := &models.CaptureItem{
		Content:     content,
		ContentType: models.ContentUnknown,
		Source:      models.SourceURI,
	}
	if ct, err := req.RequireString("type"); err == nil && ct != "" {
		item.ContentType = models.ContentType(ct)
	}
	return item
}

func (s *Server) captureText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.ProcessCapture(ctx, itemFrom(req, content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) previewRoute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	decision := s.svc.RouteDeterministic(itemFrom(req, content))
	out, _ := json.MarshalIndent(decision, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := s.rules.Load()
	if rules == nil {
		rules = []routing.Rule{}
	}
	out, _ := json.MarshalIndent(rules, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDailyNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day := s.now()
	if raw, err := req.RequireString("date"); err == nil && raw != "" {
		parsed, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q: use YYYY-MM-DD", raw)), nil
		}
		day = parsed
	}

	doc, err := s.notes.Read(day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc), nil
}

func (s *Server) readCaptureContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://capture-contract",
			MIMEType: "text/markdown",
			Text:     CaptureContract,
		},
	}, nil
}
