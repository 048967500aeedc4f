package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/capture"
	"github.com/starford/ansuz/internal/daily"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/routing"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/trigger"
)

var mcpNow = time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)

func testServer(t *testing.T) *Server {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	notes := daily.NewNotes(store, daily.Config{
		Dir:             "daily",
		Layout:          "2006-01-02",
		ThoughtsHeading: "## Thoughts",
	})

	isURL := true
	snap := routing.NewSnapshot([]routing.Rule{{
		ID:      "links",
		Enabled: true,
		Match:   &routing.MatchSpec{IsURL: &isURL},
		Action: &routing.RuleAction{
			Destination: models.DestDailyEnd,
			Format:      models.FormatThought,
		},
	}})

	svc := capture.NewService(capture.Deps{
		Notes: notes,
		Rules: snap,
		Triggers: trigger.Config{
			CheckboxPrefix: "- [ ]",
			Followup:       trigger.PhraseSet{Enabled: true, Phrases: []string{"follow up"}},
		},
		Routing: routing.Options{CheckboxPrefix: "- [ ]"},
		Defaults: capture.Defaults{
			Destination:   models.DestDailyThoughts,
			Format:        models.FormatThought,
			DueDateOffset: 1,
		},
		Format: capture.Formatting{
			TaskPrefix:        "- [ ]",
			DueDateMarker:     "📅",
			TimeFormat:        "15:04",
			ThoughtsHeading:   "## Thoughts",
			ResearchHeading:   "## Research",
			ReferencesHeading: "## References",
		},
		Now:            func() time.Time { return mcpNow },
		HasCredentials: func(string) bool { return false },
	})
	t.Cleanup(svc.Wait)

	srv := New(svc, snap, notes)
	srv.now = func() time.Time { return mcpNow }
	return srv
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "capture_text":
		result, err = srv.captureText(ctx, req)
	case "preview_route":
		result, err = srv.previewRoute(ctx, req)
	case "list_rules":
		result, err = srv.listRules(ctx, req)
	case "read_daily_note":
		result, err = srv.readDailyNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCaptureTextAndReadDailyNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "capture_text", map[string]any{
		"content": "follow up: call Dana tomorrow",
	})
	text := resultText(r)
	if !strings.Contains(text, `"trigger": "followup"`) {
		t.Errorf("capture result = %q", text)
	}

	r = callTool(t, srv, "read_daily_note", map[string]any{})
	note := resultText(r)
	if !strings.Contains(note, "- [ ] call Dana tomorrow 📅 2026-08-26") {
		t.Errorf("daily note = %q", note)
	}
}

func TestCaptureText_Empty(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "capture_text", map[string]any{"content": "   "})
	if !r.IsError {
		t.Error("empty capture must return a tool error")
	}
}

func TestPreviewRoute_DoesNotWrite(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "preview_route", map[string]any{"content": "https://example.com"})
	text := resultText(r)
	if !strings.Contains(text, `"rule_id": "links"`) {
		t.Errorf("preview = %q", text)
	}

	r = callTool(t, srv, "read_daily_note", map[string]any{"date": "2026-08-25"})
	if !r.IsError {
		t.Error("preview must not create the daily note")
	}
}

func TestListRules(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_rules", map[string]any{})
	if !strings.Contains(resultText(r), `"id": "links"`) {
		t.Errorf("rules = %q", resultText(r))
	}
}

func TestReadDailyNote_BadDate(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_daily_note", map[string]any{"date": "25-08-2026"})
	if !r.IsError {
		t.Error("bad date must return a tool error")
	}
}
