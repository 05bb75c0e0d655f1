package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/HendryAvila/recall/internal/recall"
	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/HendryAvila/recall/internal/testutil"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func mustNotError(t *testing.T, r *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if r == nil {
		t.Fatal("nil result")
	}
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
}

func mustToolError(t *testing.T, r *mcp.CallToolResult, err error, contains string) {
	t.Helper()
	if err != nil {
		t.Fatalf("handlers must not return Go errors, got: %v", err)
	}
	if r == nil || !r.IsError {
		t.Fatalf("expected a tool error result, got: %+v", r)
	}
	if !strings.Contains(resultText(r), contains) {
		t.Errorf("error text = %q, want it to contain %q", resultText(r), contains)
	}
}

func hasRequired(def mcp.Tool, name string) bool {
	for _, r := range def.InputSchema.Required {
		if r == name {
			return true
		}
	}
	return false
}

func seededClient() *testutil.FakeClient {
	c := testutil.NewFakeClient()
	c.Add(sessions.Session{ID: "A", Title: "Auth"},
		testutil.Msg(sessions.RoleUser, map[string]string{"text": "auth flow bug"}))
	c.Add(sessions.Session{ID: "B", Title: "Docs"},
		testutil.Msg(sessions.RoleUser, map[string]string{"text": "readme"}))
	c.Add(sessions.Session{ID: "C", Title: "CI"},
		testutil.Msg(sessions.RoleUser, map[string]string{"text": "pipeline"}))
	return c
}

func newFindTool(c sessions.Client) *FindSessionsTool {
	return NewFindSessionsTool(recall.NewSearcher(c, nil))
}

func newReadTool(c sessions.Client) *ReadSessionTool {
	return NewReadSessionTool(recall.NewReader(c, nil))
}

// ─── find_sessions ──────────────────────────────────────────────────────────

func TestFindSessions_Definition(t *testing.T) {
	def := newFindTool(testutil.NewFakeClient()).Definition()

	if def.Name != "find_sessions" {
		t.Errorf("tool name = %q, want find_sessions", def.Name)
	}
	for _, p := range []string{"query", "limit"} {
		if _, ok := def.InputSchema.Properties[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	if !hasRequired(def, "query") {
		t.Error("'query' should be required")
	}
	if hasRequired(def, "limit") {
		t.Error("'limit' should be optional")
	}
}

func TestFindSessions_SingleMatch(t *testing.T) {
	tool := newFindTool(seededClient())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"query": "auth",
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "`A`") || strings.Contains(text, "`B`") || strings.Contains(text, "`C`") {
		t.Errorf("expected only session A:\n%s", text)
	}
	if !strings.Contains(text, "- **Matches**: 1") {
		t.Errorf("expected a match count of 1:\n%s", text)
	}
}

func TestFindSessions_NoMatch(t *testing.T) {
	tool := newFindTool(seededClient())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"query": "zzz-nomatch",
	}))
	mustNotError(t, result, err)

	if got := resultText(result); got != `No matches for "zzz-nomatch" in 3 sessions scanned.` {
		t.Errorf("text = %q", got)
	}
}

func TestFindSessions_Limit(t *testing.T) {
	c := testutil.NewFakeClient()
	for i := 0; i < 8; i++ {
		c.Add(sessions.Session{ID: fmt.Sprintf("s%d", i)},
			testutil.Msg(sessions.RoleUser, map[string]string{"text": "needle"}))
	}
	tool := newFindTool(c)

	for _, limit := range []interface{}{float64(2), "2", 2} {
		result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
			"query": "needle",
			"limit": limit,
		}))
		mustNotError(t, result, err)

		if n := strings.Count(resultText(result), "- **ID**:"); n != 2 {
			t.Errorf("limit %#v: got %d results, want 2", limit, n)
		}
	}
}

func TestFindSessions_InvalidArguments(t *testing.T) {
	tool := newFindTool(seededClient())

	tests := []struct {
		name     string
		args     map[string]interface{}
		contains string
	}{
		{"missing query", map[string]interface{}{}, "'query' is required"},
		{"blank query", map[string]interface{}{"query": "   "}, "'query' must not be empty"},
		{"non-string query", map[string]interface{}{"query": 42.0}, "'query' must be a string"},
		{"zero limit", map[string]interface{}{"query": "x", "limit": 0.0}, "'limit' must be a positive integer"},
		{"negative limit", map[string]interface{}{"query": "x", "limit": -3.0}, "'limit' must be a positive integer"},
		{"text limit", map[string]interface{}{"query": "x", "limit": "ten"}, "'limit' must be a positive integer"},
		{"bool limit", map[string]interface{}{"query": "x", "limit": true}, "'limit' must be a positive integer"},
		{"fractional limit", map[string]interface{}{"query": "x", "limit": 2.5}, "'limit' must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), makeReq(tt.args))
			mustToolError(t, result, err, tt.contains)
		})
	}
}

// ─── read_session ───────────────────────────────────────────────────────────

func TestReadSession_Definition(t *testing.T) {
	def := newReadTool(testutil.NewFakeClient()).Definition()

	if def.Name != "read_session" {
		t.Errorf("tool name = %q, want read_session", def.Name)
	}
	for _, p := range []string{"session_id", "focus"} {
		if _, ok := def.InputSchema.Properties[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	if !hasRequired(def, "session_id") {
		t.Error("'session_id' should be required")
	}
	if hasRequired(def, "focus") {
		t.Error("'focus' should be optional")
	}
}

func TestReadSession_NotFound(t *testing.T) {
	tool := newReadTool(seededClient())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "nope",
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if text == "" || !strings.Contains(text, "nope") {
		t.Errorf("expected a not-found text naming the id, got %q", text)
	}
}

func TestReadSession_Focus(t *testing.T) {
	c := testutil.NewFakeClient()
	c.Add(sessions.Session{ID: "s1", Title: "Gateway"},
		testutil.Summary(sessions.RoleUser, "add billing logs", ""),
		testutil.Summary(sessions.RoleAssistant, "done", ""),
		testutil.Summary(sessions.RoleAssistant, "billing schema updated", ""),
	)
	tool := newReadTool(c)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "s1",
		"focus":      "billing",
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, `## Messages matching "billing" (2)`) {
		t.Errorf("focused section missing:\n%s", text)
	}
}

func TestReadSession_Default(t *testing.T) {
	c := testutil.NewFakeClient()
	c.Add(sessions.Session{ID: "s1"},
		testutil.Summary(sessions.RoleUser, "question", ""),
		testutil.Summary(sessions.RoleAssistant, "answer", ""),
	)
	tool := newReadTool(c)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "s1",
		"focus":      42.0, // ignored: not a string
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	for _, want := range []string{"## Recent User Messages", "1. question", "## Last Response", "answer"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q:\n%s", want, text)
		}
	}
}

func TestReadSession_MissingID(t *testing.T) {
	tool := newReadTool(seededClient())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"focus": "x",
	}))
	mustToolError(t, result, err, "'session_id' is required")
}
