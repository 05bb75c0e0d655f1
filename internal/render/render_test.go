package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
)

func TestNewPrinter_NonTerminalIsPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, nil)
	if !p.plain {
		t.Error("a buffer is not a terminal, printer should be plain")
	}
}

func TestMarkdown_PlainPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	md := "## Sessions matching \"auth\"\n\n- **ID**: `ses_1`"
	if err := NewPrinter(&buf, true, nil).Markdown(md); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if buf.String() != md+"\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestMarkdown_Glamour(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, width: 80}
	if err := p.Markdown("# Title\n\nsome **bold** text"); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Errorf("rendered output lost content: %q", out)
	}
	if strings.Contains(out, "**bold**") {
		t.Errorf("markdown was not rendered: %q", out)
	}
}

func TestSessions(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	p := NewPrinter(&buf, true, nil)

	err := p.Sessions([]sessions.Session{
		{ID: "ses_1", Title: "Auth work", CreatedAt: now.Add(-3 * 24 * time.Hour)},
		{ID: "ses_2", Title: strings.Repeat("x", 80)},
	}, now)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "2 sessions" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Auth work") || !strings.Contains(lines[1], "ses_1") ||
		!strings.HasSuffix(lines[1], "3 days ago") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], sessions.Ellipsis+"  ses_2  unknown") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestSessions_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, true, nil).Sessions(nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Errorf("output = %q", buf.String())
	}
}
