package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/recall/internal/recall"
	"github.com/HendryAvila/recall/internal/sessions"
)

// newTestServer serves a small OpenCode-style session API.
func newTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /session", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		_, _ = w.Write([]byte(`[
			{"id":"ses_a","title":"Auth","time":{"created":1767225600000,"updated":1767225700000}},
			{"id":"ses_b","title":"","time":{}},
			{"id":"ses_broken","title":"Broken"},
			{"title":"no id"}
		]`))
	})
	mux.HandleFunc("GET /session/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		switch r.PathValue("id") {
		case "ses_a":
			_, _ = w.Write([]byte(`{"id":"ses_a","title":"Auth","time":{"created":1767225600000}}`))
		case "ses_b":
			_, _ = w.Write([]byte(`{"id":"ses_b"}`))
		default:
			http.Error(w, `{"name":"NotFoundError"}`, http.StatusNotFound)
		}
	})
	mux.HandleFunc("GET /session/{id}/message", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		switch r.PathValue("id") {
		case "ses_a":
			_, _ = w.Write([]byte(`[
				{"info":{"id":"m1","role":"user","summary":{"title":"auth flow bug"}},"parts":[{"type":"text","text":"hi"}]},
				{"info":{"id":"m2","role":"assistant","summary":{"body":"patched the middleware"}},"parts":[]},
				{"parts":[]},
				{"info":null}
			]`))
		case "ses_b":
			_, _ = w.Write([]byte(`[]`))
		case "ses_broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestClient(t *testing.T, baseURL, directory string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, Directory: directory, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// ─── New ────────────────────────────────────────────────────────────────────

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid http", "http://127.0.0.1:4096", false},
		{"trailing slash", "https://example.com/api/", false},
		{"empty", "  ", true},
		{"bad scheme", "ftp://example.com", true},
		{"no scheme", "localhost:4096", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{BaseURL: tt.baseURL})
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) err = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}

// ─── Client ─────────────────────────────────────────────────────────────────

func TestListSessions(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL, "")

	list, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3 (entries without id are dropped)", len(list))
	}
	if list[0].ID != "ses_a" || list[0].Title != "Auth" {
		t.Errorf("first = %+v", list[0])
	}
	if want := time.UnixMilli(1767225600000); !list[0].CreatedAt.Equal(want) {
		t.Errorf("created = %v, want %v", list[0].CreatedAt, want)
	}
	if !list[1].CreatedAt.IsZero() {
		t.Errorf("missing time.created should be zero, got %v", list[1].CreatedAt)
	}
}

func TestGetSession(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL, "")

	s, err := c.GetSession(context.Background(), "ses_a")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s.Title != "Auth" {
		t.Errorf("title = %q", s.Title)
	}

	_, err = c.GetSession(context.Background(), "ses_missing")
	if !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetMessages(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL, "")

	msgs, err := c.GetMessages(context.Background(), "ses_a")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("len = %d, want 4", len(msgs))
	}
	if msgs[0].Role != sessions.RoleUser || msgs[1].Role != sessions.RoleAssistant {
		t.Errorf("roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if got := sessions.Extract(msgs[1].Info); got != "patched the middleware" {
		t.Errorf("extract = %q", got)
	}
	if msgs[2].Info != nil || msgs[3].Info != nil {
		t.Error("missing or null info should be absent")
	}
	if msgs[0].SessionID != "ses_a" {
		t.Errorf("session id = %q", msgs[0].SessionID)
	}
}

func TestGetMessages_ServerError(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL, "")

	_, err := c.GetMessages(context.Background(), "ses_broken")
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("err = %v, want status 500", err)
	}
}

func TestDirectoryParameter(t *testing.T) {
	srv, seen := newTestServer(t)
	c := newTestClient(t, srv.URL, "/home/me/project")

	if _, err := c.ListSessions(context.Background()); err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(*seen) != 1 || !strings.Contains((*seen)[0], "directory=%2Fhome%2Fme%2Fproject") {
		t.Errorf("request = %v, want directory query parameter", *seen)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, "")
	if _, err := c.ListSessions(context.Background()); err == nil {
		t.Error("expected an error from a closed server")
	}
}

// ─── End to end with recall ─────────────────────────────────────────────────

func TestSearchAndReadOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL, "")

	found := recall.NewSearcher(c, nil).Find(context.Background(), "AUTH FLOW", 10)
	for _, want := range []string{"`ses_a`", "- **Matches**: 1", "auth flow bug", "1 sessions could not be read"} {
		if !strings.Contains(found, want) {
			t.Errorf("find output missing %q:\n%s", want, found)
		}
	}

	digest := recall.NewReader(c, nil).Read(context.Background(), "ses_a", "")
	for _, want := range []string{"# Auth", "- **Messages**: 4", "1. auth flow bug", "## Last Response\n\npatched the middleware"} {
		if !strings.Contains(digest, want) {
			t.Errorf("read output missing %q:\n%s", want, digest)
		}
	}

	if got := recall.NewReader(c, nil).Read(context.Background(), "ses_zzz", ""); !strings.Contains(got, "not found") {
		t.Errorf("unknown id = %q, want not found", got)
	}
	if got := recall.NewReader(c, nil).Read(context.Background(), "ses_b", ""); got != `Session "ses_b" has 0 messages.` {
		t.Errorf("empty session = %q", got)
	}
}
