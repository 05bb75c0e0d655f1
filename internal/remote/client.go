// Package remote is a sessions.Client for a running session server that
// speaks the OpenCode HTTP API:
//
//	GET /session                 list sessions
//	GET /session/{id}            one session (404 when unknown)
//	GET /session/{id}/message    [{"info": {...}, "parts": [...]}], earliest first
//
// Payloads are decoded loosely: only id, title, time.created and
// info.role are interpreted; each message's info is passed through raw.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/buger/jsonparser"
)

// DefaultTimeout bounds each request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 64 << 20

// Config holds remote client configuration.
type Config struct {
	BaseURL   string
	Directory string
	Timeout   time.Duration
}

// Client talks to the session server.
type Client struct {
	base      *url.URL
	directory string
	http      *http.Client
}

var _ sessions.Client = (*Client)(nil)

// New creates a Client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("remote: base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", base.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:      base,
		directory: cfg.Directory,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// ListSessions returns sessions in server order.
func (c *Client) ListSessions(ctx context.Context) ([]sessions.Session, error) {
	body, err := c.get(ctx, "session")
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("remote: decode sessions: %w", err)
	}

	out := make([]sessions.Session, 0, len(items))
	for _, item := range items {
		s := decodeSession(item)
		if s.ID == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// GetSession returns one session or sessions.ErrNotFound.
func (c *Client) GetSession(ctx context.Context, id string) (*sessions.Session, error) {
	body, err := c.get(ctx, "session", id)
	if err != nil {
		return nil, err
	}
	s := decodeSession(body)
	if s.ID == "" {
		return nil, fmt.Errorf("remote: session %s: %w", id, sessions.ErrNotFound)
	}
	return &s, nil
}

// GetMessages returns a session's messages, earliest first.
func (c *Client) GetMessages(ctx context.Context, id string) ([]sessions.Message, error) {
	body, err := c.get(ctx, "session", id, "message")
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("remote: decode messages for %s: %w", id, err)
	}

	out := make([]sessions.Message, 0, len(items))
	for _, item := range items {
		info, typ, _, err := jsonparser.Get(item, "info")
		m := sessions.Message{SessionID: id}
		if err == nil && typ != jsonparser.Null {
			m.Info = append(json.RawMessage(nil), info...)
			m.Role = sessions.Role(info)
		}
		out = append(out, m)
	}
	return out, nil
}

// get issues a GET for the escaped path segments and returns the body.
// 404 maps to sessions.ErrNotFound.
func (c *Client) get(ctx context.Context, segments ...string) ([]byte, error) {
	u := c.base.JoinPath(segments...)
	if c.directory != "" {
		q := u.Query()
		q.Set("directory", c.directory)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: GET %s: %w", u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("remote: GET %s: %w", u.Path, sessions.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote: GET %s: status %d: %s",
			u.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("remote: read %s: %w", u.Path, err)
	}
	return body, nil
}

// decodeSession reads id, title and time.created (milliseconds since the
// epoch) from a session payload. Missing fields stay zero.
func decodeSession(data []byte) sessions.Session {
	var s sessions.Session
	s.ID, _ = jsonparser.GetString(data, "id")
	s.Title, _ = jsonparser.GetString(data, "title")
	if ms, err := jsonparser.GetInt(data, "time", "created"); err == nil && ms > 0 {
		s.CreatedAt = time.UnixMilli(ms)
	}
	return s
}
