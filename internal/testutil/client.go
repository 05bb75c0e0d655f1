// Package testutil provides an in-memory sessions.Client for tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/HendryAvila/recall/internal/sessions"
)

// FakeClient is an in-memory sessions.Client. Sessions are listed in the
// order they were added.
type FakeClient struct {
	mu sync.Mutex

	order    []string
	sessions map[string]sessions.Session
	messages map[string][]sessions.Message

	// ListErr, when set, is returned by ListSessions.
	ListErr error
	// MessageErrs maps session ids to errors returned by GetMessages.
	MessageErrs map[string]error
	// SessionErr, when set, is returned by GetSession for every id.
	SessionErr error

	// MessageCalls counts GetMessages calls per session id.
	MessageCalls map[string]int
}

// NewFakeClient creates an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		sessions:     make(map[string]sessions.Session),
		messages:     make(map[string][]sessions.Message),
		MessageErrs:  make(map[string]error),
		MessageCalls: make(map[string]int),
	}
}

// Add registers a session with its messages.
func (c *FakeClient) Add(s sessions.Session, msgs ...sessions.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[s.ID]; !ok {
		c.order = append(c.order, s.ID)
	}
	c.sessions[s.ID] = s
	for i := range msgs {
		msgs[i].SessionID = s.ID
	}
	c.messages[s.ID] = msgs
}

// TotalMessageCalls sums GetMessages calls across sessions.
func (c *FakeClient) TotalMessageCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.MessageCalls {
		n += v
	}
	return n
}

// ListSessions implements sessions.Client.
func (c *FakeClient) ListSessions(ctx context.Context) ([]sessions.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	out := make([]sessions.Session, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sessions[id])
	}
	return out, nil
}

// GetSession implements sessions.Client.
func (c *FakeClient) GetSession(ctx context.Context, id string) (*sessions.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SessionErr != nil {
		return nil, c.SessionErr
	}
	s, ok := c.sessions[id]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", id, sessions.ErrNotFound)
	}
	return &s, nil
}

// GetMessages implements sessions.Client.
func (c *FakeClient) GetMessages(ctx context.Context, id string) ([]sessions.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MessageCalls[id]++
	if err := c.MessageErrs[id]; err != nil {
		return nil, err
	}
	return c.messages[id], nil
}

// Msg builds a message whose info is the JSON encoding of v, with HTML
// characters left unescaped.
func Msg(role string, v any) sessions.Message {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return sessions.Message{Role: role, Info: bytes.TrimSpace(buf.Bytes())}
}

// Summary builds a message carrying a summary title and body.
func Summary(role, title, body string) sessions.Message {
	return Msg(role, map[string]any{
		"role":    role,
		"summary": map[string]string{"title": title, "body": body},
	})
}
