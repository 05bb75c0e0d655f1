// Package sessions defines the session and message model shared by every
// backend, plus the content extraction and keyword matching used to scan
// message history.
//
// Message payloads have no fixed schema. Info is kept as raw JSON and every
// field is looked up with optional-presence semantics, so malformed records
// never break a scan.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by a Client when a referenced session does not exist.
var ErrNotFound = errors.New("session not found")

// Role values carried by messages. Other roles are passed through as-is.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is a stored conversation. CreatedAt is zero when the backend
// does not know it.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Message is one turn in a session. Info is the opaque payload as supplied
// by the backend; nil means absent.
type Message struct {
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Info      json.RawMessage `json:"info,omitempty"`
}

// Client is the read-only view of a session service.
//
// Implementations return sessions in whatever order the service supplies
// and messages earliest first. GetSession returns ErrNotFound (possibly
// wrapped) for unknown ids.
type Client interface {
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	GetMessages(ctx context.Context, id string) ([]Message, error)
}
