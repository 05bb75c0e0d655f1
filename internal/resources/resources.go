// Package resources implements MCP resource handlers for session recall.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (recall://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/recall/internal/recall"
	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// SessionsURI lists every session the source knows about.
	SessionsURI = "recall://sessions"

	// sessionPrefix prefixes the per-session digest URIs.
	sessionPrefix = SessionsURI + "/"
)

// Handler manages recall resource endpoints.
type Handler struct {
	client sessions.Client
	reader *recall.Reader
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(client sessions.Client, reader *recall.Reader) *Handler {
	return &Handler{client: client, reader: reader}
}

// SessionsResource returns the MCP resource definition for the session list.
func (h *Handler) SessionsResource() mcp.Resource {
	return mcp.NewResource(
		SessionsURI,
		"Recorded Sessions",
		mcp.WithResourceDescription("All sessions in the configured source: id, title and creation time"),
		mcp.WithMIMEType("application/json"),
	)
}

// sessionEntry is one element of the sessions resource.
type sessionEntry struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// HandleSessions returns the session list as JSON.
func (h *Handler) HandleSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.client.ListSessions(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	entries := make([]sessionEntry, 0, len(list))
	for _, s := range list {
		e := sessionEntry{ID: s.ID, Title: s.Title}
		if !s.CreatedAt.IsZero() {
			created := s.CreatedAt.UTC()
			e.CreatedAt = &created
		}
		entries = append(entries, e)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling sessions: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// SessionTemplate returns the resource template for one session digest.
func (h *Handler) SessionTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		sessionPrefix+"{id}",
		"Session Digest",
		mcp.WithTemplateDescription("Markdown digest of one session: header, first user messages, last response"),
		mcp.WithTemplateMIMEType("text/markdown"),
	)
}

// HandleSession renders the digest for the id in the request URI.
func (h *Handler) HandleSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, sessionPrefix)
	if id == "" || id == req.Params.URI {
		return errorResource(req.Params.URI, "session id missing from URI"), nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     h.reader.Read(ctx, id, ""),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
