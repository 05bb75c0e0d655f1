package tools

import (
	"context"

	"github.com/HendryAvila/recall/internal/recall"
	"github.com/mark3labs/mcp-go/mcp"
)

// ReadSessionTool handles the read_session MCP tool.
type ReadSessionTool struct {
	reader *recall.Reader
}

// NewReadSessionTool creates a ReadSessionTool.
func NewReadSessionTool(reader *recall.Reader) *ReadSessionTool {
	return &ReadSessionTool{reader: reader}
}

// Definition returns the MCP tool definition for read_session.
func (t *ReadSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("read_session",
		mcp.WithDescription(
			"Read a digest of one previous session: title, creation time and message count, "+
				"then either the messages mentioning 'focus' or, without focus, the first user "+
				"messages and the last assistant response.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID (from find_sessions results)"),
		),
		mcp.WithString("focus",
			mcp.Description("Optional keyword: only show messages that mention it"),
		),
	)
}

// Handle processes the read_session tool call.
func (t *ReadSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requiredString(req, "session_id")
	if errResult != nil {
		return errResult, nil
	}
	focus := optionalString(req, "focus")

	return mcp.NewToolResultText(t.reader.Read(ctx, id, focus)), nil
}
