package tools

import (
	"context"

	"github.com/HendryAvila/recall/internal/recall"
	"github.com/mark3labs/mcp-go/mcp"
)

// FindSessionsTool handles the find_sessions MCP tool.
type FindSessionsTool struct {
	searcher *recall.Searcher
}

// NewFindSessionsTool creates a FindSessionsTool.
func NewFindSessionsTool(searcher *recall.Searcher) *FindSessionsTool {
	return &FindSessionsTool{searcher: searcher}
}

// Definition returns the MCP tool definition for find_sessions.
func (t *FindSessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("find_sessions",
		mcp.WithDescription(
			"Search previous conversation sessions for a keyword. Scans the message history of "+
				"recent sessions (up to 50) and lists the ones that mention it, with a match count "+
				"and a short excerpt. Use read_session on a result to see its content.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keyword or phrase to look for (case-insensitive substring match)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions to return (default: 10)"),
		),
	)
}

// Handle processes the find_sessions tool call.
func (t *FindSessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, errResult := requiredString(req, "query")
	if errResult != nil {
		return errResult, nil
	}
	limit, errResult := positiveInt(req, "limit", recall.DefaultLimit)
	if errResult != nil {
		return errResult, nil
	}

	return mcp.NewToolResultText(t.searcher.Find(ctx, query, limit)), nil
}
