// Package prompts implements MCP prompt handlers for session recall.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// SessionPrompt handles the recall-session MCP prompt.
// It asks the AI to locate past sessions about a topic and summarize them.
type SessionPrompt struct{}

// NewSessionPrompt creates a SessionPrompt.
func NewSessionPrompt() *SessionPrompt {
	return &SessionPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SessionPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("recall-session",
		mcp.WithPromptDescription(
			"Recall what was done in earlier sessions about a topic. "+
				"Finds matching sessions and reads the most relevant one.",
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Keyword or phrase to look for, e.g. 'auth middleware'"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the recall-session prompt request.
func (p *SessionPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := strings.TrimSpace(req.Params.Arguments["topic"])
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Recall sessions about %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I worked on '%s' in an earlier session. Please:\n"+
						"1. Run `find_sessions` with query='%s'\n"+
						"2. Pick the session with the most matches (ask me if two look equally likely)\n"+
						"3. Run `read_session` on it with focus='%s'\n"+
						"4. Summarize what was decided and what is still open, quoting session ids",
					topic, topic, topic,
				)),
			},
		},
	}, nil
}
