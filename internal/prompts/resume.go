package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResumePrompt handles the recall-resume MCP prompt.
// It instructs the AI to reload one known session and continue its work.
type ResumePrompt struct{}

// NewResumePrompt creates a ResumePrompt.
func NewResumePrompt() *ResumePrompt {
	return &ResumePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ResumePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("recall-resume",
		mcp.WithPromptDescription(
			"Pick up where a previous session left off. "+
				"Reads the session digest and proposes next steps.",
		),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("ID of the session to resume"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the recall-resume prompt request.
func (p *ResumePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := strings.TrimSpace(req.Params.Arguments["session_id"])
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Resume session %s", id),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Run `read_session` with session_id='%s'.\n\n"+
						"Then:\n"+
						"1. Tell me in two or three sentences what that session was about\n"+
						"2. List anything the last response left unfinished\n"+
						"3. Suggest the next concrete step and wait for my go-ahead",
					id,
				)),
			},
		},
	}, nil
}
