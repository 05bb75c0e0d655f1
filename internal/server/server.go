// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it picks the session backend from config,
// builds the searcher and reader on top of it, and injects them into the
// tools, prompts and resources. No business logic lives here.
package server

import (
	"fmt"
	"log/slog"

	"github.com/HendryAvila/recall/internal/config"
	"github.com/HendryAvila/recall/internal/prompts"
	"github.com/HendryAvila/recall/internal/recall"
	"github.com/HendryAvila/recall/internal/resources"
	"github.com/HendryAvila/recall/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with both tools, the prompts and the
// resources registered.
//
// The returned cleanup function releases the session backend (the SQLite
// archive holds an open database). It is always non-nil.
func New(cfg config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, cleanup, err := NewClient(cfg, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("creating %s session source: %w", cfg.Source, err)
	}

	searcher := recall.NewSearcher(client, logger)
	reader := recall.NewReader(client, logger)

	s := server.NewMCPServer(
		"recall",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Tools ---

	findTool := tools.NewFindSessionsTool(searcher)
	s.AddTool(findTool.Definition(), findTool.Handle)

	readTool := tools.NewReadSessionTool(reader)
	s.AddTool(readTool.Definition(), readTool.Handle)

	// --- Prompts ---

	sessionPrompt := prompts.NewSessionPrompt()
	s.AddPrompt(sessionPrompt.Definition(), sessionPrompt.Handle)

	resumePrompt := prompts.NewResumePrompt()
	s.AddPrompt(resumePrompt.Definition(), resumePrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(client, reader)
	s.AddResource(resourceHandler.SessionsResource(), resourceHandler.HandleSessions)
	s.AddResourceTemplate(resourceHandler.SessionTemplate(), resourceHandler.HandleSession)

	logger.Debug("recall server ready", "source", cfg.Source, "version", Version)
	return s, cleanup, nil
}

// noop is the cleanup for backends that hold no resources.
func noop() {}

// serverInstructions tells the AI when the recall tools are worth calling.
func serverInstructions() string {
	return `You have access to recall, which searches the user's previous coding sessions.

## WHEN TO USE recall

Use it when the user refers to earlier work you cannot see in this conversation:
- "like we did last week", "the fix from yesterday", "where did we leave X"
- a feature, bug or file name they expect you to already know about
- before redoing an investigation that may already have happened

## HOW

1. Call find_sessions with a short, distinctive keyword (a function name,
   error text, ticket id). Broad words like "bug" match everything.
2. Pick the session with the best title and match count.
3. Call read_session with its id. Pass focus=<keyword> to list only the
   messages that mention it; leave focus empty for the opening requests
   and the last answer.

## LIMITS

- Only the 50 most recent sessions are scanned per search.
- Excerpts are short summaries, not full transcripts.
- Results are plain text; quote session ids when you cite them.`
}
