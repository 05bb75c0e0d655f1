// Package tools implements the MCP tool handlers that expose session
// search and reading to an agent.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema, and a Handle() that
// validates arguments and returns the text produced by internal/recall
// verbatim. Handlers never return Go errors: invalid arguments become
// tool error results.
package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
)

// requiredString returns the trimmed string argument, or a tool error
// result when it is missing, not a string, or blank.
func requiredString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	s, ok := raw.(string)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' must be a string", key))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' must not be empty", key))
	}
	return s, nil
}

// optionalString returns the string argument or "" when missing or not a string.
func optionalString(req mcp.CallToolRequest, key string) string {
	s, _ := req.GetArguments()[key].(string)
	return strings.TrimSpace(s)
}

// positiveInt extracts a positive integer argument. JSON numbers arrive as
// float64; numeric strings are accepted too. A missing argument yields
// defaultVal. Fractional numbers are rejected rather than truncated.
func positiveInt(req mcp.CallToolRequest, key string, defaultVal int) (int, *mcp.CallToolResult) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return defaultVal, nil
	}
	if _, isBool := raw.(bool); isBool {
		return 0, mcp.NewToolResultError(fmt.Sprintf("'%s' must be a positive integer", key))
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return defaultVal, nil
	}
	if f, isFloat := raw.(float64); isFloat && f != math.Trunc(f) {
		return 0, mcp.NewToolResultError(fmt.Sprintf("'%s' must be a positive integer", key))
	}

	n, err := cast.ToIntE(raw)
	if err != nil || n <= 0 {
		return 0, mcp.NewToolResultError(fmt.Sprintf("'%s' must be a positive integer", key))
	}
	return n, nil
}
