// recall: session recall MCP server
//
// Lets an AI coding agent search and read the user's earlier sessions,
// from OpenCode's local storage, a running session server, or a local
// SQLite archive.
//
// Usage:
//
//	recall serve             # Start MCP server (stdio transport)
//	recall find <query>      # Search sessions from the terminal
//	recall read <session-id> # Print one session digest
//	recall update            # Update to the latest version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
