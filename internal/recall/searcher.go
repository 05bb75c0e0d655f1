// Package recall implements the session search and read operations on top
// of a sessions.Client.
//
// Both operations answer with markdown text meant for a conversational
// caller: not-found, inaccessible and empty outcomes are rendered as
// readable sentences instead of being returned as errors.
package recall

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HendryAvila/recall/internal/sessions"
)

const (
	// DefaultLimit is the result limit used when the caller gives none.
	DefaultLimit = 10

	// ScanCeiling caps how many sessions a single search inspects.
	ScanCeiling = 50

	// ExcerptLength is the display cap for a search excerpt, before the ellipsis.
	ExcerptLength = 100
)

// MatchResult is one session that matched a search.
type MatchResult struct {
	SessionID  string `json:"session_id"`
	Title      string `json:"title"`
	MatchCount int    `json:"match_count"`
	Excerpt    string `json:"excerpt"`
}

// SearchResult is the outcome of one scan. Scanned counts every session
// inspected, including the ones whose messages could not be fetched.
type SearchResult struct {
	Query    string        `json:"query"`
	Results  []MatchResult `json:"results"`
	Scanned  int           `json:"scanned"`
	Skipped  int           `json:"skipped"`
	Sessions int           `json:"sessions"`
}

// Searcher scans sessions for a keyword.
type Searcher struct {
	client sessions.Client
	logger *slog.Logger
}

// NewSearcher creates a Searcher. A nil logger uses slog.Default().
func NewSearcher(client sessions.Client, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{client: client, logger: logger}
}

// Search scans sessions in the order the client returns them and collects
// up to limit matches, inspecting at most ScanCeiling sessions. A limit of
// zero or less means DefaultLimit.
//
// A failed session listing is reported as an empty corpus. Per-session
// message failures are skipped. The only error returned is the context's.
func (s *Searcher) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	res := &SearchResult{Query: query}

	list, err := s.client.ListSessions(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("listing sessions failed", "error", err)
		return res, nil
	}
	res.Sessions = len(list)

	for _, sess := range list {
		if len(res.Results) >= limit || res.Scanned >= ScanCeiling {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Scanned++

		msgs, err := s.client.GetMessages(ctx, sess.ID)
		if err != nil {
			res.Skipped++
			s.logger.Debug("skipping session", "session", sess.ID, "error", err)
			continue
		}

		count, first := sessions.CountMatches(msgs, query)
		if count == 0 {
			continue
		}
		res.Results = append(res.Results, MatchResult{
			SessionID:  sess.ID,
			Title:      sess.Title,
			MatchCount: count,
			Excerpt:    sessions.Truncate(sessions.Extract(msgs[first].Info), ExcerptLength),
		})
	}

	s.logger.Debug("search finished",
		"query", query, "scanned", res.Scanned, "skipped", res.Skipped, "matches", len(res.Results))
	return res, nil
}

// Find runs Search and renders the outcome as markdown. It always returns
// non-empty text.
func (s *Searcher) Find(ctx context.Context, query string, limit int) string {
	res, err := s.Search(ctx, query, limit)
	if err != nil {
		return fmt.Sprintf("Search for %q was interrupted: %v", query, err)
	}
	return FormatSearch(res)
}

// FormatSearch renders a SearchResult as markdown.
func FormatSearch(res *SearchResult) string {
	if res.Sessions == 0 {
		return "No sessions found."
	}
	if len(res.Results) == 0 {
		return fmt.Sprintf("No matches for %q in %d sessions scanned.", res.Query, res.Scanned)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Sessions matching %q\n\n", res.Query)
	fmt.Fprintf(&b, "Found matches in %d of %d sessions scanned.\n\n", len(res.Results), res.Scanned)

	for _, r := range res.Results {
		fmt.Fprintf(&b, "### %s\n\n", titleOrUntitled(r.Title))
		fmt.Fprintf(&b, "- **ID**: `%s`\n", r.SessionID)
		fmt.Fprintf(&b, "- **Matches**: %d\n", r.MatchCount)
		fmt.Fprintf(&b, "- **Excerpt**: %s\n\n", oneLine(r.Excerpt))
	}

	if res.Skipped > 0 {
		fmt.Fprintf(&b, "_%d sessions could not be read and were skipped._\n", res.Skipped)
	}

	return strings.TrimRight(b.String(), "\n")
}

func titleOrUntitled(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

// oneLine collapses whitespace so multi-line content fits a bullet.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
