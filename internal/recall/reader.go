package recall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/dustin/go-humanize"
)

const (
	// MaxListed caps how many messages a digest section renders.
	MaxListed = 5

	// MessageLength is the display cap for one listed message.
	MessageLength = 200

	// ResponseLength is the display cap for the last assistant response.
	ResponseLength = 500
)

// timeLayout is the absolute creation time shown in digests.
const timeLayout = "2006-01-02 15:04:05"

// Reader renders a digest of one session.
type Reader struct {
	client sessions.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewReader creates a Reader. A nil logger uses slog.Default().
func NewReader(client sessions.Client, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{client: client, logger: logger, now: time.Now}
}

// Read returns a markdown digest of the session. With a non-empty focus it
// lists the messages whose payload mentions focus; otherwise it lists the
// first user messages and the last assistant response. Failures are
// rendered as text, never returned.
func (r *Reader) Read(ctx context.Context, id, focus string) string {
	sess, err := r.client.GetSession(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) || (err == nil && sess == nil) {
		return fmt.Sprintf("Session %q not found.", id)
	}
	if err != nil {
		r.logger.Warn("loading session failed", "session", id, "error", err)
		return fmt.Sprintf("Could not load session %q: %v", id, err)
	}

	msgs, err := r.client.GetMessages(ctx, id)
	if err != nil {
		r.logger.Warn("loading messages failed", "session", id, "error", err)
		return fmt.Sprintf("Could not load messages for session %q: %v", id, err)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("Session %q has 0 messages.", id)
	}

	var b strings.Builder
	r.writeHeader(&b, sess, len(msgs))

	focus = strings.TrimSpace(focus)
	if focus != "" {
		writeFocused(&b, msgs, focus)
	} else {
		writeDefault(&b, msgs)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Reader) writeHeader(b *strings.Builder, sess *sessions.Session, total int) {
	fmt.Fprintf(b, "# %s\n\n", titleOrUntitled(sess.Title))
	fmt.Fprintf(b, "- **ID**: `%s`\n", sess.ID)
	fmt.Fprintf(b, "- **Created**: %s\n", r.formatCreated(sess.CreatedAt))
	fmt.Fprintf(b, "- **Messages**: %d\n\n", total)
}

func (r *Reader) formatCreated(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return fmt.Sprintf("%s (%s)",
		t.Local().Format(timeLayout),
		humanize.RelTime(t, r.now(), "ago", "from now"),
	)
}

func writeFocused(b *strings.Builder, msgs []sessions.Message, focus string) {
	matched := sessions.Filter(msgs, focus)
	fmt.Fprintf(b, "## Messages matching %q (%d)\n\n", focus, len(matched))

	if len(matched) == 0 {
		fmt.Fprintf(b, "No messages matching %q.\n", focus)
		return
	}

	for _, m := range head(matched, MaxListed) {
		fmt.Fprintf(b, "- **%s**: %s\n", roleLabel(m.Role), excerpt(m, MessageLength))
	}
	if len(matched) > MaxListed {
		fmt.Fprintf(b, "\n_%d more not shown._\n", len(matched)-MaxListed)
	}
}

func writeDefault(b *strings.Builder, msgs []sessions.Message) {
	users := sessions.ByRole(msgs, sessions.RoleUser)
	if len(users) > 0 {
		b.WriteString("## Recent User Messages\n\n")
		for i, m := range head(users, MaxListed) {
			fmt.Fprintf(b, "%d. %s\n", i+1, excerpt(m, MessageLength))
		}
		b.WriteString("\n")
	}

	assistants := sessions.ByRole(msgs, sessions.RoleAssistant)
	if len(assistants) > 0 {
		last := assistants[len(assistants)-1]
		b.WriteString("## Last Response\n\n")
		b.WriteString(excerpt(last, ResponseLength))
		b.WriteString("\n")
	}
}

func excerpt(m sessions.Message, max int) string {
	return oneLine(sessions.Truncate(sessions.Extract(m.Info), max))
}

func roleLabel(role string) string {
	if role == "" {
		return "unknown"
	}
	return role
}

func head(msgs []sessions.Message, n int) []sessions.Message {
	if len(msgs) > n {
		return msgs[:n]
	}
	return msgs
}
