// Package render prints recall output on a terminal: markdown through
// glamour, session lists as lipgloss-styled rows.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	// MinWidthForMarkdown is the narrowest terminal glamour renders for.
	MinWidthForMarkdown = 30

	defaultWidth = 100

	// titleWidth caps the title column of the session list.
	titleWidth = 48
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// Printer writes recall output to one writer.
type Printer struct {
	out    io.Writer
	plain  bool
	width  int
	logger *slog.Logger
}

// NewPrinter creates a Printer. Styling is disabled when plain is set or
// out is not a terminal.
func NewPrinter(out io.Writer, plain bool, logger *slog.Logger) *Printer {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Printer{out: out, plain: true, width: defaultWidth, logger: logger}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.plain = plain
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			p.width = w
		}
	}
	return p
}

// Markdown renders md. Plain printers and narrow terminals get the text
// unchanged.
func (p *Printer) Markdown(md string) error {
	if p.plain || p.width < MinWidthForMarkdown {
		return p.line(md)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(p.width-4),
	)
	if err != nil {
		p.logger.Debug("glamour renderer unavailable", "error", err)
		return p.line(md)
	}
	out, err := r.Render(md)
	if err != nil {
		p.logger.Debug("glamour render failed", "error", err)
		return p.line(md)
	}
	return p.line(strings.TrimRight(out, "\n\r\t "))
}

// Sessions prints one row per session: title, id and creation time.
func (p *Printer) Sessions(list []sessions.Session, now time.Time) error {
	if len(list) == 0 {
		return p.line("No sessions found.")
	}

	style := func(s lipgloss.Style, text string) string {
		if p.plain {
			return text
		}
		return s.Render(text)
	}

	if err := p.line(style(headerStyle, fmt.Sprintf("%d sessions", len(list)))); err != nil {
		return err
	}
	for _, s := range list {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		title = sessions.Truncate(title, titleWidth)

		row := fmt.Sprintf("%s  %s  %s",
			style(titleStyle, padRight(title, titleWidth+len(sessions.Ellipsis))),
			style(idStyle, s.ID),
			style(dateStyle, Age(s.CreatedAt, now)),
		)
		if err := p.line(strings.TrimRight(row, " ")); err != nil {
			return err
		}
	}
	return nil
}

// Age describes t relative to now, or "unknown" for a zero time.
func Age(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func (p *Printer) line(s string) error {
	_, err := fmt.Fprintln(p.out, s)
	return err
}

// padRight pads s with spaces to n runes.
func padRight(s string, n int) string {
	if pad := n - len([]rune(s)); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
