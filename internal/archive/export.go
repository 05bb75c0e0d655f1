package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/google/uuid"
)

// ExportVersion is written into every export file.
const ExportVersion = "1"

// ExportData is the portable dump of a set of sessions.
type ExportData struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Sessions   []ExportedSession `json:"sessions"`
}

// ExportedSession is one session with its messages in order.
type ExportedSession struct {
	sessions.Session
	Messages []sessions.Message `json:"messages"`
}

// ImportResult holds counts of imported records.
type ImportResult struct {
	SessionsImported int `json:"sessions_imported"`
	MessagesImported int `json:"messages_imported"`
}

// SnapshotResult reports what Snapshot could and could not read.
type SnapshotResult struct {
	Data    *ExportData
	Skipped []string
}

// Snapshot reads every session from client into an ExportData. Sessions
// whose messages cannot be fetched are skipped and reported.
func Snapshot(ctx context.Context, client sessions.Client, logger *slog.Logger) (*SnapshotResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	list, err := client.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: snapshot: list sessions: %w", err)
	}

	res := &SnapshotResult{Data: &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Sessions:   make([]ExportedSession, 0, len(list)),
	}}

	for _, sess := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgs, err := client.GetMessages(ctx, sess.ID)
		if err != nil {
			logger.Warn("snapshot: skipping session", "session", sess.ID, "error", err)
			res.Skipped = append(res.Skipped, sess.ID)
			continue
		}
		res.Data.Sessions = append(res.Data.Sessions, ExportedSession{Session: sess, Messages: msgs})
	}
	return res, nil
}

// Export dumps the whole archive.
func (s *Store) Export(ctx context.Context) (*ExportData, error) {
	res, err := Snapshot(ctx, s, nil)
	if err != nil {
		return nil, err
	}
	if len(res.Skipped) > 0 {
		return nil, fmt.Errorf("archive: export: %d sessions unreadable", len(res.Skipped))
	}
	return res.Data, nil
}

// Import writes the sessions of data into the archive in one transaction.
// Existing sessions with the same id are replaced. Sessions without an id
// get a generated one.
func (s *Store) Import(ctx context.Context, data *ExportData) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: import: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &ImportResult{}
	for _, es := range data.Sessions {
		sess := es.Session
		if sess.ID == "" {
			sess.ID = "ses_" + uuid.NewString()
		}
		if err := putSessionTx(ctx, tx, sess, es.Messages); err != nil {
			return nil, fmt.Errorf("archive: import: %w", err)
		}
		result.SessionsImported++
		result.MessagesImported += len(es.Messages)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("archive: import: commit: %w", err)
	}
	return result, nil
}

// ReadExportFile decodes an export file.
func ReadExportFile(path string) (*ExportData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", path, err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("archive: parse %s: %w", path, err)
	}
	return &data, nil
}

// WriteExportFile encodes data as indented JSON at path. HTML characters
// are written literally so message payloads keep their original text.
func WriteExportFile(path string, data *ExportData) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("archive: marshal export: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	return nil
}
