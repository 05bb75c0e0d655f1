// Package archive keeps a local SQLite copy of sessions and their messages.
//
// The archive is a sessions.Client like any other backend, so recall can
// search sessions after the originating service is gone. Data gets in
// through Import, usually from a Snapshot of another backend.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// dbFile is the archive file name inside the data directory.
const dbFile = "sessions.db"

// timeFormat has fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds archive configuration.
type Config struct {
	// DataDir holds sessions.db; created if missing.
	DataDir string
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed session archive.
type Store struct {
	db  *sql.DB
	cfg Config
}

var _ sessions.Client = (*Store)(nil)

// New opens (or creates) the archive in cfg.DataDir with WAL mode and
// runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("archive: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("archive: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: migration: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, dbFile)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			created_at  TEXT,
			archived_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT    NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq        INTEGER NOT NULL,
			role       TEXT    NOT NULL DEFAULT '',
			info       TEXT,
			UNIQUE (session_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
		CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// PutSession stores a session and replaces its messages, keeping their order.
func (s *Store) PutSession(ctx context.Context, sess sessions.Session, msgs []sessions.Message) error {
	if sess.ID == "" {
		return errors.New("archive: session id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := putSessionTx(ctx, tx, sess, msgs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

func putSessionTx(ctx context.Context, tx *sql.Tx, sess sessions.Session, msgs []sessions.Message) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   created_at = excluded.created_at,
		   archived_at = datetime('now')`,
		sess.ID, sess.Title, formatTime(sess.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("archive: upsert session %s: %w", sess.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("archive: clear messages %s: %w", sess.ID, err)
	}

	for i, m := range msgs {
		role := m.Role
		if role == "" {
			role = sessions.Role(m.Info)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, seq, role, info) VALUES (?, ?, ?, ?)`,
			sess.ID, i, role, nullableInfo(m.Info),
		); err != nil {
			return fmt.Errorf("archive: insert message %s/%d: %w", sess.ID, i, err)
		}
	}
	return nil
}

// DeleteSession removes a session and its messages.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive: delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("archive: %s: %w", id, sessions.ErrNotFound)
	}
	return nil
}

// ─── sessions.Client ────────────────────────────────────────────────────────

// ListSessions returns archived sessions, newest first; sessions without
// a creation time come last.
func (s *Store) ListSessions(ctx context.Context) ([]sessions.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM sessions
		 ORDER BY created_at IS NULL, created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("archive: list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []sessions.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("archive: scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// GetSession returns one archived session.
func (s *Store) GetSession(ctx context.Context, id string) (*sessions.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archive: %s: %w", id, sessions.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: get session %s: %w", id, err)
	}
	return &sess, nil
}

// GetMessages returns a session's messages in their original order.
func (s *Store) GetMessages(ctx context.Context, id string) ([]sessions.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, role, info FROM messages WHERE session_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("archive: messages %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var out []sessions.Message
	for rows.Next() {
		var (
			m    sessions.Message
			info sql.NullString
		)
		if err := rows.Scan(&m.SessionID, &m.Role, &info); err != nil {
			return nil, fmt.Errorf("archive: scan message: %w", err)
		}
		if info.Valid {
			m.Info = []byte(info.String)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats holds archive totals.
type Stats struct {
	Sessions int `json:"sessions"`
	Messages int `json:"messages"`
}

// Stats returns archive totals.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions); err != nil {
		return nil, fmt.Errorf("archive: count sessions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.Messages); err != nil {
		return nil, fmt.Errorf("archive: count messages: %w", err)
	}
	return &st, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (sessions.Session, error) {
	var (
		sess    sessions.Session
		created sql.NullString
	)
	if err := row.Scan(&sess.ID, &sess.Title, &created); err != nil {
		return sessions.Session{}, err
	}
	if created.Valid {
		sess.CreatedAt = parseTime(created.String)
	}
	return sess, nil
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	v := t.UTC().Format(timeFormat)
	return &v
}

// parseTime reads an archived timestamp. Unparseable values are treated
// as absent.
func parseTime(v string) time.Time {
	if t, err := time.Parse(timeFormat, v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	return time.Time{}
}

// nullableInfo stores payloads in compact form, the shape the live
// backends return, so substring matching sees the same bytes. Invalid JSON
// is kept verbatim.
func nullableInfo(info []byte) *string {
	if len(info) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, info); err == nil {
		info = buf.Bytes()
	}
	v := string(info)
	return &v
}
