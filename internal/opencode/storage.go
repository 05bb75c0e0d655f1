// Package opencode reads sessions straight from OpenCode's on-disk storage:
//
//	<storage>/session/<projectID>/<sessionID>.json
//	<storage>/message/<sessionID>/<messageID>.json
//
// Session files carry id, title and time.created (ms epoch). Each message
// file is the message info record itself and is passed through raw.
package opencode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/buger/jsonparser"
)

// Config holds storage reader configuration.
type Config struct {
	// StorageDir is the OpenCode storage root. Empty means auto-detect.
	StorageDir string
	// Project limits listing to one project ID. Empty lists every project.
	Project string
}

// Storage is a read-only sessions.Client over the OpenCode storage tree.
type Storage struct {
	dir     string
	project string
}

var _ sessions.Client = (*Storage)(nil)

// New creates a Storage. It does not require the directory to exist: a
// missing tree simply has no sessions.
func New(cfg Config) *Storage {
	dir := cfg.StorageDir
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = FindStorageDir(home)
	}
	return &Storage{dir: dir, project: cfg.Project}
}

// Dir returns the storage root in use.
func (s *Storage) Dir() string { return s.dir }

// FindStorageDir returns the first existing candidate storage directory,
// or the primary default when none exists.
func FindStorageDir(home string) string {
	candidates := storageCandidates(home)
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return candidates[0]
}

// storageCandidates returns platform-ordered candidate storage paths.
// Older OpenCode releases use ~/.local/share on every platform, so that
// path is always tried last.
func storageCandidates(home string) []string {
	var candidates []string

	switch runtime.GOOS {
	case "darwin":
		candidates = append(candidates, filepath.Join(home, "Library", "Application Support", "opencode", "storage"))
	case "linux":
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData == "" {
			xdgData = filepath.Join(home, ".local", "share")
		}
		candidates = append(candidates, filepath.Join(xdgData, "opencode", "storage"))
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			candidates = append(candidates, filepath.Join(localAppData, "opencode", "Data", "storage"))
		}
	}

	defaultPath := filepath.Join(home, ".local", "share", "opencode", "storage")
	if len(candidates) == 0 || candidates[len(candidates)-1] != defaultPath {
		candidates = append(candidates, defaultPath)
	}
	return candidates
}

// sessionFile is one parsed session with its ordering key.
type sessionFile struct {
	session sessions.Session
	updated int64
}

// ListSessions returns sessions most recently updated first.
func (s *Storage) ListSessions(ctx context.Context) ([]sessions.Session, error) {
	projects, err := s.projectDirs()
	if err != nil {
		return nil, err
	}

	var files []sessionFile
	for _, dir := range projects {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("opencode: read %s: %w", dir, err)
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			sf, ok := readSessionFile(filepath.Join(dir, e.Name()))
			if !ok {
				continue
			}
			files = append(files, sf)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].updated > files[j].updated
	})

	out := make([]sessions.Session, len(files))
	for i, f := range files {
		out[i] = f.session
	}
	return out, nil
}

// GetSession finds the session file in any project directory.
func (s *Storage) GetSession(ctx context.Context, id string) (*sessions.Session, error) {
	if !validID(id) {
		return nil, fmt.Errorf("opencode: %s: %w", id, sessions.ErrNotFound)
	}
	projects, err := s.projectDirs()
	if err != nil {
		return nil, err
	}
	for _, dir := range projects {
		sf, ok := readSessionFile(filepath.Join(dir, id+".json"))
		if ok {
			return &sf.session, nil
		}
	}
	return nil, fmt.Errorf("opencode: %s: %w", id, sessions.ErrNotFound)
}

// GetMessages reads the session's message files ordered by time.created.
// A session without a message directory has no messages.
func (s *Storage) GetMessages(ctx context.Context, id string) ([]sessions.Message, error) {
	if !validID(id) {
		return nil, fmt.Errorf("opencode: %s: %w", id, sessions.ErrNotFound)
	}
	dir := filepath.Join(s.dir, "message", id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opencode: read %s: %w", dir, err)
	}

	type entry struct {
		name    string
		created int64
		msg     sessions.Message
	}
	var msgs []entry
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil || !json.Valid(data) {
			continue
		}
		created, _ := jsonparser.GetInt(data, "time", "created")
		msgs = append(msgs, entry{
			name:    e.Name(),
			created: created,
			msg:     sessions.Message{SessionID: id, Role: sessions.Role(data), Info: data},
		})
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].created != msgs[j].created {
			return msgs[i].created < msgs[j].created
		}
		return msgs[i].name < msgs[j].name
	})

	out := make([]sessions.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.msg
	}
	return out, nil
}

// projectDirs returns the session directories to scan.
func (s *Storage) projectDirs() ([]string, error) {
	root := filepath.Join(s.dir, "session")
	if s.project != "" {
		return []string{filepath.Join(root, s.project)}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opencode: read %s: %w", root, err)
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}

// readSessionFile parses a session file. Unreadable or id-less files are
// reported as not ok.
func readSessionFile(path string) (sessionFile, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sessionFile{}, false
	}
	id, err := jsonparser.GetString(data, "id")
	if err != nil || id == "" {
		return sessionFile{}, false
	}

	sf := sessionFile{session: sessions.Session{ID: id}}
	sf.session.Title, _ = jsonparser.GetString(data, "title")
	if ms, err := jsonparser.GetInt(data, "time", "created"); err == nil && ms > 0 {
		sf.session.CreatedAt = time.UnixMilli(ms)
		sf.updated = ms
	}
	if ms, err := jsonparser.GetInt(data, "time", "updated"); err == nil && ms > 0 {
		sf.updated = ms
	}
	return sf, true
}

// validID rejects ids that would escape the storage tree.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
