package server

import (
	"fmt"
	"log/slog"

	"github.com/HendryAvila/recall/internal/archive"
	"github.com/HendryAvila/recall/internal/config"
	"github.com/HendryAvila/recall/internal/opencode"
	"github.com/HendryAvila/recall/internal/remote"
	"github.com/HendryAvila/recall/internal/sessions"
)

// NewClient builds the session backend named by cfg.Source. The cleanup
// function is always non-nil.
func NewClient(cfg config.Config, logger *slog.Logger) (sessions.Client, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Source {
	case config.SourceOpenCode, "":
		st := opencode.New(opencode.Config{
			StorageDir: cfg.OpenCode.StorageDir,
			Project:    cfg.OpenCode.Project,
		})
		logger.Debug("reading OpenCode storage", "dir", st.Dir())
		return st, noop, nil

	case config.SourceRemote:
		c, err := remote.New(remote.Config{
			BaseURL:   cfg.Remote.BaseURL,
			Directory: cfg.Remote.Directory,
			Timeout:   cfg.Remote.Timeout,
		})
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("using session server", "url", cfg.Remote.BaseURL)
		return c, noop, nil

	case config.SourceArchive:
		st, err := archive.New(archive.Config{DataDir: cfg.Archive.DataDir})
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("using session archive", "path", st.Path())
		return st, func() {
			if err := st.Close(); err != nil {
				logger.Warn("archive close failed", "error", err)
			}
		}, nil
	}
	return nil, noop, fmt.Errorf("unknown source %q", cfg.Source)
}
