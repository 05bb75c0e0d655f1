// Package config loads recall's YAML configuration.
//
// A missing file is not an error: every field has a usable default, so
// `recall serve` works out of the box against the local OpenCode storage.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session sources.
const (
	SourceOpenCode = "opencode"
	SourceRemote   = "remote"
	SourceArchive  = "archive"
)

// EnvPath overrides the config file location when --config is not given.
const EnvPath = "RECALL_CONFIG"

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// RemoteConfig points at a running session server.
type RemoteConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Directory string        `yaml:"directory"`
	Timeout   time.Duration `yaml:"timeout"`
}

// OpenCodeConfig locates OpenCode's on-disk storage.
type OpenCodeConfig struct {
	StorageDir string `yaml:"storage_dir"`
	Project    string `yaml:"project"`
}

// ArchiveConfig locates the SQLite archive.
type ArchiveConfig struct {
	DataDir string `yaml:"data_dir"`
}

// Config is the whole configuration file.
type Config struct {
	Source   string         `yaml:"source"`
	Log      LogConfig      `yaml:"log"`
	Remote   RemoteConfig   `yaml:"remote"`
	OpenCode OpenCodeConfig `yaml:"opencode"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceOpenCode,
		Log:    LogConfig{Level: "info"},
		Remote: RemoteConfig{
			BaseURL: "http://127.0.0.1:4096",
			Timeout: 30 * time.Second,
		},
		Archive: ArchiveConfig{DataDir: defaultDataDir()},
	}
}

// DefaultPath returns ~/.recall/config.yaml.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// ResolvePath picks the config path: the explicit flag value, then
// $RECALL_CONFIG, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return expandPath(flag)
	}
	if env := os.Getenv(EnvPath); env != "" {
		return expandPath(env)
	}
	return DefaultPath()
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// normalize trims values and expands ~ in paths.
func (c *Config) normalize() {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Remote.BaseURL = strings.TrimSpace(c.Remote.BaseURL)
	c.OpenCode.StorageDir = expandPath(strings.TrimSpace(c.OpenCode.StorageDir))
	c.Archive.DataDir = expandPath(strings.TrimSpace(c.Archive.DataDir))
	if c.Archive.DataDir == "" {
		c.Archive.DataDir = defaultDataDir()
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Source {
	case SourceOpenCode, SourceArchive:
	case SourceRemote:
		if c.Remote.BaseURL == "" {
			return errors.New("remote.base_url is required for the remote source")
		}
	default:
		return fmt.Errorf("unknown source %q (want %s, %s or %s)",
			c.Source, SourceOpenCode, SourceRemote, SourceArchive)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Remote.Timeout < 0 {
		return errors.New("remote.timeout must not be negative")
	}
	return nil
}

// LogLevel returns the configured slog level, info when unset.
func (c Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".recall"
	}
	return filepath.Join(home, ".recall")
}

func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	trimmed := strings.TrimPrefix(path, "~")
	trimmed = strings.TrimPrefix(trimmed, string(os.PathSeparator))
	return filepath.Join(home, trimmed)
}
