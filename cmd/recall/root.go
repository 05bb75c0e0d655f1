package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/HendryAvila/recall/internal/config"
	"github.com/HendryAvila/recall/internal/render"
	rserver "github.com/HendryAvila/recall/internal/server"
	"github.com/HendryAvila/recall/internal/sessions"
	"github.com/spf13/cobra"
)

// app carries the state shared by every command after flag parsing.
type app struct {
	configPath string
	source     string
	verbose    bool
	plain      bool

	cfg    config.Config
	logger *slog.Logger
	// logOut receives log output. Always stderr outside tests: stdout
	// belongs to the MCP stdio transport.
	logOut io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{logOut: os.Stderr}

	root := &cobra.Command{
		Use:   "recall",
		Short: "Search and read previous coding-agent sessions",
		Long: `recall exposes your earlier coding sessions to an AI agent over MCP.

Two tools are served: find_sessions searches recent sessions for a keyword,
read_session prints a digest of one session. The same operations are
available from the terminal.

Quick Start:
  recall serve                     # MCP server on stdio
  recall find "auth middleware"    # search from the terminal
  recall read ses_abc123 --focus db`,
		Version:           rserver.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config file (default ~/.recall/config.yaml, or $"+config.EnvPath+")")
	root.PersistentFlags().StringVar(&a.source, "source", "", "session source: opencode, remote or archive (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.plain, "plain", false, "print raw markdown without terminal styling")
	root.SetVersionTemplate(`{{printf "recall v%s\n" .Version}}`)

	root.AddCommand(
		newServeCmd(a),
		newFindCmd(a),
		newReadCmd(a),
		newListCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newForgetCmd(a),
		newUpdateCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ResolvePath(a.configPath))
	if err != nil {
		return err
	}
	if a.source != "" {
		cfg.Source = strings.ToLower(strings.TrimSpace(a.source))
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("--source: %w", err)
		}
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

// client opens the configured session source.
func (a *app) client() (sessions.Client, func(), error) {
	return rserver.NewClient(a.cfg, a.logger)
}

// printer renders to the command's stdout.
func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout(), a.plain, a.logger)
}
