package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	rserver "github.com/HendryAvila/recall/internal/server"
	"github.com/HendryAvila/recall/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var noUpdateCheck bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cleanup, err := rserver.New(a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noUpdateCheck {
				go a.checkForUpdates(ctx)
			}

			a.logger.Info("serving MCP on stdio", "source", a.cfg.Source, "version", rserver.Version)
			stdio := server.NewStdioServer(s)
			if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noUpdateCheck, "no-update-check", false, "skip the background release check")
	return cmd
}

// checkForUpdates logs a notice when a newer release exists. Best-effort:
// failures are ignored.
func (a *app) checkForUpdates(ctx context.Context) {
	result := updater.New().Check(ctx, rserver.Version)
	if result.UpdateAvailable {
		a.logger.Info("update available",
			"current", result.CurrentVersion,
			"latest", result.LatestVersion,
			"release", result.ReleaseURL,
			"hint", "run: recall update",
		)
	}
}
