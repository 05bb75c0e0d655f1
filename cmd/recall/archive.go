package main

import (
	"fmt"

	"github.com/HendryAvila/recall/internal/archive"
	"github.com/spf13/cobra"
)

func (a *app) openArchive() (*archive.Store, error) {
	return archive.New(archive.Config{DataDir: a.cfg.Archive.DataDir})
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load an export file into the SQLite archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := archive.ReadExportFile(args[0])
			if err != nil {
				return err
			}
			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := store.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sessions (%d messages) into %s\n",
				res.SessionsImported, res.MessagesImported, store.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "Archive now holds %d sessions, %d messages\n",
				stats.Sessions, stats.Messages)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.json>",
		Short: "Snapshot the configured source into an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := a.client()
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := archive.Snapshot(cmd.Context(), client, a.logger)
			if err != nil {
				return err
			}
			if err := archive.WriteExportFile(args[0], snap.Data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions from %s to %s\n",
				len(snap.Data.Sessions), a.cfg.Source, args[0])
			if len(snap.Skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d unreadable sessions\n", len(snap.Skipped))
			}
			return nil
		},
	}
}

func newForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <session-id>",
		Short: "Remove a session from the SQLite archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the archive\n", args[0])
			return nil
		},
	}
}
