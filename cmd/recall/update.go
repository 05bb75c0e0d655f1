package main

import (
	"errors"
	"fmt"

	rserver "github.com/HendryAvila/recall/internal/server"
	"github.com/HendryAvila/recall/internal/updater"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update recall to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.ErrOrStderr()
			u := updater.New()

			fmt.Fprintln(out, "Checking for updates...")
			result := u.Check(cmd.Context(), rserver.Version)
			if !result.UpdateAvailable {
				fmt.Fprintf(out, "Already at the latest version (v%s)\n", result.CurrentVersion)
				return nil
			}

			fmt.Fprintf(out, "New version available: v%s -> v%s\nDownloading...\n",
				result.CurrentVersion, result.LatestVersion)
			version, err := u.Apply(cmd.Context(), rserver.Version)
			if errors.Is(err, updater.ErrUpToDate) {
				fmt.Fprintln(out, "Already at the latest version")
				return nil
			}
			if err != nil {
				return fmt.Errorf("update failed: %w (download manually from %s)", err, result.ReleaseURL)
			}

			fmt.Fprintf(out, "Updated to v%s. Restart recall to use the new version.\n", version)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recall v%s\n", rserver.Version)
		},
	}
}
