package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/recall/internal/recall"
	"github.com/spf13/cobra"
)

func newFindCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Search recent sessions for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(args[0])
			if query == "" {
				return fmt.Errorf("query must not be empty")
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be a positive integer")
			}
			client, cleanup, err := a.client()
			if err != nil {
				return err
			}
			defer cleanup()

			text := recall.NewSearcher(client, a.logger).Find(cmd.Context(), query, limit)
			return a.printer(cmd).Markdown(text)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", recall.DefaultLimit, "max sessions to list")
	return cmd
}

func newReadCmd(a *app) *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "read <session-id>",
		Short: "Print a digest of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := a.client()
			if err != nil {
				return err
			}
			defer cleanup()

			text := recall.NewReader(client, a.logger).Read(cmd.Context(), args[0], focus)
			return a.printer(cmd).Markdown(text)
		},
	}
	cmd.Flags().StringVarP(&focus, "focus", "f", "", "only list messages mentioning this keyword")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cleanup, err := a.client()
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := client.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			return a.printer(cmd).Sessions(list, time.Now())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max sessions to show (0 for all)")
	return cmd
}
