package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"insight/internal/session"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage conversation sessions",
	}

	cmd.AddCommand(
		newSessionsListCmd(),
		newSessionsDeleteCmd(),
		newSessionsRenameCmd(),
	)

	return cmd
}

func withSessionStore(fn func(*session.Store) error) error {
	store, closeStore, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := session.NewStore(store, nil)
	if err := sessions.Load(context.Background()); err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	return fn(sessions)
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withSessionStore(func(sessions *session.Store) error {
				active := sessions.ActiveID()
				for _, s := range sessions.List() {
					marker := " "
					if s.ID == active {
						marker = "*"
					}
					updated := time.UnixMilli(s.UpdatedAt).Format("2006-01-02 15:04")
					fmt.Printf("%s %s  %-24s %s  %d messages\n",
						marker, s.ID, s.Title, updated, len(s.Messages))
				}
				return nil
			})
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSessionStore(func(sessions *session.Store) error {
				if !force {
					s, err := sessions.Get(args[0])
					if err != nil {
						return err
					}
					fmt.Printf("Delete session %q (%d messages)? [y/N] ", s.Title, len(s.Messages))
					var answer string
					fmt.Scanln(&answer) //nolint:errcheck
					if !strings.EqualFold(strings.TrimSpace(answer), "y") {
						fmt.Println("Aborted.")
						return nil
					}
				}
				return sessions.Delete(context.Background(), args[0])
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}

func newSessionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSessionStore(func(sessions *session.Store) error {
				return sessions.Rename(context.Background(), args[0], args[1])
			})
		},
	}
}
