// Package cmd provides the CLI commands for insight.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"insight/internal/db"
	"insight/internal/engine"
	"insight/internal/observability"
	"insight/internal/pubsub"
	"insight/internal/session"
	"insight/internal/storage"
	"insight/internal/stream"
	"insight/internal/tui"
)

const appName = "insight"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Personal life-tracking assistant",
		Long: `insight tracks your emotions, finances, skills, and learning, and ships
with a conversational assistant over your data.

Running without a subcommand opens the interactive chat.`,
		RunE: runChat,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("server", "http://localhost:8000", "Base URL of the backend server")
	cmd.Flags().Bool("no-stream", false, "Disable incremental response streaming")

	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newRecordsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		observability.SetDebug()
	}
	baseURL, _ := cmd.Flags().GetString("server")
	noStream, _ := cmd.Flags().GetBool("no-stream")

	store, closeStore, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStore()

	hub := pubsub.NewHub()
	defer hub.Shutdown()

	sessions := session.NewStore(store, hub.Session)
	if err := sessions.Load(context.Background()); err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	var opts []stream.ClientOption
	if noStream {
		opts = append(opts, stream.WithoutStreaming())
	}
	client := stream.NewClient(baseURL, opts...)

	eng := engine.New(sessions, store, client, hub)

	return tui.Run(eng, sessions, hub)
}

// openStorage opens the durable store in the user data directory.
func openStorage() (storage.Store, func(), error) {
	dbPath := filepath.Join(xdg.DataHome, appName, appName+".db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	return storage.NewSQLiteStore(database), func() { _ = database.Close() }, nil
}
