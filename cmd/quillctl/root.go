package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/quillpost/server/internal/logger"
	"codeberg.org/quillpost/server/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// operator commands that run next to the server: schema migrations and dev tokens
func newRootCmd(v string) *cobra.Command {
	root := &cobra.Command{
		Use:          "quillctl",
		Short:        "Administer a quillpost deployment",
		Version:      v,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load() //nolint:errcheck // .env is optional outside development
			logger.Configure(os.Getenv("ENVIRONMENT"))
		},
	}

	root.SetVersionTemplate(`{{printf "quillctl version %s\n" .Version}}`)

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newTokenCmd())

	return root
}

// opens the database named by --database-url, falling back to DATABASE_URL
func openDatabase(ctx context.Context, cmd *cobra.Command) (*storage.DB, error) {
	url, err := cmd.Flags().GetString("database-url")
	if err != nil {
		return nil, err
	}

	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}

	if url == "" {
		return nil, fmt.Errorf("no database configured: pass --database-url or set DATABASE_URL")
	}

	return storage.Open(ctx, url)
}
