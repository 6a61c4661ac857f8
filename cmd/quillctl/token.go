package main

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/config"
	"codeberg.org/quillpost/server/internal/storage"
	"codeberg.org/quillpost/server/quillpost/refreshtokens"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/spf13/cobra"
)

// mints a token pair for an account, creating it if needed; for local testing against the API
func newTokenCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, err := config.LoadEnvironmentVariables()
			if err != nil {
				return err
			}

			if cfg.IsProduction() {
				return fmt.Errorf("refusing to mint tokens in production")
			}

			ctx := cmd.Context()

			db, err := storage.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			userRepo := users.NewRepository(db.SQL)

			user, err := userRepo.FindOrCreateByEmail(ctx, email, "")
			if err != nil {
				return err
			}

			provider, err := auth.NewTokenProvider(cfg.JWT, userRepo)
			if err != nil {
				return err
			}

			accessTTL := cfg.JWT.AccessTokenTTL
			if ttl > 0 {
				accessTTL = ttl
			}

			tokens := auth.NewTokenService(provider, userRepo, refreshtokens.NewRepository(db.SQL), accessTTL, cfg.JWT.RefreshTokenTTL)

			pair, err := tokens.IssuePair(ctx, user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:          %s (id %d)\n", user.Email, user.ID)
			fmt.Fprintf(out, "access token:  %s\n", pair.AccessToken)
			fmt.Fprintf(out, "refresh token: %s\n", pair.RefreshToken)
			fmt.Fprintf(out, "\ncurl -H \"Authorization: Bearer %s\" %s/api/users/me\n", pair.AccessToken, cfg.BaseURL)

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "access token lifetime (defaults to ACCESS_TOKEN_TTL)")

	return cmd
}
