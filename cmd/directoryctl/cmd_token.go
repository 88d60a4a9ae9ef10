package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutralink/directory/internal/app"
	iauth "github.com/nutralink/directory/internal/auth"
)

type tokenOptions struct {
	userID string
	email  string
	name   string
	admin  bool
	ttl    time.Duration
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user",
		Long: `Mint a signed access token accepted by the directory API.

When no JWT secret is configured the secret persisted by the server in the
database is used, generating it on first use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.userID) == "" {
				return errors.New("--user is required")
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
				db, closeDB, err := openDatabase(cfg)
				if err != nil {
					return err
				}
				defer closeDB()
				if _, err := app.ApplyRuntimeDefaults(cmd.Context(), cfg, db); err != nil {
					return err
				}
			}

			jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
			if err != nil {
				return err
			}

			role := iauth.RoleMember
			if opts.admin {
				role = iauth.RoleAdmin
			}
			token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{
				UserID: opts.userID,
				Email:  opts.email,
				Name:   opts.name,
				Role:   role,
				TTL:    opts.ttl,
			})
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.userID, "user", "", "User identifier placed in the token")
	flags.StringVar(&opts.email, "email", "", "Email claim, used as reply-to for outreach")
	flags.StringVar(&opts.name, "name", "", "Display name claim")
	flags.BoolVar(&opts.admin, "admin", false, "Grant the admin role")
	flags.DurationVar(&opts.ttl, "ttl", 0, "Token lifetime (defaults to the configured access token TTL)")

	return cmd
}
