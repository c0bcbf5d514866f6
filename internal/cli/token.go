package cli

import (
	"fmt"
	"time"

	"speedlog/internal/services"

	"github.com/spf13/cobra"
)

func NewTokenCommand(root *RootCommand) *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a dashboard access token",
		Long: `Sign a bearer token for "speedlog serve" with serve.token_secret.
Send it as "Authorization: Bearer <token>" or as ?token=<token>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.Config()
			if cfg.Serve.TokenSecret == "" {
				return fmt.Errorf("serve.token_secret is not set")
			}

			auth, err := services.NewAuthService(cfg.Serve.TokenSecret, cfg.Serve.TokenExpiryD)
			if err != nil {
				return err
			}
			token, expiresAt, err := auth.GenerateToken(client)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Fprintln(root.out, token)
			fmt.Fprintf(cmd.ErrOrStderr(), "Expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&client, "client", "dashboard", "Client name recorded in the token")

	return cmd
}
