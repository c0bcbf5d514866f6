package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"speedlog/internal/middleware"
	"speedlog/internal/routes"
	"speedlog/internal/services"

	"github.com/spf13/cobra"
)

func NewServeCommand(root *RootCommand) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored rows and charts over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.Config()
			if listen == "" {
				listen = cfg.Serve.Listen
			}

			st, schema, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			services.InitHistoryService(st, services.NewChartRenderer(schema))
			services.SetChartCacheTTL(cfg.Serve.ChartTTLD)

			var auth *services.AuthService
			if cfg.Serve.TokenSecret != "" {
				if auth, err = services.NewAuthService(cfg.Serve.TokenSecret, cfg.Serve.TokenExpiryD); err != nil {
					return fmt.Errorf("init auth: %w", err)
				}
			} else {
				log.Printf("[AUTH] Warning: serve.token_secret is not set, dashboard is open to whitelisted IPs")
			}

			ctx := cmd.Context()
			go services.InitRowStream(cfg.Serve.StreamIntervalD).Run(ctx)

			r := routes.NewRouter(
				middleware.NewRateLimiter(cfg.Serve.RatePerSec, cfg.Serve.RateBurst),
				middleware.NewIPWhitelist(cfg.Serve.AllowedIPs),
				auth,
			)

			srv := &http.Server{
				Addr:              listen,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			log.Printf("Dashboard listening on http://%s", listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")

	return cmd
}
