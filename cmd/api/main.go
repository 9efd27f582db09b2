package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/config"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/database"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/router"
	"github.com/Mbalsss/ServiceDesk-sub001/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:          "servicedesk",
		Short:        "IT service desk API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			l := logger.New(cfg.Env)

			pool, err := database.Open(cmd.Context(), cfg)
			if err != nil {
				l.Error().Err(err).Msg("db connect failed")
				return err
			}
			defer pool.Close()

			r := router.New(l, pool, cfg)
			srv := &http.Server{
				Addr:        ":" + cfg.Port,
				Handler:     r,
				ReadTimeout: 15 * time.Second,
				// No WriteTimeout: /api/events holds an SSE stream open
				// for the lifetime of the client.
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				l.Info().Str("addr", srv.Addr).Msg("api listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
			l.Info().Msg("shutdown complete")
			return nil
		},
	}
}
