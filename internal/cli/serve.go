package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/fis-results/internal/config"
	"github.com/pfrederiksen/fis-results/internal/logger"
	"github.com/pfrederiksen/fis-results/internal/metrics"
	"github.com/pfrederiksen/fis-results/internal/resultcache"
	"github.com/pfrederiksen/fis-results/internal/scrape"
	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve race results over HTTP",
		Long: `Serve race results over HTTP.

Routes:
  GET /races/{id}/results      results as JSON
  GET /races/{id}/results.csv  results as a CSV download
  GET /metrics                 Prometheus metrics
  GET /healthz                 liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, func(cfg *config.Config) {
				if cmd.Flags().Changed("addr") {
					cfg.ListenAddr = addr
				}
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	m := metrics.NewManager()

	a, err := newApp(ctx, cfg, cmd.ErrOrStderr(), scrape.WithRecorder(m))
	if err != nil {
		return err
	}
	defer a.close()

	server := NewServer(a.service, resultcache.New(cfg.Cache.Size, cfg.Cache.TTL), m, a.log)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting HTTP server", logger.Fields{"addr": cfg.ListenAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("server stopped", nil)
	return nil
}
