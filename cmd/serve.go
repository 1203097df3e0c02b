package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/oss-stats/internal/cache"
	"github.com/naka-gawa/oss-stats/internal/handler"
)

const (
	shutdownTimeout = 10 * time.Second
	idleTimeout     = 2 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the contribution API over HTTP",
	Long: `Starts an HTTP server exposing /api/org-prs, /api/org-prs/all, /api/oss-stats,
/api/github/rate-limit, /healthz and /metrics. Responses are cached in memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		gin.SetMode(a.cfg.GinMode)
		h := handler.New(a.feed, a.aggregator, a.gateway, cache.New[[]byte](time.Now), handler.Config{
			DefaultUser:    a.cfg.GitHub.DefaultUser,
			OrgTTL:         a.cfg.Cache.OrgTTL,
			StatsTTL:       a.cfg.Cache.StatsTTL,
			RequestTimeout: a.cfg.HTTP.RequestTimeout,
		}, a.logger)

		srv := &http.Server{
			Addr:         a.cfg.HTTP.Addr,
			Handler:      handler.NewRouter(h, a.logger),
			ReadTimeout:  a.cfg.HTTP.ReadTimeout,
			WriteTimeout: a.cfg.HTTP.WriteTimeout,
			IdleTimeout:  idleTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.logger.Infow("server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.logger.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
