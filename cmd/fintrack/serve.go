package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := a.logger

			l, err := cli.OpenLedger(ctx, logger, a.cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			reports := a.reportService(l.Store)
			caches := cache.NewManager(logger)
			caches.Register(reports.Cache())
			go caches.Run(ctx, 10*time.Minute)

			srv := apphttp.NewServer(a.cfg.Addr(), services.NewLedgerService(l.Store), reports, a.cfg.ChartDir)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting fintrack server",
					"port", a.cfg.Port,
					applog.FieldBackend, a.cfg.DataBackend)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					logger.Error("Server error", applog.FieldError, err, "port", a.cfg.Port)
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", applog.FieldError, err)
				return err
			}
			logger.Info("Server stopped gracefully", "requests", srv.Metrics().TotalRequests)
			return nil
		},
	}
}
