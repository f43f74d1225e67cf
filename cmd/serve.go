package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"surveyor/pkg/logger"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, dispatcher and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := NewApplication(cfg)

			if err := app.Initialize(); err != nil {
				logger.ErrorCtx(app.ctx, "Application initialization failed: %v", err)
				app.runCleanup()
				return err
			}

			if err := app.Start(); err != nil {
				logger.ErrorCtx(app.ctx, "Application startup failed: %v", err)
				return err
			}

			// Wait for exit signal
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit
			logger.InfoCtx(app.ctx, "Received exit signal: %v", sig)

			// Graceful shutdown (30 seconds timeout)
			if err := app.Shutdown(30 * time.Second); err != nil {
				logger.ErrorCtx(app.ctx, "Application shutdown failed: %v", err)
				return err
			}

			logger.InfoCtx(app.ctx, "Application safely exited")
			return nil
		},
	}
}
