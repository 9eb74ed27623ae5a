// cmd/beatmarket/serve_command.go
package main

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

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/router"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			if err := i18n.Initialize(); err != nil {
				return fmt.Errorf("initialize i18n: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			market, err := ctx.openMarket(runCtx)
			if err != nil {
				return err
			}

			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
				Handler:      router.Initialize(market, cfg, ctx.log),
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
				IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				ctx.log.WithField("addr", srv.Addr).Info("Starting server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			case <-runCtx.Done():
			}

			ctx.log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			ctx.log.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Override SERVER_PORT")
	return cmd
}
