package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Address = addr
			}
			module, err := moduleBuilder(cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if migrate {
				if err := module.Migrate(ctx); err != nil {
					return err
				}
			}
			logger := module.Logger("siteadmin.http")
			if err := module.Start(ctx); err != nil {
				// Lists recover on the next change signal once the store answers.
				logger.Warn("records.initial_load.failed", "error", err)
			}

			handler, err := module.Handler()
			if err != nil {
				return err
			}
			server := &http.Server{
				Addr:              cfg.HTTP.Address,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http.listening", "addr", cfg.HTTP.Address, "base_path", cfg.HTTP.BasePath)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("http.shutdown")
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides http.address and PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the record table before serving")
	return cmd
}
