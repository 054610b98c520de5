package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-prompteval/internal/config"
	"github.com/ahrav/go-prompteval/internal/pipeline"
	"github.com/ahrav/go-prompteval/internal/score"
	"github.com/ahrav/go-prompteval/internal/server"
)

const shutdownGrace = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr     string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a single-case pipeline endpoint at POST /llm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Providers = []string{provider}
			}

			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			if err := cfg.Validate(creds); err != nil {
				return err
			}

			logger := slog.Default()
			active := cfg.Providers[0]
			client, err := buildClient(active, cfg, creds, logger, false)
			if err != nil {
				return err
			}
			extractor, err := score.NewExtractor(logger)
			if err != nil {
				return err
			}
			executor := pipeline.NewExecutor(client, extractor, cfg.StageTimeout(), logger)

			srv := &http.Server{
				Addr:    addr,
				Handler: server.New(executor, logger).Handler(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr, "provider", active, "model", cfg.Model(active))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider to serve, overriding the configured list")
	return cmd
}
