package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/healthpilot/internal/api"
	"github.com/erazemk/healthpilot/internal/store"
	"github.com/erazemk/healthpilot/internal/web"
)

func newServeCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				e.cfg.Addr = addr
			}
			return serve(cmd.Context(), e)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	return cmd
}

// newHandler combines the JSON API and the web pages behind the access log.
func newHandler(e *env) (http.Handler, error) {
	apiRouter := api.NewRouter(e.svc)
	webRouter, err := web.NewRouter(e.svc)
	if err != nil {
		return nil, err
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return api.LoggingMiddleware(mux), nil
}

func serve(ctx context.Context, e *env) error {
	handler, err := newHandler(e)
	if err != nil {
		return err
	}

	if n, err := store.PruneRevokedSessions(ctx, e.db, time.Now()); err != nil {
		slog.Warn("failed to prune revoked sessions", "error", err)
	} else if n > 0 {
		slog.Info("pruned revoked sessions", "count", n)
	}

	server := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", e.cfg.Addr, "backend", e.cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
