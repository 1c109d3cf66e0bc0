package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hostfacts/internal/core"
	"hostfacts/internal/facts"
)

const shutdownTimeout = 10 * time.Second

// newHTTPServer wires the core server and its health probes.
func newHTTPServer(c *facts.Components, logger *slog.Logger) (*core.Server, error) {
	probes := []core.HealthProbe{core.NewMetadataProbe(c.Helper.EC2)}
	if p := core.NewSecretsStoreProbe(c.Store); p != nil {
		probes = append(probes, p)
	}
	return core.NewServer(c.Helper.EC2, logger, probes...)
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func runHTTPServer(ctx context.Context, c *facts.Components, addr string, logger *slog.Logger) error {
	srv, err := newHTTPServer(c, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}
