package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// run starts the continuous dispatcher and the HTTP server, then blocks
// until ctx is cancelled (SIGINT/SIGTERM) and both have shut down.
func (app *application) run(ctx context.Context) error {
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		app.dispatcher.Run(ctx)
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      app.setupRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	// Let in-flight dispatch work write its terminal state.
	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		app.logger.Warn("dispatcher did not stop before shutdown deadline")
	}

	if err := app.db.Close(); err != nil {
		app.logger.Warn("failed to close database connection", "error", err)
	}

	app.logger.Info("shutdown complete")
	return nil
}
