package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	httphandler "github.com/ericfisherdev/shadowstats/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/shadowstats/internal/adapter/driving/web"
)

// runServe serves the JSON API and the dashboard until ctx is cancelled.
func runServe(ctx context.Context, a *app) error {
	apiHandler := httphandler.NewHandler(a.stats, a.lookups, a.credentials, a.provider, a.logger)
	webHandler := webhandler.NewHandler(a.stats, a.lookups, a.credentials, a.provider, a.logger)

	handler := httphandler.NewServeMux(apiHandler, a.logger, a.cfg.AllowedOrigins, func(mux *http.ServeMux) {
		webhandler.RegisterRoutes(mux, webHandler)
	})

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      a.cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	a.logger.Info("shadowstats started",
		"listen_addr", a.cfg.ListenAddr,
		"db_path", a.cfg.DBPath,
		"language_concurrency", a.cfg.LanguageConcurrency,
		"http_cache", a.cfg.HTTPCache,
		"env_token", a.cfg.HasGitHubToken(),
	)

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
