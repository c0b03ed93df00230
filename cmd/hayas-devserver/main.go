// Command hayas-devserver runs the simulated order backend: the REST
// endpoints and realtime rooms the storefront client talks to during
// local development.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/api"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/config"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/devserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logCfg := config.LoggerConfig{
		Level:  envOr("LOG_LEVEL", "info"),
		Format: envOr("LOG_FORMAT", "console"),
	}
	logger := config.NewLogger(logCfg)
	logger.Info().Msg("starting hayas dev backend")

	window := 2 * time.Minute
	if v := os.Getenv("HAYAS_ORDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			window = d
		}
	}

	srv := devserver.New(devserver.Options{
		TimeoutWindow: window,
		Partners: map[string]api.PartnerDetails{
			"partner@hayas.app": {
				Name:  "Demo Partner",
				Phone: "+910000000000",
				Email: "partner@hayas.app",
			},
		},
	}, logger)
	defer srv.Close()

	addr := envOr("HAYAS_DEV_ADDR", "0.0.0.0:8080")
	server := &http.Server{
		Addr:        addr,
		Handler:     srv.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("address", addr).Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
