package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfworx/auth-service/config"
	"github.com/dfworx/auth-service/internal/app"
	"github.com/dfworx/auth-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("auth service stopped", "error", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// 0. Load Config
	env := os.Getenv("APP_ENV")
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.Log.Level)
	slog.SetDefault(log)

	// 1. Setup
	gin.SetMode(cfg.Server.Mode)
	container := app.NewContainer(cfg, log)
	defer func() {
		if closeErr := container.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close resources: %w", closeErr))
		}
	}()

	// 2. Fail fast on secrets, hasher settings and the database
	if _, err := container.Tokens.Load(); err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}
	handler, err := app.NewRouter(cfg, container)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	// 3. Run
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.RequestTimeout(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting auth service", "addr", srv.Addr, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to run server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
