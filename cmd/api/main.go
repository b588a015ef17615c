// @title           Todo API
// @version         1.0
// @description     Session-scoped todo list plus user and task management.
// @host            localhost:5001
// @BasePath        /api
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kriskris-27/the-dev-ops-mern/internal/app"
	"github.com/kriskris-27/the-dev-ops-mern/internal/config"
	"github.com/kriskris-27/the-dev-ops-mern/internal/logger"

	_ "github.com/kriskris-27/the-dev-ops-mern/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.IsProduction(), cfg.App.LogLevel)
	slog.SetDefault(log)
	log.Info("config loaded, connecting to DB and Redis", "env", cfg.App.Env, "version", cfg.App.Version)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("HTTP server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	if err := application.Close(ctx); err != nil {
		log.Error("app close", "error", err)
	}
}
