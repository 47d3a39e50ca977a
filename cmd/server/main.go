package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reasonrank/reasongraph/internal/api"
	"github.com/reasonrank/reasongraph/internal/config"
)

func main() {
	_ = config.Load()

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// DATABASE_URL is optional: without it the engine runs in memory.
	var pool *pgxpool.Pool
	if dbURL := config.DatabaseURL(); dbURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")
	} else {
		logger.Info("no DATABASE_URL set, running in memory")
	}

	app := api.NewApp(pool, logger)

	if pool != nil {
		if err := app.Engine.Load(ctx); err != nil {
			logger.Fatal("failed to load graph from database", zap.Error(err))
		}
	}

	// Start background services
	if app.Flusher != nil {
		app.Flusher.Start()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	if app.Flusher != nil {
		app.Flusher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}
