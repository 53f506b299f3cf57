package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/league-admin-backend/internal/app"
	"github.com/nekogravitycat/league-admin-backend/internal/config"
	"github.com/nekogravitycat/league-admin-backend/internal/db"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.Get()

	// Migrate before anything touches the schema
	if err := db.RunMigrations(cfg.DBDSN, cfg.MigrationsDir, lg.Named("migrate")); err != nil {
		lg.Fatalw("failed to run migrations", "error", err)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptionsFrom(cfg.DBMaxConns, cfg.DBMaxConnIdle), lg.Named("db"))
	if err != nil {
		lg.Fatalw("failed to connect to db", "error", err)
	}
	defer pool.Close()

	container, err := app.NewContainer(ctx, cfg, pool, lg)
	if err != nil {
		lg.Fatalw("failed to build application", "error", err)
	}
	defer container.Close()

	// Background work
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		if err := container.Listener.Run(ctx); err != nil {
			lg.Errorw("registration listener stopped", "error", err)
		}
	}()
	container.Scheduler.Start()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		lg.Infow("server running", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("server error", "error", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	lg.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Warnw("server forced to shutdown", "error", err)
	}

	select {
	case <-container.Scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		lg.Warn("scheduled jobs still running at shutdown")
	}

	select {
	case <-listenerDone:
	case <-shutdownCtx.Done():
		lg.Warn("registration listener did not stop in time")
	}

	lg.Info("server exited gracefully")
}
