package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/mathdoku/internal/api"
	"github.com/vytor/mathdoku/internal/config"
	"github.com/vytor/mathdoku/internal/db"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/repository/sqlite"
	"github.com/vytor/mathdoku/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("MathDoku Statistics Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("stats_grid_size=[%d,%d]", cfg.StatsMinGridSize, cfg.StatsMaxGridSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories and services
	gridRepo := sqlite.NewGridRepository(database.DB)
	attemptRepo := sqlite.NewSolvingAttemptRepository(database.DB)
	statsRepo := sqlite.NewStatisticsRepository(database.DB)

	srv := &api.Server{
		GridService:       services.NewGridService(gridRepo, attemptRepo),
		StatisticsService: services.NewStatisticsService(statsRepo, attemptRepo),
		DB:                database.DB,
		MinGridSize:       cfg.StatsMinGridSize,
		MaxGridSize:       cfg.StatsMaxGridSize,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("MathDoku Statistics Server Stopped")
	log.Info("===========================================")
}
