package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"device-registry/internal/api/rest"
	"device-registry/internal/api/websocket"
	"device-registry/internal/auth"
	"device-registry/internal/config"
	"device-registry/internal/devices"
	"device-registry/internal/observability/metrics"
	"device-registry/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Config loaded successfully")

	db, err := storage.NewPostgresClient(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	authService := auth.NewService(db, cfg.JWT, logger)
	deviceService := devices.NewService(db)

	// One-time seeding: default admin and sample devices.
	if err := authService.EnsureAdmin(ctx, cfg.Bootstrap); err != nil {
		logger.Fatal("Failed to ensure admin user", zap.Error(err))
	}
	if err := devices.SeedSampleDevices(ctx, db, logger); err != nil {
		logger.Fatal("Failed to seed devices", zap.Error(err))
	}

	metrics.Register(db, logger)

	wsHub := websocket.NewHub(logger, authService)
	go wsHub.Run()

	server := rest.NewServer(cfg, authService, deviceService, wsHub, logger)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("Device registry started successfully")

	// Graceful Shutdown auf Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Device registry stopped successfully")
}
