package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/abelzeko/beton-control/internal/config"
	"github.com/abelzeko/beton-control/internal/integration/docx"
	"github.com/abelzeko/beton-control/internal/logging"
	"github.com/abelzeko/beton-control/internal/repository"
	"github.com/abelzeko/beton-control/internal/scheduler"
	"github.com/abelzeko/beton-control/internal/usecases"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Starting scheduled exporter...")

	// Initialize repository
	repo, err := repository.NewSQLiteRecordRepository(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	renderer := docx.NewRenderer(cfg.Documents.RequestTemplate, cfg.Documents.ActTemplate, logger)
	useCase := usecases.NewRecordUseCase(repo, renderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot immediately on startup, then on schedule
	job := scheduler.NewSnapshotJob(useCase, cfg.Export.Dir, logger)
	if err := job.Run(ctx, cfg.Export.Schedule); err != nil {
		logger.Error("Exporter stopped with error", zap.Error(err))
	}
}
