package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/abelzeko/beton-control/internal/api"
	"github.com/abelzeko/beton-control/internal/config"
	"github.com/abelzeko/beton-control/internal/intake"
	"github.com/abelzeko/beton-control/internal/logging"
	"github.com/abelzeko/beton-control/internal/repository"
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
	logger.Info("Starting concrete control bot...")

	if cfg.Telegram.Token == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Initialize repository
	repo, err := repository.NewSQLiteRecordRepository(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Initialize Telegram bot
	telegramBot, err := api.NewTelegramBot(cfg.Telegram.Token, intake.NewFlow(repo, logger), logger)
	if err != nil {
		logger.Fatal("Failed to initialize Telegram bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := telegramBot.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
}
