package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abelzeko/beton-control/internal/api"
	"github.com/abelzeko/beton-control/internal/intake"
	"github.com/abelzeko/beton-control/internal/integration/docx"
	"github.com/abelzeko/beton-control/internal/repository"
	"github.com/abelzeko/beton-control/internal/scheduler"
	"github.com/abelzeko/beton-control/internal/usecases"
)

var timeNow = time.Now

func (a *app) botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram intake bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), true, false)
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var noBot bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the scheduled exporter until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), !noBot, true)
		},
	}
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "Run only the scheduled exporter")
	return cmd
}

func (a *app) serve(parent context.Context, withBot, withExporter bool) error {
	if withBot && a.cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewSQLiteRecordRepository(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	g, ctx := errgroup.WithContext(ctx)

	if withBot {
		bot, err := api.NewTelegramBot(a.cfg.Telegram.Token, intake.NewFlow(repo, a.logger), a.logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return bot.Start(ctx) })
	}

	if withExporter {
		renderer := docx.NewRenderer(a.cfg.Documents.RequestTemplate, a.cfg.Documents.ActTemplate, a.logger)
		job := scheduler.NewSnapshotJob(usecases.NewRecordUseCase(repo, renderer, a.logger), a.cfg.Export.Dir, a.logger)
		g.Go(func() error { return job.Run(ctx, a.cfg.Export.Schedule) })
	}

	a.logger.Info("Service started", zap.Bool("bot", withBot), zap.Bool("exporter", withExporter))
	err = g.Wait()
	a.logger.Info("Service stopped")
	return err
}
