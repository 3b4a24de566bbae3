package main

import (
	"context"
	"fmt"
	"time"

	"vocabsheet/internal/handler"
	"vocabsheet/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// dueViewInterval is how often the bot rewrites the due-review sheet
const dueViewInterval = 24 * time.Hour

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram front end",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return runBot(ctx, a)
	}),
}

func runBot(ctx context.Context, a *app) error {
	logger := a.logger

	if err := a.cfg.RequireBot(); err != nil {
		return err
	}

	logger.Info("Starting vocabulary bot")

	authService := service.NewAuthService(a.users, a.cfg.Bot.Password, logger)

	// Open the table up front so configuration problems surface before polling starts
	if _, err := a.table.Open(ctx); err != nil {
		return err
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  a.cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram bot initialized")

	h := handler.NewHandler(bot, authService, a.vocab, a.review, a.stats, a.cfg.Lookup.TranslateTarget != "", logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start due view job in background
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go runDueViewJob(jobCtx, a.stats, a.cfg.DueSheetName, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
	return nil
}

// runDueViewJob periodically rebuilds the dedup cache and the due-review sheet
func runDueViewJob(ctx context.Context, statsService *service.StatsService, title string, logger *zap.Logger) {
	// Run once at startup
	if err := statsService.RefreshDueView(ctx, title); err != nil {
		logger.Error("Failed to run initial due view refresh", zap.Error(err))
	}

	ticker := time.NewTicker(dueViewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Due view job stopped")
			return
		case <-ticker.C:
			logger.Info("Running scheduled due view refresh")
			if err := statsService.RefreshDueView(ctx, title); err != nil {
				logger.Error("Failed to run scheduled due view refresh", zap.Error(err))
			}
		}
	}
}
