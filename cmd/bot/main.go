package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/slackbot"
	"github.com/bikkkubo/news-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	must(initializeSystem())
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "Tracer shutdown failed", "error", err)
		}
	}()

	cfg, err := loadConfig(ctx)
	must(err)

	bot, err := slackbot.New(cfg)
	must(err)

	runner, err := initializeRunner(ctx, cfg, bot)
	must(err)

	if cfg.Schedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Schedule, func() {
			logger.Info(ctx, "Starting scheduled run", "schedule", cfg.Schedule)
			progress := func(text string) {
				logger.Info(ctx, "Scheduled run progress", "message", text)
			}
			if err := runner.Execute(ctx, progress, ""); err != nil {
				logger.ErrorWithErr(ctx, "Scheduled run failed", err)
			}
		})
		must(err)
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info(ctx, "Scheduler started", "schedule", cfg.Schedule)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	logger.Info(ctx, "Bot started")
	if err := bot.Listen(ctx, runner.Execute); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithErr(ctx, "Slack listener stopped", err)
	}
}
