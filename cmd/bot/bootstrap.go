package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/llm"
	"github.com/bikkkubo/news-bot/internal/llm/llmobs"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/market"
	"github.com/bikkkubo/news-bot/internal/news"
	"github.com/bikkkubo/news-bot/internal/pipeline"
	"github.com/bikkkubo/news-bot/internal/search"
	"github.com/bikkkubo/news-bot/internal/slackbot"
	"github.com/bikkkubo/news-bot/internal/storage"
	"github.com/bikkkubo/news-bot/internal/store"
	"github.com/bikkkubo/news-bot/internal/trace"
)

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the validated configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeGenerator builds the provider cascade with observability
func initializeGenerator(ctx context.Context, cfg *store.Config) (interfaces.Generator, *llm.Service, error) {
	svc, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return llmobs.Wrap(svc), svc, nil
}

// initializeCollectors builds the market and news collectors
func initializeCollectors(cfg *store.Config, tickers *llm.Service) (interfaces.MarketCollector, interfaces.NewsCollector) {
	searcher := search.NewDuckDuckGo()
	return market.NewFetcher(cfg.Instruments), news.NewCurator(cfg, searcher, tickers)
}

// initializeArchiver builds the Drive archiver when credentials are
// configured; archiving is optional
func initializeArchiver(ctx context.Context, cfg *store.Config) interfaces.Archiver {
	if cfg.Keys.DriveCredentialsFile == "" || cfg.Keys.DriveFolderID == "" {
		logger.Info(ctx, "Drive archiving disabled - no credentials configured")
		return nil
	}
	archiver, err := storage.NewDriveArchiver(ctx, cfg.Keys.DriveCredentialsFile, cfg.Keys.DriveFolderID)
	if err != nil {
		logger.Warn(ctx, "Drive archiver unavailable, continuing without archiving", "error", err)
		return nil
	}
	return archiver
}

// initializeRunner wires the full pipeline for Slack-triggered runs
func initializeRunner(ctx context.Context, cfg *store.Config, bot *slackbot.Bot) (*pipeline.Runner, error) {
	gen, svc, err := initializeGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	marketCollector, newsCollector := initializeCollectors(cfg, svc)
	localStore := storage.NewLocalStore(cfg.OutputDir)
	archiver := initializeArchiver(ctx, cfg)

	return pipeline.NewRunner(
		gen,
		marketCollector,
		newsCollector,
		localStore,
		archiver,
		bot,
		cfg.Keys.SlackChannel,
	), nil
}
