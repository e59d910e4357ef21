// Command report runs the pipeline once from the terminal, with no
// Slack delivery. Useful for local testing and manual report runs.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/bikkkubo/news-bot/internal/llm"
	"github.com/bikkkubo/news-bot/internal/llm/llmobs"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/market"
	"github.com/bikkkubo/news-bot/internal/news"
	"github.com/bikkkubo/news-bot/internal/pipeline"
	"github.com/bikkkubo/news-bot/internal/search"
	"github.com/bikkkubo/news-bot/internal/storage"
	"github.com/bikkkubo/news-bot/internal/store"
	"github.com/bikkkubo/news-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()
	defer trace.Shutdown(ctx)

	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	svc, err := llm.New(ctx, cfg)
	must(err)
	gen := llmobs.Wrap(svc)

	runner := pipeline.NewRunner(
		gen,
		market.NewFetcher(cfg.Instruments),
		news.NewCurator(cfg, search.NewDuckDuckGo(), svc),
		storage.NewLocalStore(cfg.OutputDir),
		nil,
		nil,
		"",
	)

	progress := func(text string) {
		fmt.Println(text)
	}
	if err := runner.Execute(ctx, progress, ""); err != nil {
		log.Fatal(err)
	}
}
