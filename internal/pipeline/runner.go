// Package pipeline orchestrates a full report run: collect, generate,
// save, archive, notify.
package pipeline

import (
	"context"
	"fmt"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/report"
	"github.com/bikkkubo/news-bot/internal/runlog"
	"github.com/bikkkubo/news-bot/internal/trace"
)

// Runner wires the collectors, generator, and delivery targets for a
// run. Safe for concurrent runs; all per-run state lives in Execute.
type Runner struct {
	llm         interfaces.Generator
	market      interfaces.MarketCollector
	news        interfaces.NewsCollector
	store       interfaces.ArtifactStore
	archiver    interfaces.Archiver
	notifier    interfaces.Notifier
	destination string
}

func NewRunner(
	llm interfaces.Generator,
	market interfaces.MarketCollector,
	news interfaces.NewsCollector,
	store interfaces.ArtifactStore,
	archiver interfaces.Archiver,
	notifier interfaces.Notifier,
	destination string,
) *Runner {
	return &Runner{
		llm:         llm,
		market:      market,
		news:        news,
		store:       store,
		archiver:    archiver,
		notifier:    notifier,
		destination: destination,
	}
}

// Execute runs the full pipeline once. progress receives user-facing
// status messages; token correlates delivery back to the trigger
// (Slack thread timestamp). The process never panics outward; any
// run-level failure is reported through progress and the failure
// reaction, then returned.
func (r *Runner) Execute(ctx context.Context, progress interfaces.ProgressFunc, token string) (err error) {
	ctx, span := trace.StartSpan(ctx, "pipeline-execute")
	defer span.End()

	rl := runlog.New()
	stamp := rl.Start().Format("20060102_15:04")

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pipeline panic: %v", rec)
			r.handleFailure(ctx, rl, stamp, progress, token, err)
		}
	}()

	rl.Log("Starting news report run")

	logger.Checkpoint(ctx, "collection-started", "run", stamp)
	progress("⏳ 株価データを取得中...")
	points := r.market.Fetch(ctx)
	rl.Log(fmt.Sprintf("Stock data fetched: %d indices", len(points)))

	progress("⏳ ニュースデータを収集中 (Reuters, Bloomberg, WSJ)...")
	articles := r.news.Fetch(ctx)
	rl.Log(fmt.Sprintf("News items fetched: %d", len(articles)))
	logger.Checkpoint(ctx, "news-collected", "run", stamp, "articles", len(articles))

	if len(articles) == 0 {
		rl.Warn("No news items, aborting run")
		progress("⚠️ ニュースが見つかりませんでした。処理を中止します。")
		return nil
	}

	gen := report.NewGenerator(r.llm, rl)

	logger.Checkpoint(ctx, "report-started", "run", stamp)
	progress("⏳ レポートと深堀り分析を生成中...")
	reportMD, err := gen.Report(ctx, points, articles)
	if err != nil {
		r.handleFailure(ctx, rl, stamp, progress, token, err)
		return err
	}

	logger.Checkpoint(ctx, "script-started", "run", stamp)
	progress("⏳ 動画用台本と字幕を生成中 (タイツ風)...")
	script, err := gen.Script(ctx, articles)
	if err != nil {
		r.handleFailure(ctx, rl, stamp, progress, token, err)
		return err
	}
	subtitles, err := gen.Subtitles(ctx, script)
	if err != nil {
		r.handleFailure(ctx, rl, stamp, progress, token, err)
		return err
	}

	logger.Checkpoint(ctx, "saving", "run", stamp)
	progress("⏳ ファイルを保存・アップロード中...")

	var paths []string
	for _, artifact := range []struct {
		content  string
		filename string
	}{
		{reportMD, stamp + "_report.md"},
		{script, stamp + "_script.txt"},
		{subtitles, stamp + "_subtitles.txt"},
	} {
		path, err := r.store.Save(artifact.content, artifact.filename, stamp)
		if err != nil {
			err = fmt.Errorf("saving %s: %w", artifact.filename, err)
			r.handleFailure(ctx, rl, stamp, progress, token, err)
			return err
		}
		paths = append(paths, path)
	}

	rl.Log("Artifacts saved")
	logPath, err := r.store.Save(rl.String(), stamp+"_log.txt", stamp)
	if err != nil {
		err = fmt.Errorf("saving run log: %w", err)
		r.handleFailure(ctx, rl, stamp, progress, token, err)
		return err
	}
	paths = append(paths, logPath)

	if r.archiver != nil {
		for _, path := range paths {
			if _, err := r.archiver.Upload(path); err != nil {
				logger.Warn(ctx, "Archive upload failed", "path", path, "error", err)
			}
		}
	}

	if r.notifier != nil {
		if err := r.notifier.Upload(paths, r.destination, token); err != nil {
			err = fmt.Errorf("delivering artifacts: %w", err)
			r.handleFailure(ctx, rl, stamp, progress, token, err)
			return err
		}
	}

	logger.Checkpoint(ctx, "done", "run", stamp)
	progress("✅ レポート生成が完了しました！")
	r.react(ctx, "white_check_mark", token)
	return nil
}

// handleFailure reports a run-level error once: progress message,
// failure reaction, and a best-effort save of the run log.
func (r *Runner) handleFailure(ctx context.Context, rl *runlog.Logger, stamp string, progress interfaces.ProgressFunc, token string, runErr error) {
	logger.ErrorWithErr(ctx, "Pipeline run failed", runErr, "run", stamp)
	rl.Error(fmt.Sprintf("Critical failure: %v", runErr))

	progress(fmt.Sprintf("❌ エラーが発生しました: %v", runErr))
	r.react(ctx, "x", token)

	if _, err := r.store.Save(rl.String(), stamp+"_log.txt", stamp); err != nil {
		logger.Warn(ctx, "Failed to save run log after failure", "error", err)
	}
}

func (r *Runner) react(ctx context.Context, name, token string) {
	if r.notifier == nil || token == "" {
		return
	}
	if err := r.notifier.React(name, token); err != nil {
		logger.Warn(ctx, "Failed to add reaction", "name", name, "error", err)
	}
}
