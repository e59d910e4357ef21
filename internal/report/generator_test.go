package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bikkkubo/news-bot/internal/runlog"
	"github.com/bikkkubo/news-bot/internal/types"
)

// scriptedGenerator fails text generation for prompts containing any
// failOn marker and otherwise returns a fixed body.
type scriptedGenerator struct {
	failOn    []string
	jsonErr   error
	textCalls int
}

func (s *scriptedGenerator) GenerateText(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error) {
	s.textCalls++
	for _, marker := range s.failOn {
		if strings.Contains(prompt, marker) {
			return "", errors.New("provider down")
		}
	}
	return "Generated Content", nil
}

func (s *scriptedGenerator) GenerateJSON(ctx context.Context, prompt, systemPrompt string, out any) error {
	if s.jsonErr != nil {
		return s.jsonErr
	}
	if t, ok := out.(*struct {
		Themes []string `json:"themes"`
	}); ok {
		t.Themes = []string{"rate policy"}
	}
	return nil
}

func testGenerator(gen *scriptedGenerator) *Generator {
	g := NewGenerator(gen, runlog.New())
	g.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return g
}

func testArticles(n int) []types.Article {
	articles := make([]types.Article, n)
	for i := range articles {
		articles[i] = types.Article{
			Title:       fmt.Sprintf("Headline %d", i+1),
			URL:         fmt.Sprintf("https://r.example/%d", i+1),
			Source:      "reuters",
			PublishedAt: "2024-06-01T08:00:00Z",
			Description: "desc",
		}
	}
	return articles
}

func testPoints() map[string]types.MarketPoint {
	return map[string]types.MarketPoint{
		"DOW": {Name: "ダウ平均株価", Symbol: "^DJI", Close: 40000, Change: 120, ChangePct: 0.3},
	}
}

func TestReportAssembly(t *testing.T) {
	g := testGenerator(&scriptedGenerator{})

	out, err := g.Report(context.Background(), testPoints(), testArticles(2))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.HasPrefix(out, "# 市場レポート\n発行日: 2024年06月01日") {
		t.Errorf("report missing header:\n%s", out[:min(len(out), 120)])
	}
	if !strings.Contains(out, "## 第2章 ピックアップニュース") {
		t.Error("report missing news section heading")
	}
	if !strings.Contains(out, "Generated Content") {
		t.Error("report missing generated body")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "以上") {
		t.Error("report missing closing line")
	}
	if strings.Count(out, "\n---\n") < 3 {
		t.Error("report sections should be separated by horizontal rules")
	}
}

func TestReportDeepDiveFailureDegradesToPlaceholder(t *testing.T) {
	gen := &scriptedGenerator{failOn: []string{"Headline 2"}}
	g := testGenerator(gen)

	out, err := g.Report(context.Background(), testPoints(), testArticles(3))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	want := "### 2. Headline 2\n\n*Error generating analysis.*\n\n---\n\n"
	if !strings.Contains(out, want) {
		t.Errorf("report missing placeholder for failed article:\n%s", out)
	}
	// The other two articles still get real sections.
	if strings.Count(out, "*Error generating analysis.*") != 1 {
		t.Error("exactly one placeholder expected")
	}
}

func TestReportCapsDeepDives(t *testing.T) {
	gen := &scriptedGenerator{}
	g := testGenerator(gen)

	if _, err := g.Report(context.Background(), testPoints(), testArticles(20)); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	// 15 deep dives + overview + conclusion.
	if gen.textCalls != maxDeepDives+2 {
		t.Errorf("textCalls = %d, want %d", gen.textCalls, maxDeepDives+2)
	}
}

func TestReportThemeFailureDoesNotAbort(t *testing.T) {
	gen := &scriptedGenerator{jsonErr: errors.New("bad json")}
	g := testGenerator(gen)

	if _, err := g.Report(context.Background(), testPoints(), testArticles(1)); err != nil {
		t.Fatalf("Report() should tolerate theme extraction failure, got %v", err)
	}
}

func TestReportOverviewFailureAborts(t *testing.T) {
	gen := &scriptedGenerator{failOn: []string{"market overview analysis"}}
	g := testGenerator(gen)

	if _, err := g.Report(context.Background(), testPoints(), testArticles(1)); err == nil {
		t.Fatal("Report() should fail when the market overview cannot be generated")
	}
}

func TestScriptPromptsWithArticleList(t *testing.T) {
	capture := &promptCapturingGenerator{}
	g := NewGenerator(capture, runlog.New())
	g.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	if _, err := g.Script(context.Background(), testArticles(2)); err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(capture.lastPrompt, "News 1: Headline 1") {
		t.Error("script prompt missing news list")
	}
	if !strings.Contains(capture.lastPrompt, "皆さん、こんにちは。タイツです。") {
		t.Error("script prompt missing persona opening")
	}
	if !strings.Contains(capture.lastPrompt, "2024年06月01日") {
		t.Error("script prompt missing run date")
	}
}

func TestSubtitlesPromptCarriesScript(t *testing.T) {
	capture := &promptCapturingGenerator{}
	g := NewGenerator(capture, runlog.New())

	if _, err := g.Subtitles(context.Background(), "皆さん、こんにちは。"); err != nil {
		t.Fatalf("Subtitles() error = %v", err)
	}
	if !strings.Contains(capture.lastPrompt, "皆さん、こんにちは。") {
		t.Error("subtitle prompt missing script body")
	}
	if !strings.Contains(capture.lastPrompt, "[字幕X]") {
		t.Error("subtitle prompt missing format instruction")
	}
}

type promptCapturingGenerator struct {
	lastPrompt string
}

func (p *promptCapturingGenerator) GenerateText(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error) {
	p.lastPrompt = prompt
	return "ok", nil
}

func (p *promptCapturingGenerator) GenerateJSON(ctx context.Context, prompt, systemPrompt string, out any) error {
	p.lastPrompt = prompt
	return nil
}
