package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bikkkubo/news-bot/internal/types"
)

type stubGenerator struct {
	textErr error
	calls   int
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt, systemPrompt string, temperature float32) (string, error) {
	s.calls++
	if s.textErr != nil {
		return "", s.textErr
	}
	return "Generated Content", nil
}

func (s *stubGenerator) GenerateJSON(ctx context.Context, prompt, systemPrompt string, out any) error {
	s.calls++
	return nil
}

type stubMarket struct{}

func (stubMarket) Fetch(ctx context.Context) map[string]types.MarketPoint {
	return map[string]types.MarketPoint{
		"DOW": {Name: "ダウ平均株価", Symbol: "^DJI", Close: 40000, Change: 120, ChangePct: 0.3},
	}
}

type stubNews struct {
	articles []types.Article
}

func (s *stubNews) Fetch(ctx context.Context) []types.Article { return s.articles }

type memStore struct {
	saved map[string]string
}

func newMemStore() *memStore { return &memStore{saved: map[string]string{}} }

func (m *memStore) Save(content, filename, dir string) (string, error) {
	path := filepath.Join("/out", dir, filename)
	m.saved[path] = content
	return path, nil
}

type recordingNotifier struct {
	uploads   int
	uploaded  []string
	reactions []string
	uploadErr error
}

func (n *recordingNotifier) Upload(paths []string, destination, token string) error {
	n.uploads++
	n.uploaded = append(n.uploaded, paths...)
	return n.uploadErr
}

func (n *recordingNotifier) React(name, token string) error {
	n.reactions = append(n.reactions, name)
	return nil
}

type recordingArchiver struct {
	paths []string
	err   error
}

func (a *recordingArchiver) Upload(path string) (string, error) {
	a.paths = append(a.paths, path)
	return "file-id", a.err
}

func someArticles() []types.Article {
	return []types.Article{
		{Title: "Fed holds rates", URL: "https://r.example/1", Source: "reuters", PublishedAt: "2024-06-01T08:00:00Z", Description: "d"},
		{Title: "Chipmaker beats estimates", URL: "https://r.example/2", Source: "reuters", PublishedAt: "2024-06-01T07:00:00Z", Description: "d"},
	}
}

func TestExecuteFullRun(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	archiver := &recordingArchiver{}
	var progress []string

	r := NewRunner(&stubGenerator{}, stubMarket{}, &stubNews{articles: someArticles()}, store, archiver, notifier, "C123")
	err := r.Execute(context.Background(), func(text string) { progress = append(progress, text) }, "171717.0001")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(store.saved) != 4 {
		t.Errorf("saved %d artifacts, want 4 (report, script, subtitles, log)", len(store.saved))
	}
	var haveReport bool
	for path, content := range store.saved {
		if strings.HasSuffix(path, "_report.md") {
			haveReport = true
			if !strings.Contains(content, "Generated Content") {
				t.Error("report artifact missing generated body")
			}
		}
	}
	if !haveReport {
		t.Error("no report artifact saved")
	}

	if notifier.uploads != 1 {
		t.Errorf("notifier.Upload called %d times, want exactly 1", notifier.uploads)
	}
	if len(notifier.uploaded) != 4 {
		t.Errorf("uploaded %d paths, want the full artifact set of 4", len(notifier.uploaded))
	}
	if len(archiver.paths) != 4 {
		t.Errorf("archived %d paths, want 4", len(archiver.paths))
	}
	if len(notifier.reactions) != 1 || notifier.reactions[0] != "white_check_mark" {
		t.Errorf("reactions = %v, want single success reaction", notifier.reactions)
	}
	if len(progress) == 0 || !strings.Contains(progress[len(progress)-1], "完了") {
		t.Errorf("final progress message should announce completion, got %v", progress)
	}
}

func TestExecuteZeroNewsAborts(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	gen := &stubGenerator{}
	var progress []string

	r := NewRunner(gen, stubMarket{}, &stubNews{}, store, nil, notifier, "C123")
	err := r.Execute(context.Background(), func(text string) { progress = append(progress, text) }, "171717.0001")
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil on empty news", err)
	}

	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0 when no news survives curation", gen.calls)
	}
	if notifier.uploads != 0 {
		t.Error("nothing should be uploaded on an aborted run")
	}
	var warned bool
	for _, p := range progress {
		if strings.Contains(p, "ニュースが見つかりませんでした") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("progress should carry the no-news warning, got %v", progress)
	}
}

func TestExecuteGenerationFailure(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	var progress []string

	r := NewRunner(&stubGenerator{textErr: errors.New("all providers failed")}, stubMarket{}, &stubNews{articles: someArticles()}, store, nil, notifier, "C123")
	err := r.Execute(context.Background(), func(text string) { progress = append(progress, text) }, "171717.0001")
	if err == nil {
		t.Fatal("Execute() should return the generation error")
	}

	if len(notifier.reactions) != 1 || notifier.reactions[0] != "x" {
		t.Errorf("reactions = %v, want single failure reaction", notifier.reactions)
	}
	var reportedError bool
	for _, p := range progress {
		if strings.Contains(p, "エラーが発生しました") {
			reportedError = true
		}
	}
	if !reportedError {
		t.Errorf("progress should carry the error message, got %v", progress)
	}

	var logSaved bool
	for path := range store.saved {
		if strings.HasSuffix(path, "_log.txt") {
			logSaved = true
		}
	}
	if !logSaved {
		t.Error("run log should be saved even on failure")
	}
}

func TestExecuteArchiveFailureIsBestEffort(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	archiver := &recordingArchiver{err: errors.New("drive quota")}

	r := NewRunner(&stubGenerator{}, stubMarket{}, &stubNews{articles: someArticles()}, store, archiver, notifier, "C123")
	err := r.Execute(context.Background(), func(string) {}, "171717.0001")
	if err != nil {
		t.Fatalf("Execute() error = %v, archive failures must not fail the run", err)
	}
	if notifier.uploads != 1 {
		t.Error("delivery should still happen when archiving fails")
	}
}

func TestExecuteUploadFailure(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{uploadErr: errors.New("slack down")}

	r := NewRunner(&stubGenerator{}, stubMarket{}, &stubNews{articles: someArticles()}, store, nil, notifier, "C123")
	err := r.Execute(context.Background(), func(string) {}, "171717.0001")
	if err == nil {
		t.Fatal("Execute() should fail when artifact delivery fails")
	}
	if got := notifier.reactions; len(got) != 1 || got[0] != "x" {
		t.Errorf("reactions = %v, want failure reaction", got)
	}
}
