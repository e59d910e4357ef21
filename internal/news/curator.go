// Package news collects business headlines and curates them down to a
// clean, enriched set of domestic market stories.
package news

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/store"
	"github.com/bikkkubo/news-bot/internal/trace"
	"github.com/bikkkubo/news-bot/internal/types"
)

const searchPlaceholder = "No additional context available."

// tickerExtractor resolves the primary ticker symbol mentioned in a
// headline. Best effort; an empty result falls back to the title.
type tickerExtractor interface {
	ExtractTicker(ctx context.Context, text string) string
}

// Curator fetches headlines from the allow-listed sources and runs
// them through the filter stages before enriching the survivors with
// follow-up search context.
type Curator struct {
	headlines *headlinesClient
	searcher  interfaces.Searcher
	tickers   tickerExtractor
	content   *contentFetcher
	cfg       *store.Config

	now   func() time.Time
	delay func()
}

var _ interfaces.NewsCollector = (*Curator)(nil)

func NewCurator(cfg *store.Config, searcher interfaces.Searcher, tickers tickerExtractor) *Curator {
	return &Curator{
		headlines: newHeadlinesClient(cfg.Keys.NewsAPIKey),
		searcher:  searcher,
		tickers:   tickers,
		content:   newContentFetcher(),
		cfg:       cfg,
		now:       time.Now,
		delay: func() {
			time.Sleep(time.Duration(1000+rand.Intn(1000)) * time.Millisecond)
		},
	}
}

// Fetch collects, filters, and enriches headlines. A headlines API
// failure yields an empty slice; the caller decides whether an empty
// result aborts the run.
func (c *Curator) Fetch(ctx context.Context) []types.Article {
	ctx, span := trace.StartSpan(ctx, "news-curate")
	defer span.End()

	raw, err := c.headlines.topHeadlines(ctx, c.cfg.News.AllowedSources, c.cfg.News.PageSize)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch headlines", err)
		return nil
	}

	curated := c.curate(ctx, raw)
	logger.Info(ctx, "Headlines curated", "raw", len(raw), "kept", len(curated))

	limit := c.cfg.News.MaxArticles
	if limit > len(curated) {
		limit = len(curated)
	}
	for i := 0; i < limit; i++ {
		c.enrich(ctx, &curated[i])
		if i < limit-1 {
			c.delay()
		}
	}
	return curated
}

// curate applies the filter stages in order: source allow-list,
// recency, topic exclusion, geography, then exact-title dedup.
func (c *Curator) curate(ctx context.Context, articles []types.Article) []types.Article {
	allowed := make(map[string]bool, len(c.cfg.News.AllowedSources))
	for _, s := range c.cfg.News.AllowedSources {
		allowed[strings.ToLower(s)] = true
	}

	cutoff := c.now().Add(-time.Duration(c.cfg.News.MaxAgeHours) * time.Hour)
	seen := make(map[string]bool)

	var kept []types.Article
	for _, a := range articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		if !allowed[strings.ToLower(a.Source)] {
			logger.Debug(ctx, "Dropping article from unexpected source", "source", a.Source)
			continue
		}
		if a.PublishedAt != "" {
			published, err := time.Parse(time.RFC3339, a.PublishedAt)
			if err != nil {
				// Keep the article; a broken timestamp alone is not
				// reason enough to lose a story from a trusted source.
				logger.Warn(ctx, "Unparseable publication timestamp, keeping article",
					"title", a.Title, "published_at", a.PublishedAt)
			} else if published.Before(cutoff) {
				continue
			}
		}

		title := strings.ToLower(a.Title)
		if containsAny(title, c.cfg.News.ExcludedKeywords) {
			continue
		}
		if containsAny(title, c.cfg.News.NonDomesticKeywords) && !containsAny(title, c.cfg.News.DomesticSafeKeywords) {
			continue
		}
		if seen[a.Title] {
			continue
		}
		seen[a.Title] = true
		kept = append(kept, a)
	}
	return kept
}

// enrich attaches follow-up search context to an article and, when the
// description is too thin to analyze, pulls the article body.
func (c *Curator) enrich(ctx context.Context, a *types.Article) {
	if len(a.Description) < 100 && a.URL != "" {
		if body, err := c.content.fetch(ctx, a.URL); err == nil && body != "" {
			a.Content = body
		} else if err != nil {
			logger.Debug(ctx, "Failed to fetch article body", "url", a.URL, "error", err)
		}
	}

	query := a.Title
	if c.tickers != nil {
		if ticker := c.tickers.ExtractTicker(ctx, a.Title); ticker != "" {
			query = ticker
		}
	}

	result, err := c.searcher.Search(ctx, query)
	if err != nil || result == "" {
		if err != nil {
			logger.Warn(ctx, "Search enrichment failed", "title", a.Title, "error", err)
		}
		a.SearchContext = searchPlaceholder
		return
	}
	a.SearchContext = result
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
