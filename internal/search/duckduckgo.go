// Package search provides follow-up web search for curated headlines.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/logger"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	querySuffix    = " latest update stock price financial news"
	maxResults     = 5
	searchTimeout  = 15 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DuckDuckGo scrapes the HTML search frontend. No API key required.
type DuckDuckGo struct {
	endpoint string
}

var _ interfaces.Searcher = (*DuckDuckGo)(nil)

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{endpoint: searchEndpoint}
}

type result struct {
	title   string
	link    string
	snippet string
}

// Search returns up to five results formatted as a source/summary
// block per result, separated by blank lines.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	c := colly.NewCollector()
	c.SetRequestTimeout(searchTimeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	var results []result
	c.OnHTML(".result", func(e *colly.HTMLElement) {
		if len(results) >= maxResults {
			return
		}
		title := strings.TrimSpace(e.ChildText(".result__a"))
		link := resolveRedirect(e.ChildAttr(".result__a", "href"))
		snippet := strings.TrimSpace(e.ChildText(".result__snippet"))
		if title == "" || link == "" {
			return
		}
		results = append(results, result{title: title, link: link, snippet: snippet})
	})

	var visitErr error
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	target := d.endpoint + "?q=" + url.QueryEscape(query+querySuffix)
	if err := c.Visit(target); err != nil {
		return "", fmt.Errorf("searching %q: %w", query, err)
	}
	c.Wait()
	if visitErr != nil {
		return "", fmt.Errorf("searching %q: %w", query, visitErr)
	}

	if len(results) == 0 {
		logger.Debug(ctx, "No search results", "query", query)
		return "", nil
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Source: %s (%s)\nSummary: %s", r.title, r.link, r.snippet)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// resolveRedirect unwraps the uddg redirect parameter the HTML
// frontend wraps outbound links in.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}
