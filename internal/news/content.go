package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	contentTimeout  = 15 * time.Second
	maxContentChars = 3000
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// contentFetcher scrapes the body text of an article page. Used when a
// headline's description is too short to analyze on its own.
type contentFetcher struct{}

func newContentFetcher() *contentFetcher {
	return &contentFetcher{}
}

func (f *contentFetcher) fetch(ctx context.Context, url string) (string, error) {
	c := colly.NewCollector()
	c.SetRequestTimeout(contentTimeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	var paragraphs []string
	c.OnHTML("article", func(e *colly.HTMLElement) {
		e.DOM.Find("p").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); len(text) > 40 {
				paragraphs = append(paragraphs, text)
			}
		})
	})
	// Some outlets have no article element; fall back to page-level
	// paragraphs when nothing was collected.
	c.OnHTML("body", func(e *colly.HTMLElement) {
		if len(paragraphs) > 0 {
			return
		}
		e.DOM.Find("p").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); len(text) > 40 {
				paragraphs = append(paragraphs, text)
			}
		})
	})

	var visitErr error
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("visiting %s: %w", url, err)
	}
	c.Wait()
	if visitErr != nil {
		return "", fmt.Errorf("fetching %s: %w", url, visitErr)
	}

	body := strings.Join(paragraphs, "\n")
	if len(body) > maxContentChars {
		body = body[:maxContentChars]
	}
	return body, nil
}
