package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bikkkubo/news-bot/internal/api"
	"github.com/bikkkubo/news-bot/internal/types"
)

const defaultHeadlinesURL = "https://newsapi.org/v2"

// headlinesClient is a typed client for the NewsAPI top-headlines
// endpoint restricted to a fixed set of sources.
type headlinesClient struct {
	client  *api.Client
	apiKey  string
	baseURL string
}

type headlinesResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"articles"`
}

func newHeadlinesClient(apiKey string) *headlinesClient {
	return &headlinesClient{
		client:  api.NewClient(),
		apiKey:  apiKey,
		baseURL: defaultHeadlinesURL,
	}
}

// topHeadlines fetches up to pageSize headlines from the given sources.
func (h *headlinesClient) topHeadlines(ctx context.Context, sources []string, pageSize int) ([]types.Article, error) {
	params := url.Values{}
	params.Set("sources", strings.Join(sources, ","))
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	endpoint := fmt.Sprintf("%s/top-headlines?%s", h.baseURL, params.Encode())

	resp, err := h.client.GET(ctx, endpoint, map[string]string{"X-Api-Key": h.apiKey})
	if err != nil {
		return nil, fmt.Errorf("fetching headlines: %w", err)
	}

	var body headlinesResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("parsing headlines response: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("headlines API error %s: %s", body.Code, body.Message)
	}

	articles := make([]types.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, types.Article{
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      firstNonEmpty(a.Source.ID, a.Source.Name),
			Description: a.Description,
			Content:     a.Content,
		})
	}
	return articles, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
