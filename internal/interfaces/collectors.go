package interfaces

import (
	"context"

	"github.com/bikkkubo/news-bot/internal/types"
)

// MarketCollector fetches index snapshots. Per-instrument failures are
// logged and omitted; the mapping never contains a partially populated
// point.
type MarketCollector interface {
	Fetch(ctx context.Context) map[string]types.MarketPoint
}

// NewsCollector performs the live headline query and filter pipeline.
// A failed source query yields an empty slice, not an error.
type NewsCollector interface {
	Fetch(ctx context.Context) []types.Article
}

// Searcher retrieves web-search context text for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}
