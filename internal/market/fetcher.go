// Package market fetches same-day index quotes from the Yahoo Finance
// chart API.
package market

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bikkkubo/news-bot/internal/api"
	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/store"
	"github.com/bikkkubo/news-bot/internal/trace"
	"github.com/bikkkubo/news-bot/internal/types"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Fetcher collects closing prices for a fixed set of instruments.
// A failed instrument is logged and omitted rather than failing the run.
type Fetcher struct {
	client      *api.Client
	instruments []store.Instrument
	baseURL     string
}

var _ interfaces.MarketCollector = (*Fetcher)(nil)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func NewFetcher(instruments []store.Instrument) *Fetcher {
	return &Fetcher{
		client:      api.NewClient(),
		instruments: instruments,
		baseURL:     defaultBaseURL,
	}
}

// Fetch returns a point per instrument, keyed by the instrument key.
// Instruments whose quote cannot be retrieved are absent from the map.
func (f *Fetcher) Fetch(ctx context.Context) map[string]types.MarketPoint {
	ctx, span := trace.StartSpan(ctx, "market-fetch")
	defer span.End()

	points := make(map[string]types.MarketPoint, len(f.instruments))
	for _, inst := range f.instruments {
		point, err := f.fetchOne(ctx, inst)
		if err != nil {
			logger.Warn(ctx, "Failed to fetch quote, skipping instrument",
				"symbol", inst.Symbol, "error", err)
			continue
		}
		points[inst.Key] = point
	}

	logger.Info(ctx, "Market snapshot collected", "requested", len(f.instruments), "fetched", len(points))
	return points
}

func (f *Fetcher) fetchOne(ctx context.Context, inst store.Instrument) (types.MarketPoint, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", f.baseURL, url.PathEscape(inst.Symbol))

	resp, err := f.client.GET(ctx, endpoint, api.YahooFinanceHeaders())
	if err != nil {
		return types.MarketPoint{}, err
	}

	var chart chartResponse
	if err := resp.ParseJSON(&chart); err != nil {
		return types.MarketPoint{}, fmt.Errorf("parsing chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		return types.MarketPoint{}, fmt.Errorf("chart API error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return types.MarketPoint{}, fmt.Errorf("no chart result for %s", inst.Symbol)
	}

	result := chart.Chart.Result[0]

	var closes []float64
	if len(result.Indicators.Quote) > 0 {
		for _, c := range result.Indicators.Quote[0].Close {
			if c != nil {
				closes = append(closes, *c)
			}
		}
	}
	if len(closes) == 0 {
		return types.MarketPoint{}, fmt.Errorf("no close data for %s", inst.Symbol)
	}

	latest := closes[len(closes)-1]
	var prev float64
	if len(closes) >= 2 {
		prev = closes[len(closes)-2]
	} else if result.Meta.PreviousClose != 0 {
		prev = result.Meta.PreviousClose
	} else {
		prev = result.Meta.ChartPreviousClose
	}
	if prev == 0 {
		return types.MarketPoint{}, fmt.Errorf("no previous close for %s", inst.Symbol)
	}

	change := latest - prev
	return types.MarketPoint{
		Name:      inst.Name,
		Symbol:    inst.Symbol,
		Close:     latest,
		Change:    change,
		ChangePct: change / prev * 100,
	}, nil
}
