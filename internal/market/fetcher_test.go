package market

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bikkkubo/news-bot/internal/store"
)

func chartJSON(meta string, closes string) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":%s,"indicators":{"quote":[{"close":%s}]}}],"error":null}}`, meta, closes)
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc, instruments []store.Instrument) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := NewFetcher(instruments)
	f.baseURL = srv.URL
	return f
}

func TestFetchComputesChange(t *testing.T) {
	instruments := []store.Instrument{{Key: "dow", Name: "ダウ平均株価", Symbol: "^DJI"}}
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "%5EDJI") && !strings.Contains(r.URL.Path, "^DJI") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, chartJSON(`{"regularMarketPrice":110,"previousClose":100}`, `[100,110]`))
	}, instruments)

	points := f.Fetch(context.Background())
	point, ok := points["dow"]
	if !ok {
		t.Fatal("expected a point for key dow")
	}
	if point.Close != 110 {
		t.Errorf("Close = %v, want 110", point.Close)
	}
	if point.Change != 10 {
		t.Errorf("Change = %v, want 10", point.Change)
	}
	if math.Abs(point.ChangePct-10.0) > 1e-9 {
		t.Errorf("ChangePct = %v, want 10.0", point.ChangePct)
	}
	if point.Name != "ダウ平均株価" {
		t.Errorf("Name = %q, want instrument display name", point.Name)
	}
}

func TestFetchSingleCloseFallsBackToMeta(t *testing.T) {
	instruments := []store.Instrument{{Key: "nikkei", Name: "日経平均株価", Symbol: "^N225"}}
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(`{"regularMarketPrice":40000,"previousClose":39500}`, `[40000]`))
	}, instruments)

	points := f.Fetch(context.Background())
	point, ok := points["nikkei"]
	if !ok {
		t.Fatal("expected a point for key nikkei")
	}
	if point.Change != 500 {
		t.Errorf("Change = %v, want 500", point.Change)
	}
	want := 500.0 / 39500 * 100
	if math.Abs(point.ChangePct-want) > 1e-9 {
		t.Errorf("ChangePct = %v, want %v", point.ChangePct, want)
	}
}

func TestFetchSkipsNullCloses(t *testing.T) {
	instruments := []store.Instrument{{Key: "sp500", Name: "S&P 500", Symbol: "^GSPC"}}
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(`{"regularMarketPrice":5000,"previousClose":4900}`, `[4800,null,4900,null,5000]`))
	}, instruments)

	points := f.Fetch(context.Background())
	point, ok := points["sp500"]
	if !ok {
		t.Fatal("expected a point for key sp500")
	}
	if point.Close != 5000 {
		t.Errorf("Close = %v, want 5000", point.Close)
	}
	if point.Change != 100 {
		t.Errorf("Change = %v, want 100 (previous non-null close 4900)", point.Change)
	}
}

func TestFetchOmitsFailedInstrument(t *testing.T) {
	instruments := []store.Instrument{
		{Key: "dow", Name: "ダウ平均株価", Symbol: "^DJI"},
		{Key: "nasdaq", Name: "ナスダック総合指数", Symbol: "^IXIC"},
	}
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "IXIC") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, chartJSON(`{"regularMarketPrice":110,"previousClose":100}`, `[100,110]`))
	}, instruments)

	points := f.Fetch(context.Background())
	if _, ok := points["dow"]; !ok {
		t.Error("healthy instrument should still be present")
	}
	if _, ok := points["nasdaq"]; ok {
		t.Error("failed instrument should be omitted, not zero-valued")
	}
}

func TestFetchOmitsEmptyQuoteData(t *testing.T) {
	instruments := []store.Instrument{{Key: "dow", Name: "ダウ平均株価", Symbol: "^DJI"}}
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(`{"regularMarketPrice":0,"previousClose":0}`, `[null,null]`))
	}, instruments)

	points := f.Fetch(context.Background())
	if len(points) != 0 {
		t.Errorf("expected no points for all-null closes, got %d", len(points))
	}
}
