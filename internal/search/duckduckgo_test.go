package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSearchFormatsResults(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `<html><body>
			<div class="result">
				<a class="result__a" href="https://example.com/a">Nvidia extends rally</a>
				<div class="result__snippet">Shares rose again on data center demand.</div>
			</div>
			<div class="result">
				<a class="result__a" href="https://example.com/b">Analysts raise targets</a>
				<div class="result__snippet">Price targets lifted across the street.</div>
			</div>
		</body></html>`)
	}))
	defer srv.Close()

	d := NewDuckDuckGo()
	d.endpoint = srv.URL + "/html/"

	out, err := d.Search(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !strings.HasSuffix(gotQuery, querySuffix) {
		t.Errorf("query = %q, want the financial news suffix appended", gotQuery)
	}
	want := "Source: Nvidia extends rally (https://example.com/a)\nSummary: Shares rose again on data center demand."
	if !strings.Contains(out, want) {
		t.Errorf("Search() output missing formatted block:\n%s", out)
	}
	if strings.Count(out, "Source:") != 2 {
		t.Errorf("Search() should contain one block per result, got:\n%s", out)
	}
	if !strings.Contains(out, "\n\n") {
		t.Error("blocks should be separated by a blank line")
	}
}

func TestSearchCapsResults(t *testing.T) {
	var page strings.Builder
	page.WriteString("<html><body>")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&page, `<div class="result"><a class="result__a" href="https://example.com/%d">Result %d</a><div class="result__snippet">s</div></div>`, i, i)
	}
	page.WriteString("</body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page.String())
	}))
	defer srv.Close()

	d := NewDuckDuckGo()
	d.endpoint = srv.URL + "/html/"

	out, err := d.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := strings.Count(out, "Source:"); got != maxResults {
		t.Errorf("Search() returned %d results, want capped at %d", got, maxResults)
	}
}

func TestResolveRedirect(t *testing.T) {
	wrapped := "//duckduckgo.com/l/?uddg=" + url.QueryEscape("https://example.com/story") + "&rut=abc"
	if got := resolveRedirect(wrapped); got != "https://example.com/story" {
		t.Errorf("resolveRedirect() = %q, want unwrapped target", got)
	}
	if got := resolveRedirect("https://example.com/direct"); got != "https://example.com/direct" {
		t.Errorf("resolveRedirect() should pass through direct links, got %q", got)
	}
}
