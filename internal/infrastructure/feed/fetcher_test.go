package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsNotify/internal/domain"
)

func serveRSS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func rssDocument(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>test feed</title>` + items + `</channel></rss>`
}

func TestFetchArticlesResolvesRelativeLinks(t *testing.T) {
	t.Parallel()

	server := serveRSS(t, rssDocument(`
<item><title>First</title><link>/a</link></item>
<item><title>Second</title><link>/b</link></item>`))

	fetcher := New(server.Client(), 10, nil)
	articles, err := fetcher.FetchArticles(context.Background(), domain.Source{
		Name: "test", Kind: domain.SourceKindFeed, BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "First" || articles[0].URL != server.URL+"/a" {
		t.Errorf("first article = %+v", articles[0])
	}
	if articles[1].Title != "Second" || articles[1].URL != server.URL+"/b" {
		t.Errorf("second article = %+v", articles[1])
	}
}

func TestFetchArticlesKeepsAbsoluteLinks(t *testing.T) {
	t.Parallel()

	server := serveRSS(t, rssDocument(`
<item><title>Elsewhere</title><link>https://other.example/story</link></item>`))

	fetcher := New(server.Client(), 10, nil)
	articles, err := fetcher.FetchArticles(context.Background(), domain.Source{
		Name: "test", BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(articles) != 1 || articles[0].URL != "https://other.example/story" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestFetchArticlesSkipsIncompleteItems(t *testing.T) {
	t.Parallel()

	server := serveRSS(t, rssDocument(`
<item><title>No link</title></item>
<item><link>/no-title</link></item>
<item><title>  </title><link>/blank-title</link></item>
<item><title>Kept</title><link>/kept</link></item>`))

	fetcher := New(server.Client(), 10, nil)
	articles, err := fetcher.FetchArticles(context.Background(), domain.Source{
		Name: "test", BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Kept" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestFetchArticlesHonorsCap(t *testing.T) {
	t.Parallel()

	items := ""
	for i := 0; i < 15; i++ {
		items += fmt.Sprintf(`<item><title>Story %d</title><link>/story-%d</link></item>`, i, i)
	}
	server := serveRSS(t, rssDocument(items))

	fetcher := New(server.Client(), 10, nil)
	articles, err := fetcher.FetchArticles(context.Background(), domain.Source{
		Name: "test", BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(articles) != 10 {
		t.Errorf("got %d articles, want 10", len(articles))
	}
	if articles[0].Title != "Story 0" {
		t.Errorf("first article = %+v", articles[0])
	}
}

func TestFetchArticlesReportsUnreachableFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	fetcher := New(server.Client(), 10, nil)
	_, err := fetcher.FetchArticles(context.Background(), domain.Source{
		Name: "broken", BaseURL: server.URL,
	})
	if err == nil {
		t.Fatal("expected error for unreachable feed")
	}
}
