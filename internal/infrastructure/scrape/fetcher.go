package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
	"NewsNotify/internal/source"
)

const (
	defaultMaxArticles = 10
	// Some sites reject obvious bot agents, so the scraper presents a
	// browser-like one.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Fetcher extracts articles from HTML pages with a configured CSS
// selector matching anchor nodes.
type Fetcher struct {
	client      *http.Client
	maxArticles int
	logger      *slog.Logger
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// New wires an HTTP client; maxArticles caps how many matches a single
// fetch may return.
func New(client *http.Client, maxArticles int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxArticles <= 0 {
		maxArticles = defaultMaxArticles
	}
	return &Fetcher{client: client, maxArticles: maxArticles, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (f *Fetcher) Kind() string {
	return domain.SourceKindSelector
}

// FetchArticles downloads the source page and selects anchors matching
// the source selector. Matches need a href attribute and non-empty
// visible text; relative links resolve against the source base URL.
func (f *Fetcher) FetchArticles(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	if strings.TrimSpace(src.Selector) == "" {
		return nil, fmt.Errorf("source %s: selector is not configured", src.Name)
	}

	doc, err := f.fetchDocument(ctx, src.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", src.Name, err)
	}

	articles := make([]domain.Article, 0, f.maxArticles)
	doc.Find(src.Selector).EachWithBreak(func(i int, anchor *goquery.Selection) bool {
		if len(articles) >= f.maxArticles {
			return false
		}
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			return true
		}
		articles = append(articles, domain.Article{
			Title: title,
			URL:   source.ResolveLink(src.BaseURL, strings.TrimSpace(href)),
		})
		return true
	})

	f.debug("scrape complete", "source", src.Name, "count", len(articles))
	return articles, nil
}

func (f *Fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
