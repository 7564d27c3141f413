package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
	"NewsNotify/internal/source"
)

const defaultMaxArticles = 10

// Fetcher pulls articles from RSS/Atom feed documents.
type Fetcher struct {
	parser      *gofeed.Parser
	maxArticles int
	logger      *slog.Logger
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// New wires an HTTP client into a feed parser; maxArticles caps how
// many entries a single fetch may return.
func New(client *http.Client, maxArticles int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxArticles <= 0 {
		maxArticles = defaultMaxArticles
	}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Fetcher{parser: parser, maxArticles: maxArticles, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (f *Fetcher) Kind() string {
	return domain.SourceKindFeed
}

// FetchArticles parses the source's feed document and returns entries
// carrying both a title and a link, capped at maxArticles. Entries
// missing either field are skipped; relative links resolve against the
// source base URL.
func (f *Fetcher) FetchArticles(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	doc, err := f.parser.ParseURLWithContext(src.BaseURL, ctx)
	if doc == nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}
	if err != nil {
		// A partially parsed document still carries usable entries.
		f.warn("feed parsed with problems", "source", src.Name, "error", err)
	}

	articles := make([]domain.Article, 0, f.maxArticles)
	for _, item := range doc.Items {
		if len(articles) >= f.maxArticles {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		articles = append(articles, domain.Article{
			Title: title,
			URL:   source.ResolveLink(src.BaseURL, link),
		})
	}

	f.debug("feed fetch complete", "source", src.Name, "count", len(articles))
	return articles, nil
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
