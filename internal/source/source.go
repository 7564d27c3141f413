package source

import (
	"fmt"
	"strings"

	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
)

// Registry keeps a mapping from source kinds to their fetch strategies.
type Registry struct {
	fetchers map[string]ports.SourceFetcher
}

var _ ports.FetcherRegistry = (*Registry)(nil)

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]ports.SourceFetcher{}}
}

// Register adds or replaces a fetch strategy.
func (r *Registry) Register(fetcher ports.SourceFetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]ports.SourceFetcher{}
	}
	r.fetchers[fetcher.Kind()] = fetcher
}

// Resolve returns the strategy for a source kind or rejects the kind.
func (r *Registry) Resolve(kind string) (ports.SourceFetcher, error) {
	if fetcher, ok := r.fetchers[kind]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSourceKind, kind)
}

// ResolveLink normalizes a candidate article link. Absolute URLs pass
// through untouched; relative ones are joined to the source base URL
// with exactly one path separator.
func ResolveLink(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	baseSlash := strings.HasSuffix(baseURL, "/")
	hrefSlash := strings.HasPrefix(href, "/")
	switch {
	case baseSlash && hrefSlash:
		return baseURL + strings.TrimPrefix(href, "/")
	case baseSlash || hrefSlash:
		return baseURL + href
	default:
		return baseURL + "/" + href
	}
}
