package ports

import (
	"context"
	"time"

	"NewsNotify/internal/domain"
)

// SeenStore is the persistent fingerprint set used for deduplication.
// Storage errors are handled at the store layer and converted to
// conservative defaults: unknown articles are treated as unseen, so a
// possible duplicate delivery is preferred over silently dropping new
// content.
type SeenStore interface {
	// Exists reports whether the article's fingerprint was persisted
	// before. Read-only.
	Exists(ctx context.Context, article domain.Article) bool
	// FilterNew returns the order-preserving subsequence of articles
	// whose fingerprints are not stored yet.
	FilterNew(ctx context.Context, articles []domain.Article) []domain.Article
	// Persist inserts the article if absent and reports whether a new
	// row was written. An existing fingerprint is not an error.
	Persist(ctx context.Context, article domain.Article, sourceName string) bool
	// PersistBatch applies Persist semantics per article and returns the
	// number of newly inserted rows. Individual row failures do not
	// abort the batch.
	PersistBatch(ctx context.Context, articles []domain.Article, sourceName string) int
	// Count returns the stored record count, per source when sourceName
	// is non-empty.
	Count(ctx context.Context, sourceName string) int
	// Cleanup removes records older than the retention cutoff and
	// returns how many were deleted. Best effort.
	Cleanup(ctx context.Context, retentionDays int) int
}

// Catalog manages the configured sources and webhook targets.
type Catalog interface {
	ListActiveSources(ctx context.Context) ([]domain.Source, error)
	CreateSource(ctx context.Context, source domain.Source) (int64, error)
	GetSource(ctx context.Context, id int64) (domain.Source, error)
	SetSourceActive(ctx context.Context, id int64, active bool) error
	DeleteSource(ctx context.Context, id int64) error

	ListActiveTargets(ctx context.Context) ([]domain.Webhook, error)
	CreateTarget(ctx context.Context, target domain.Webhook) (int64, error)
	GetTarget(ctx context.Context, id int64) (domain.Webhook, error)
	SetTargetActive(ctx context.Context, id int64, active bool) error
	DeleteTarget(ctx context.Context, id int64) error
}

// SourceFetcher pulls a bounded list of articles for one source.
type SourceFetcher interface {
	Kind() string
	FetchArticles(ctx context.Context, source domain.Source) ([]domain.Article, error)
}

// FetcherRegistry resolves a fetch strategy by source kind.
type FetcherRegistry interface {
	Resolve(kind string) (SourceFetcher, error)
}

// Translator rewrites an article title in the target language. Best
// effort: every failure mode degrades to returning the input unchanged.
type Translator interface {
	TranslateTitle(ctx context.Context, article domain.Article) domain.Article
}

// Dispatcher posts articles to a single webhook target with bounded
// retry and reports overall success.
type Dispatcher interface {
	Send(ctx context.Context, target domain.Webhook, source domain.Source, articles []domain.Article) bool
}

// Scheduler drives recurring pipeline runs.
type Scheduler interface {
	Start(job func()) error
	Stop(ctx context.Context) error
}

// Metrics receives pipeline and dispatch observations.
type Metrics interface {
	ObserveRun(duration time.Duration)
	AddFetched(n int)
	AddNew(n int)
	AddPersisted(n int)
	IncDispatchSuccess()
	IncDispatchFailure()
	IncTranslationFailure()
}
