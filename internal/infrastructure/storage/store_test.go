package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsNotify/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPersistIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	article := domain.Article{Title: "A", URL: "https://ex.com/a"}

	assert.True(t, store.Persist(ctx, article, "site"))
	assert.False(t, store.Persist(ctx, article, "site"), "second persist must report no new row")
	assert.Equal(t, 1, store.Count(ctx, ""))
}

func TestPersistTranslatedArticleMatchesOriginal(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	original := domain.Article{Title: "Breaking", URL: "https://ex.com/a"}
	require.True(t, store.Persist(ctx, original, "site"))

	translated := domain.Article{Title: "速報", URL: "https://ex.com/a", OriginalTitle: "Breaking"}
	assert.True(t, store.Exists(ctx, translated))
	assert.False(t, store.Persist(ctx, translated, "site"))
}

func TestFilterNewPreservesOrder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	articles := []domain.Article{
		{Title: "A", URL: "https://ex.com/a"},
		{Title: "B", URL: "https://ex.com/b"},
		{Title: "C", URL: "https://ex.com/c"},
	}
	require.True(t, store.Persist(ctx, articles[1], "site"))

	fresh := store.FilterNew(ctx, articles)
	require.Len(t, fresh, 2)
	assert.Equal(t, "A", fresh[0].Title)
	assert.Equal(t, "C", fresh[1].Title)
}

func TestPersistBatchCountsOnlyNewRows(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	articles := []domain.Article{
		{Title: "A", URL: "https://ex.com/a"},
		{Title: "B", URL: "https://ex.com/b"},
	}
	require.True(t, store.Persist(ctx, articles[0], "site"))

	assert.Equal(t, 1, store.PersistBatch(ctx, articles, "site"))
	assert.Equal(t, 2, store.Count(ctx, "site"))
}

func TestCountPerSource(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	store.Persist(ctx, domain.Article{Title: "A", URL: "https://ex.com/a"}, "alpha")
	store.Persist(ctx, domain.Article{Title: "B", URL: "https://ex.com/b"}, "alpha")
	store.Persist(ctx, domain.Article{Title: "C", URL: "https://ex.com/c"}, "beta")

	assert.Equal(t, 3, store.Count(ctx, ""))
	assert.Equal(t, 2, store.Count(ctx, "alpha"))
	assert.Equal(t, 1, store.Count(ctx, "beta"))
	assert.Equal(t, 0, store.Count(ctx, "gamma"))
}

func TestCleanupRespectsRetentionCutoff(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	store.Persist(ctx, domain.Article{Title: "fresh", URL: "https://ex.com/fresh"}, "site")

	// Backdate one record past the cutoff.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO articles (fingerprint, title, url, source_name, created_at)
		 VALUES ('old-fp', 'old', 'https://ex.com/old', 'site', datetime('now', '-40 days'))`)
	require.NoError(t, err)

	deleted := store.Cleanup(ctx, 30)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, store.Count(ctx, ""))
	assert.True(t, store.Exists(ctx, domain.Article{Title: "fresh", URL: "https://ex.com/fresh"}))
}

func TestCreateSourceRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	src := domain.Source{Name: "hn", Kind: domain.SourceKindFeed, BaseURL: "https://ex.com/rss", Active: true}
	_, err := store.CreateSource(ctx, src)
	require.NoError(t, err)

	_, err = store.CreateSource(ctx, src)
	assert.True(t, errors.Is(err, domain.ErrDuplicateName), "got %v", err)
}

func TestListActiveSourcesFiltersAndOrders(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateSource(ctx, domain.Source{
		Name: "first", Kind: domain.SourceKindFeed, BaseURL: "https://a.example", Active: true,
	})
	require.NoError(t, err)
	second, err := store.CreateSource(ctx, domain.Source{
		Name: "second", Kind: domain.SourceKindSelector, BaseURL: "https://b.example",
		Selector: "a.headline", Active: true, NeedsTranslation: true, TargetWebhookIDs: "1,2",
	})
	require.NoError(t, err)
	require.NoError(t, store.SetSourceActive(ctx, first, false))

	active, err := store.ListActiveSources(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second, active[0].ID)
	assert.Equal(t, "a.headline", active[0].Selector)
	assert.True(t, active[0].NeedsTranslation)
	assert.Equal(t, "1,2", active[0].TargetWebhookIDs)
}

func TestSourceRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSource(ctx, domain.Source{
		Name: "blog", Kind: domain.SourceKindFeed, BaseURL: "https://blog.example/feed",
		Avatar: "https://blog.example/icon.png", Active: true,
	})
	require.NoError(t, err)

	got, err := store.GetSource(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "blog", got.Name)
	assert.Equal(t, "https://blog.example/icon.png", got.Avatar)
	assert.NotEmpty(t, got.CreatedAt)

	require.NoError(t, store.DeleteSource(ctx, id))
	_, err = store.GetSource(ctx, id)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestWebhookCatalog(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTarget(ctx, domain.Webhook{
		Name: "team-chat", Endpoint: "https://hooks.example/abc",
		ServiceKind: domain.ServiceKindDiscord, Active: true,
	})
	require.NoError(t, err)

	_, err = store.CreateTarget(ctx, domain.Webhook{
		Name: "team-chat", Endpoint: "https://hooks.example/other",
		ServiceKind: domain.ServiceKindSlack, Active: true,
	})
	assert.True(t, errors.Is(err, domain.ErrDuplicateName), "got %v", err)

	active, err := store.ListActiveTargets(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.ServiceKindDiscord, active[0].ServiceKind)

	require.NoError(t, store.SetTargetActive(ctx, id, false))
	active, err = store.ListActiveTargets(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, store.DeleteTarget(ctx, id))
	assert.True(t, errors.Is(store.DeleteTarget(ctx, id), domain.ErrNotFound))
}

func TestSeenStoreDefaultsWhenDatabaseFails(t *testing.T) {
	t.Parallel()

	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	ctx := context.Background()
	article := domain.Article{Title: "A", URL: "https://ex.com/a"}
	require.True(t, store.Persist(ctx, article, "site"))

	require.NoError(t, store.Close())

	// A broken database degrades to safe defaults instead of errors:
	// unknown articles count as unseen, writes report nothing written.
	assert.False(t, store.Exists(ctx, article))
	assert.False(t, store.Persist(ctx, article, "site"))
	assert.Equal(t, 0, store.PersistBatch(ctx, []domain.Article{article}, "site"))
	assert.Equal(t, 0, store.Count(ctx, ""))
	assert.Equal(t, 0, store.Cleanup(ctx, 30))

	fresh := store.FilterNew(ctx, []domain.Article{article})
	assert.Len(t, fresh, 1, "articles unreadable from the store stay eligible for delivery")
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	assert.True(t, errors.Is(store.SetSourceActive(ctx, 42, true), domain.ErrNotFound))
	assert.True(t, errors.Is(store.SetTargetActive(ctx, 42, false), domain.ErrNotFound))
}
