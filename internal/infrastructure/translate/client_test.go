package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsNotify/internal/config"
	"NewsNotify/internal/domain"
)

type countingMetrics struct {
	translationFailures atomic.Int64
}

func (m *countingMetrics) ObserveRun(time.Duration) {}
func (m *countingMetrics) AddFetched(int)           {}
func (m *countingMetrics) AddNew(int)               {}
func (m *countingMetrics) AddPersisted(int)         {}
func (m *countingMetrics) IncDispatchSuccess()      {}
func (m *countingMetrics) IncDispatchFailure()      {}
func (m *countingMetrics) IncTranslationFailure()   { m.translationFailures.Add(1) }

func newTranslateServer(t *testing.T, calls *atomic.Int64, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "en|ja", r.URL.Query().Get("langpair"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server, metrics *countingMetrics) *Client {
	return NewClient(config.TranslationConfig{
		Endpoint: server.URL,
		Email:    "ops@example.com",
	}, server.Client(), metrics, nil)
}

func TestTranslateTitleSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := newTranslateServer(t, &calls,
		`{"responseStatus":200,"responseData":{"translatedText":"速報ニュース"}}`, http.StatusOK)
	client := newTestClient(server, &countingMetrics{})

	in := domain.Article{Title: "Breaking news", URL: "https://ex.com/a"}
	out := client.TranslateTitle(context.Background(), in)

	assert.Equal(t, "速報ニュース", out.Title)
	assert.Equal(t, "Breaking news", out.OriginalTitle)
	assert.Equal(t, in.URL, out.URL)
	assert.Equal(t, int64(1), calls.Load())

	// Translation must not change the dedup identity.
	require.Equal(t, in.Fingerprint(), out.Fingerprint())
}

func TestTranslateTitleSkipsJapaneseTitles(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := newTranslateServer(t, &calls, `{}`, http.StatusOK)
	client := newTestClient(server, &countingMetrics{})

	in := domain.Article{Title: "新しい記事", URL: "https://ex.com/a"}
	out := client.TranslateTitle(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Zero(t, calls.Load(), "service must not be called for Japanese titles")
}

func TestTranslateTitleSkipsBlankAndTranslated(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := newTranslateServer(t, &calls, `{}`, http.StatusOK)
	client := newTestClient(server, &countingMetrics{})

	blank := domain.Article{Title: "   ", URL: "https://ex.com/a"}
	assert.Equal(t, blank, client.TranslateTitle(context.Background(), blank))

	done := domain.Article{Title: "速報", URL: "https://ex.com/b", OriginalTitle: "Breaking"}
	assert.Equal(t, done, client.TranslateTitle(context.Background(), done))

	assert.Zero(t, calls.Load())
}

func TestTranslateTitleServiceRejection(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := newTranslateServer(t, &calls,
		`{"responseStatus":403,"responseDetails":"quota exceeded"}`, http.StatusOK)
	metrics := &countingMetrics{}
	client := newTestClient(server, metrics)

	in := domain.Article{Title: "Breaking news", URL: "https://ex.com/a"}
	out := client.TranslateTitle(context.Background(), in)

	assert.Equal(t, in, out, "failed translation must return the input unchanged")
	assert.Equal(t, int64(1), metrics.translationFailures.Load())
}

func TestTranslateTitleHTTPFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := newTranslateServer(t, &calls, `oops`, http.StatusBadGateway)
	metrics := &countingMetrics{}
	client := newTestClient(server, metrics)

	in := domain.Article{Title: "Breaking news", URL: "https://ex.com/a"}
	out := client.TranslateTitle(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Equal(t, int64(1), metrics.translationFailures.Load())
}

func TestTranslateTitleEmptyTranslation(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := newTranslateServer(t, &calls,
		`{"responseStatus":200,"responseData":{"translatedText":"  "}}`, http.StatusOK)
	metrics := &countingMetrics{}
	client := newTestClient(server, metrics)

	in := domain.Article{Title: "Breaking news", URL: "https://ex.com/a"}
	out := client.TranslateTitle(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Equal(t, int64(1), metrics.translationFailures.Load())
}
