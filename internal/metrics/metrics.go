// Package metrics collects Prometheus metrics for collection runs and
// notification delivery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"NewsNotify/internal/ports"
)

// Collector implements ports.Metrics on a Prometheus registry.
type Collector struct {
	runs              prometheus.Counter
	runDuration       prometheus.Histogram
	articlesFetched   prometheus.Counter
	articlesNew       prometheus.Counter
	articlesPersisted prometheus.Counter
	dispatchSuccess   prometheus.Counter
	dispatchFailure   prometheus.Counter
	translateFailures prometheus.Counter
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates the collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_runs_total",
			Help: "Completed collection runs.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsnotify_run_duration_seconds",
			Help:    "Wall-clock duration of a collection run.",
			Buckets: prometheus.DefBuckets,
		}),
		articlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_articles_fetched_total",
			Help: "Articles returned by source fetches.",
		}),
		articlesNew: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_articles_new_total",
			Help: "Articles that survived deduplication.",
		}),
		articlesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_articles_persisted_total",
			Help: "Seen records newly written.",
		}),
		dispatchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_dispatch_success_total",
			Help: "Webhook deliveries that succeeded.",
		}),
		dispatchFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_dispatch_failure_total",
			Help: "Webhook deliveries that exhausted retries or were rejected.",
		}),
		translateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsnotify_translation_failures_total",
			Help: "Title translations that degraded to the original text.",
		}),
	}

	reg.MustRegister(
		c.runs,
		c.runDuration,
		c.articlesFetched,
		c.articlesNew,
		c.articlesPersisted,
		c.dispatchSuccess,
		c.dispatchFailure,
		c.translateFailures,
	)

	return c
}

// ObserveRun records one completed run and its duration.
func (c *Collector) ObserveRun(duration time.Duration) {
	c.runs.Inc()
	c.runDuration.Observe(duration.Seconds())
}

// AddFetched counts articles returned by fetches.
func (c *Collector) AddFetched(n int) {
	c.articlesFetched.Add(float64(n))
}

// AddNew counts articles that passed deduplication.
func (c *Collector) AddNew(n int) {
	c.articlesNew.Add(float64(n))
}

// AddPersisted counts newly written seen records.
func (c *Collector) AddPersisted(n int) {
	c.articlesPersisted.Add(float64(n))
}

// IncDispatchSuccess counts one successful webhook delivery.
func (c *Collector) IncDispatchSuccess() {
	c.dispatchSuccess.Inc()
}

// IncDispatchFailure counts one failed webhook delivery.
func (c *Collector) IncDispatchFailure() {
	c.dispatchFailure.Inc()
}

// IncTranslationFailure counts one degraded title translation.
func (c *Collector) IncTranslationFailure() {
	c.translateFailures.Inc()
}
