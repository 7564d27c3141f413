package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
)

// PipelineDeps wires all driven adapters into the collection pipeline.
type PipelineDeps struct {
	Catalog    ports.Catalog
	Seen       ports.SeenStore
	Fetchers   ports.FetcherRegistry
	Translator ports.Translator
	Dispatcher ports.Dispatcher
	Metrics    ports.Metrics
	Logger     *slog.Logger

	Concurrency      int
	RetentionDays    int
	CleanupThreshold int
}

// Pipeline implements the ingest-dedup-notify workflow. One Run
// processes every active source concurrently and joins before
// reporting; failures stay inside the run and never reach the caller.
type Pipeline struct {
	catalog    ports.Catalog
	seen       ports.SeenStore
	fetchers   ports.FetcherRegistry
	translator ports.Translator
	dispatcher ports.Dispatcher
	metrics    ports.Metrics
	logger     *slog.Logger

	concurrency      int
	retentionDays    int
	cleanupThreshold int
}

// RunSummary aggregates per-source outcomes of one run.
type RunSummary struct {
	Sources   int
	Succeeded int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	retention := deps.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	threshold := deps.CleanupThreshold
	if threshold <= 0 {
		threshold = 1000
	}
	return &Pipeline{
		catalog:          deps.Catalog,
		seen:             deps.Seen,
		fetchers:         deps.Fetchers,
		translator:       deps.Translator,
		dispatcher:       deps.Dispatcher,
		metrics:          deps.Metrics,
		logger:           deps.Logger,
		concurrency:      concurrency,
		retentionDays:    retention,
		cleanupThreshold: threshold,
	}
}

// sourceJob pairs a source with its resolved fetch strategy.
type sourceJob struct {
	source  domain.Source
	fetcher ports.SourceFetcher
}

// Run executes one full collection pass over all active sources.
func (p *Pipeline) Run(ctx context.Context) RunSummary {
	started := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.ObserveRun(time.Since(started))
		}
	}()

	p.info("collection run started")

	total := p.seen.Count(ctx, "")
	p.info("store statistics", "stored_articles", total)
	if total > p.cleanupThreshold {
		p.seen.Cleanup(ctx, p.retentionDays)
	}

	targets, err := p.catalog.ListActiveTargets(ctx)
	if err != nil {
		p.error("load webhook targets", "error", err)
		return RunSummary{}
	}

	sources, err := p.catalog.ListActiveSources(ctx)
	if err != nil {
		p.error("load sources", "error", err)
		return RunSummary{}
	}
	if len(sources) == 0 {
		p.warn("no active sources configured")
		return RunSummary{}
	}

	// Sources whose kind has no registered strategy are rejected here
	// and excluded from the run instead of aborting it.
	jobs := make([]sourceJob, 0, len(sources))
	for _, src := range sources {
		fetcher, err := p.fetchers.Resolve(src.Kind)
		if err != nil {
			p.error("skip source", "source", src.Name, "error", err)
			continue
		}
		jobs = append(jobs, sourceJob{source: src, fetcher: fetcher})
	}

	results := make([]bool, len(jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.concurrency)

	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, job sourceJob) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.processSource(ctx, job, targets)
		}(i, job)
	}
	wg.Wait()

	summary := RunSummary{Sources: len(jobs)}
	for _, ok := range results {
		if ok {
			summary.Succeeded++
		}
	}

	for _, job := range jobs {
		p.info("source statistics",
			"source", job.source.Name,
			"stored_articles", p.seen.Count(ctx, job.source.Name))
	}

	p.info("collection run complete",
		"succeeded", summary.Succeeded,
		"sources", summary.Sources)
	return summary
}

// processSource runs the per-source state machine:
// fetch, dedup, optional translate, dispatch, persist.
func (p *Pipeline) processSource(ctx context.Context, job sourceJob, targets []domain.Webhook) bool {
	src := job.source
	p.debug("processing source", "source", src.Name, "kind", src.Kind)

	fetched, err := job.fetcher.FetchArticles(ctx, src)
	if err != nil {
		// Fetch problems never fail a source; there is simply nothing
		// to deliver this run.
		p.error("fetch failed", "source", src.Name, "error", err)
		return true
	}
	if p.metrics != nil {
		p.metrics.AddFetched(len(fetched))
	}
	if len(fetched) == 0 {
		p.info("no articles fetched", "source", src.Name)
		return true
	}

	fresh := p.seen.FilterNew(ctx, fetched)
	if len(fresh) == 0 {
		p.info("no new articles", "source", src.Name,
			"fetched", len(fetched), "new", 0)
		return true
	}
	p.info("new articles found", "source", src.Name,
		"fetched", len(fetched), "new", len(fresh))
	if p.metrics != nil {
		p.metrics.AddNew(len(fresh))
	}

	if src.NeedsTranslation && p.translator != nil {
		p.debug("translating titles", "source", src.Name)
		for i := range fresh {
			fresh[i] = p.translator.TranslateTitle(ctx, fresh[i])
		}
	}

	resolved := src.ResolveTargets(targets)
	if len(resolved) == 0 {
		p.error("no webhook targets resolved", "source", src.Name)
		return false
	}

	sent := 0
	for _, target := range resolved {
		if p.dispatcher.Send(ctx, target, src, fresh) {
			sent++
		}
	}
	if sent == 0 {
		p.error("all webhook deliveries failed", "source", src.Name)
		return false
	}

	// At-least-once: articles become "seen" only after at least one
	// delivery succeeded. A persist failure risks redelivery next run,
	// which is the accepted direction of the tradeoff.
	persisted := p.seen.PersistBatch(ctx, fresh, src.Name)
	if p.metrics != nil {
		p.metrics.AddPersisted(persisted)
	}

	p.info("source processed", "source", src.Name,
		"delivered_to", sent, "targets", len(resolved), "persisted", persisted)
	return true
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
