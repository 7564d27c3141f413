package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"NewsNotify/internal/api"
	"NewsNotify/internal/config"
	"NewsNotify/internal/infrastructure/feed"
	"NewsNotify/internal/infrastructure/notify"
	"NewsNotify/internal/infrastructure/scheduler"
	"NewsNotify/internal/infrastructure/scrape"
	"NewsNotify/internal/infrastructure/storage"
	"NewsNotify/internal/infrastructure/translate"
	"NewsNotify/internal/logging"
	"NewsNotify/internal/metrics"
	"NewsNotify/internal/source"
	"NewsNotify/internal/usecase"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	httpClient := &http.Client{Timeout: requestTimeout}
	maxArticles := cfg.Pipeline.MaxArticlesPerSource

	fetchers := source.NewRegistry()
	fetchers.Register(feed.New(httpClient, maxArticles, baseLogger.With("component", "fetcher.feed")))
	fetchers.Register(scrape.New(httpClient, maxArticles, baseLogger.With("component", "fetcher.scrape")))

	translator := translate.NewClient(cfg.Translation, httpClient, collector,
		baseLogger.With("component", "translator"))
	dispatcher := notify.NewDispatcher(httpClient, collector,
		baseLogger.With("component", "dispatcher"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Catalog:          store,
		Seen:             store,
		Fetchers:         fetchers,
		Translator:       translator,
		Dispatcher:       dispatcher,
		Metrics:          collector,
		Logger:           baseLogger.With("component", "pipeline"),
		Concurrency:      cfg.Pipeline.Concurrency,
		RetentionDays:    cfg.Pipeline.RetentionDays,
		CleanupThreshold: cfg.Pipeline.CleanupThreshold,
	})

	cronDriver := scheduler.New(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(),
		baseLogger.With("component", "scheduler"))

	apiServer := api.NewServer(store, store,
		func() { pipeline.Run(context.Background()) },
		registry, baseLogger.With("component", "api"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(cronDriver, pipeline),
		server: &http.Server{
			Addr:              cfg.API.Addr,
			Handler:           apiServer.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run starts the API server and the scheduler, then blocks until the
// context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		if closeErr := a.store.Close(); closeErr != nil {
			a.logger.Error("close store", "error", closeErr)
		}
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("API server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	return a.shutdown()
}

// RunOnce executes a single collection pass and tears down.
func (a *Application) RunOnce(ctx context.Context) error {
	summary := a.pipeline.Run(ctx)
	a.logger.Info("manual run finished",
		"succeeded", summary.Succeeded, "sources", summary.Sources)
	return a.store.Close()
}

func (a *Application) shutdown() error {
	a.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop api server: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
