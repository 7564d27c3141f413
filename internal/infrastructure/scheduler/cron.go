package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"NewsNotify/internal/ports"
)

// CronScheduler triggers the collection job on a cron expression in a
// configured timezone. A tick that fires while the previous run is
// still in flight is skipped.
type CronScheduler struct {
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// New builds a scheduler for the given cron expression and location.
func New(spec string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{
		spec:   spec,
		cron:   cron.New(cron.WithLocation(location)),
		logger: logger,
	}
}

// Start registers the job and begins ticking.
func (c *CronScheduler) Start(job func()) error {
	if job == nil {
		return nil
	}

	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(job))
	if _, err := c.cron.AddJob(c.spec, wrapped); err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	c.cron.Start()
	if c.logger != nil {
		c.logger.Info("scheduler started", "cron", c.spec)
	}
	return nil
}

// Stop halts ticking and waits for a running job up to the context
// deadline.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
