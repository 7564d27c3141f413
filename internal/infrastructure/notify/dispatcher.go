package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
)

const (
	maxAttempts  = 3
	retryBackoff = time.Second
)

// Dispatcher posts article batches to webhook endpoints with bounded
// retry. Transport errors and non-2xx responses are retryable; anything
// else aborts the attempt loop immediately.
type Dispatcher struct {
	client  *http.Client
	metrics ports.Metrics
	logger  *slog.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher wires an HTTP client for webhook delivery.
func NewDispatcher(client *http.Client, metrics ports.Metrics, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Dispatcher{
		client:  client,
		metrics: metrics,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Send builds the service payload for the target and posts it, retrying
// up to maxAttempts with a fixed backoff. An empty article batch is a
// no-op success.
func (d *Dispatcher) Send(ctx context.Context, target domain.Webhook, src domain.Source, articles []domain.Article) bool {
	if len(articles) == 0 {
		d.info("no articles to post", "source", src.Name, "webhook", target.Name)
		return true
	}

	builder, err := builderFor(target.ServiceKind)
	if err != nil {
		d.error("cannot build notification", "webhook", target.Name, "error", err)
		return d.record(false)
	}

	body, err := json.Marshal(builder.Payload(src, articles))
	if err != nil {
		d.error("marshal payload", "webhook", target.Name, "error", err)
		return d.record(false)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryable, err := d.post(ctx, target.Endpoint, body)
		if err == nil {
			d.info("notification posted",
				"service", target.ServiceKind,
				"source", src.Name,
				"webhook", target.Name,
				"articles", len(articles))
			return d.record(true)
		}

		d.error("notification post failed",
			"service", target.ServiceKind,
			"source", src.Name,
			"webhook", target.Name,
			"attempt", fmt.Sprintf("%d/%d", attempt, maxAttempts),
			"error", err)

		if !retryable {
			break
		}
		if attempt < maxAttempts {
			d.sleep(retryBackoff)
		}
	}

	return d.record(false)
}

// post performs one delivery attempt. Transport errors and non-2xx
// responses are retryable; a request that cannot even be built is not.
func (d *Dispatcher) post(ctx context.Context, endpoint string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return true, fmt.Errorf("webhook returned %s", resp.Status)
	}

	return false, nil
}

func (d *Dispatcher) record(success bool) bool {
	if d.metrics != nil {
		if success {
			d.metrics.IncDispatchSuccess()
		} else {
			d.metrics.IncDispatchFailure()
		}
	}
	return success
}

func (d *Dispatcher) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *Dispatcher) error(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Error(msg, args...)
	}
}
