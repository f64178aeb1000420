// Package pipeline publishes a loaded dataset to a downstream sink in batches.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-dashboard/internal/domain"
	"github.com/couchcryptid/storm-dashboard/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchLoader writes multiple observations to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, observations []domain.StormObservation) error
}

// Publisher splits observations into batches and loads each one, retrying a
// failed batch with exponential backoff.
type Publisher struct {
	loader         BatchLoader
	logger         *slog.Logger
	metrics        *observability.Metrics
	batchSize      int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRetry overrides the retry policy for failed batches.
func WithRetry(maxAttempts int, initialBackoff, maxBackoff time.Duration) Option {
	return func(p *Publisher) {
		p.maxAttempts = maxAttempts
		p.initialBackoff = initialBackoff
		p.maxBackoff = maxBackoff
	}
}

// New creates a Publisher. Defaults: 5 attempts per batch, backoff starting
// at 200ms, doubling, capped at 5s.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Publisher {
	p := &Publisher{
		loader:         l,
		logger:         logger,
		metrics:        metrics,
		batchSize:      batchSize,
		maxAttempts:    5,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.batchSize <= 0 {
		p.batchSize = 1
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 1
	}
	return p
}

// Run publishes every observation and returns how many were loaded. It
// stops at the first batch that exhausts its retries or when ctx is done.
func (p *Publisher) Run(ctx context.Context, observations []domain.StormObservation) (int, error) {
	p.logger.Info("publish started", "observations", len(observations), "batch_size", p.batchSize)

	published := 0
	for start := 0; start < len(observations); start += p.batchSize {
		end := min(start+p.batchSize, len(observations))
		batch := observations[start:end]

		if err := p.loadWithRetry(ctx, batch); err != nil {
			return published, fmt.Errorf("publish batch at offset %d: %w", start, err)
		}

		published += len(batch)
		p.metrics.ObservationsPublished.Add(float64(len(batch)))
		p.metrics.PublishBatchSize.Observe(float64(len(batch)))
	}

	p.logger.Info("publish complete", "published", published)
	return published, nil
}

func (p *Publisher) loadWithRetry(ctx context.Context, batch []domain.StormObservation) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = p.loader.LoadBatch(ctx, batch)
		if err == nil {
			return nil
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Warn("load batch failed", "error", err, "attempt", attempt, "batch_size", len(batch))

		if attempt == p.maxAttempts {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return err
}
