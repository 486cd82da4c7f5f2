package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/observability"
)

// Extractor reads one raw observation from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawObservation, error)
}

// Consumer runs the extract-parse-apply loop feeding the snapshot.
type Consumer struct {
	extractor Extractor
	snapshot  *Snapshot
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewConsumer creates a Consumer.
func NewConsumer(e Extractor, s *Snapshot, logger *slog.Logger, metrics *observability.Metrics) *Consumer {
	return &Consumer{extractor: e, snapshot: s, logger: logger, metrics: metrics}
}

// Run consumes observations until the context is cancelled. A malformed
// message is counted, logged, committed, and skipped; extract failures back
// off exponentially so a broker outage does not spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("observation consumer started")

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("observation consumer stopping", "reason", ctx.Err())
			return nil
		default:
		}

		raw, err := c.extractor.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("extract observation failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		c.metrics.ObservationsConsumed.Inc()

		obs, err := domain.ParseObservation(raw)
		if err != nil {
			c.logger.Warn("parse observation failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			c.metrics.ObservationErrors.Inc()
			c.commit(ctx, raw)
			continue
		}

		c.snapshot.Apply(obs)
		c.commit(ctx, raw)
	}
}

// commit commits the message offset if a commit function is available.
func (c *Consumer) commit(ctx context.Context, raw domain.RawObservation) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		c.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
