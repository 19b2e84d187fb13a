package events

import (
	"context"
	"log/slog"
	"time"
)

// OutboxFlusher drains pending outbox records to the configured publisher.
type OutboxFlusher interface {
	FlushOutbox(ctx context.Context) error
}

// OutboxWorker periodically flushes the transactional outbox.
type OutboxWorker struct {
	logger   *slog.Logger
	flusher  OutboxFlusher
	interval time.Duration
}

func NewOutboxWorker(logger *slog.Logger, flusher OutboxFlusher, interval time.Duration) *OutboxWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxWorker{logger: logger, flusher: flusher, interval: interval}
}

// Run blocks until ctx is canceled, flushing on every tick. A failed flush is
// logged and retried on the next tick; records stay pending until sent.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "outbox worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "outbox worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.flusher.FlushOutbox(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "outbox flush failed", "error", err)
			}
		}
	}
}
