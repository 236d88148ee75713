package syncqueue

import (
	"context"
	"log/slog"
	"time"
)

// Flusher periodically drains the queue into a sink. Events that fail to
// publish are re-queued so nothing is lost while the device is offline.
type Flusher struct {
	queue    Queue
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
}

func NewFlusher(queue Queue, sink Sink, logger *slog.Logger, interval time.Duration) *Flusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Flusher{queue: queue, sink: sink, logger: logger, interval: interval}
}

func (f *Flusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := f.FlushOnce(ctx); err != nil {
				f.logger.WarnContext(ctx, "sync flush failed", "error", err.Error())
			}
		}
	}
}

// FlushOnce drains and publishes one batch.
func (f *Flusher) FlushOnce(ctx context.Context) error {
	events, err := f.queue.Drain(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	if err := f.sink.Publish(ctx, events); err != nil {
		for _, event := range events {
			_ = f.queue.Enqueue(ctx, event.Kind)
		}
		return err
	}
	f.logger.InfoContext(ctx, "sync events published", "count", len(events))
	return nil
}
