package syncqueue

import "context"

// Queue is the append-only sink mutating operations post "needs sync" events
// to. Drain hands pending events to a flusher and empties the queue.
type Queue interface {
	Enqueue(ctx context.Context, kind string) error
	Pending(ctx context.Context) (int, error)
	Drain(ctx context.Context) ([]Event, error)
}

// Sink receives drained events, typically a broker publisher.
type Sink interface {
	Publish(ctx context.Context, events []Event) error
}
