package syncqueue

import (
	"context"
	"sync"
	"time"
)

// InMemoryQueue buffers events on the device until a flusher drains them.
type InMemoryQueue struct {
	mu     sync.Mutex
	events []Event
	clock  func() time.Time
}

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(q *InMemoryQueue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

func (q *InMemoryQueue) Enqueue(_ context.Context, kind string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, Event{Kind: kind, CreatedAt: q.clock()})
	return nil
}

func (q *InMemoryQueue) Pending(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events), nil
}

func (q *InMemoryQueue) Drain(_ context.Context) ([]Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.events
	q.events = nil
	return drained, nil
}
