package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ViewTracker records that a worker has opened an entity's attachment. The
// signing service refuses to sign attachment-bearing records until the view
// is on record.
type ViewTracker interface {
	MarkViewed(ctx context.Context, entityID, workerID string) error
	Viewed(ctx context.Context, entityID, workerID string) (bool, error)
}

type InMemoryViewTracker struct {
	mu     sync.RWMutex
	viewed map[string]struct{}
}

func NewInMemoryViewTracker() *InMemoryViewTracker {
	return &InMemoryViewTracker{viewed: make(map[string]struct{})}
}

func (t *InMemoryViewTracker) MarkViewed(_ context.Context, entityID, workerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewed[viewKey(entityID, workerID)] = struct{}{}
	return nil
}

func (t *InMemoryViewTracker) Viewed(_ context.Context, entityID, workerID string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.viewed[viewKey(entityID, workerID)]
	return ok, nil
}

// RedisViewTracker keeps views in Redis so that restarts do not force
// workers to reopen attachments they already read.
type RedisViewTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisViewTracker(client *redis.Client) *RedisViewTracker {
	return &RedisViewTracker{client: client, ttl: 30 * 24 * time.Hour}
}

func (t *RedisViewTracker) MarkViewed(ctx context.Context, entityID, workerID string) error {
	return t.client.Set(ctx, viewKey(entityID, workerID), "1", t.ttl).Err()
}

func (t *RedisViewTracker) Viewed(ctx context.Context, entityID, workerID string) (bool, error) {
	n, err := t.client.Exists(ctx, viewKey(entityID, workerID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func viewKey(entityID, workerID string) string {
	return fmt.Sprintf("previnet:viewed:%s:%s", entityID, workerID)
}
