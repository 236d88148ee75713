package signable

import "context"

// Store persists published entities. Put is insert-or-replace with an
// optimistic version check: a Version of zero inserts, a non-zero Version must
// match the stored one or the write fails with sentinel.ErrConflict. The
// version check is what upholds the sign-at-most-once invariant when two
// signing attempts race.
type Store interface {
	Put(ctx context.Context, entity *Entity) error
	Get(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context) ([]*Entity, error)
	ListByWorker(ctx context.Context, workerID string) ([]*Entity, error)
}
