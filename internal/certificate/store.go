package certificate

import "context"

// Store is an append-only archive of generated certificates. Put refuses to
// overwrite: a second insert for the same (entity, worker, token) triple
// returns sentinel.ErrConflict.
type Store interface {
	Put(ctx context.Context, record *Record) error
	Get(ctx context.Context, entityID, workerID, token string) (*Record, error)
	ListByWorker(ctx context.Context, workerID string) ([]*Record, error)
}
