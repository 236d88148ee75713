package worker

import "context"

// Store persists workers. ExternalID and PIN are both unique; Create returns
// sentinel.ErrConflict when either collides.
type Store interface {
	Create(ctx context.Context, w *Worker) error
	Get(ctx context.Context, id string) (*Worker, error)
	FindByExternalID(ctx context.Context, externalID string) (*Worker, error)
	FindByPIN(ctx context.Context, pin string) (*Worker, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	List(ctx context.Context) ([]*Worker, error)
}
