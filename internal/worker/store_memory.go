package worker

import (
	"context"
	"sort"
	"sync"

	"previnet/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{workers: make(map[string]*Worker)}
}

func (s *InMemoryStore) Create(_ context.Context, w *Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[w.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.workers {
		if existing.ExternalID == w.ExternalID || (w.PIN != "" && existing.PIN == w.PIN) {
			return sentinel.ErrConflict
		}
	}
	clone := *w
	s.workers[w.ID] = &clone
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *w
	return &clone, nil
}

func (s *InMemoryStore) FindByExternalID(_ context.Context, externalID string) (*Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.workers {
		if w.ExternalID == externalID {
			clone := *w
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByPIN(_ context.Context, pin string) (*Worker, error) {
	if pin == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.workers {
		if w.PIN == pin {
			clone := *w
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) SetEnabled(_ context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	w.Enabled = enabled
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Worker, 0, len(s.workers))
	for _, w := range s.workers {
		clone := *w
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
