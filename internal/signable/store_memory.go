package signable

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"previnet/pkg/platform/sentinel"
)

// InMemoryStore is the offline-device implementation of Store. Entities are
// deep-copied on the way in and out so callers cannot mutate shared state.
type InMemoryStore struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entities: make(map[string]*Entity)}
}

func (s *InMemoryStore) Put(_ context.Context, entity *Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entities[entity.ID]
	switch {
	case !exists && entity.Version != 0:
		return sentinel.ErrNotFound
	case exists && entity.Version != current.Version:
		return sentinel.ErrConflict
	}

	stored, err := cloneEntity(entity)
	if err != nil {
		return err
	}
	stored.Version++
	s.entities[entity.ID] = stored
	entity.Version = stored.Version
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneEntity(entity)
}

func (s *InMemoryStore) List(_ context.Context) ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		clone, err := cloneEntity(entity)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) ListByWorker(ctx context.Context, workerID string) ([]*Entity, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Entity, 0, len(all))
	for _, entity := range all {
		if entity.AssignmentFor(workerID) != nil {
			out = append(out, entity)
		}
	}
	return out, nil
}

// cloneEntity round-trips through JSON; entities are small and this keeps the
// copy honest as fields are added.
func cloneEntity(entity *Entity) (*Entity, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var clone Entity
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
