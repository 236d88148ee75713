package certificate

import (
	"context"
	"sort"
	"sync"

	"previnet/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*Record)}
}

func (s *InMemoryStore) Put(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.Key()
	if _, ok := s.records[key]; ok {
		return sentinel.ErrConflict
	}
	clone := cloneRecord(record)
	s.records[key] = clone
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, entityID, workerID, token string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[CompositeKey(entityID, workerID, token)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) ListByWorker(_ context.Context, workerID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, record := range s.records {
		if record.WorkerID == workerID {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneRecord(r *Record) *Record {
	clone := *r
	clone.Content = append([]byte(nil), r.Content...)
	return &clone
}
