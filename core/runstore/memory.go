package runstore

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It is used when no backend is
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []RunRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q RunQuery) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []RunRecord
	for _, r := range s.records {
		if q.match(r) {
			res = append(res, r)
		}
	}
	return q.finish(res), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return RunRecord{}, ErrNotFound
}

func (s *MemoryStore) Close() error { return nil }
