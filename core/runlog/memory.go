package runlog

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It backs the "memory" runlog backend
// and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Record
	for _, r := range s.recs {
		if q.match(r) {
			res = append(res, r)
		}
	}
	return q.trim(res), nil
}

func (s *MemoryStore) Close() error { return nil }
