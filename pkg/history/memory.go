package history

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the most recent records in process.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	max     int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore keeps at most max records. max <= 0 means unbounded.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max}
}

func (s *MemoryStore) Insert(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, normalize(r))
	if s.max > 0 && len(s.records) > s.max {
		s.records = slices.Delete(s.records, 0, len(s.records)-s.max)
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit = min(clampLimit(limit), len(s.records))
	out := make([]Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
