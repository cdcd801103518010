package persistence

import (
	"context"
	"sync/atomic"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/usecases"
)

func NewMemoryReadingStore() *MemoryReadingStore {
	return &MemoryReadingStore{}
}

var _ usecases.ReadingStore = (*MemoryReadingStore)(nil)

// MemoryReadingStore keeps a single reading for the process lifetime.
// Concurrent writers race and the last swap wins.
type MemoryReadingStore struct {
	slot atomic.Pointer[domain.Reading]
}

func (s *MemoryReadingStore) Write(_ context.Context, reading domain.Reading) {
	stored := reading.Clone()
	s.slot.Store(&stored)
}

func (s *MemoryReadingStore) Read(_ context.Context) (domain.Reading, bool) {
	stored := s.slot.Load()
	if stored == nil {
		return nil, false
	}
	return stored.Clone(), true
}
