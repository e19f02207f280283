package database

import (
	"context"
	"slices"
	"sync"

	"github.com/JonMunkholm/colarrange/internal/core"
)

// MemoryStore keeps arrangements in process memory. Nothing survives a
// restart.
type MemoryStore struct {
	mu   sync.RWMutex
	arrs []core.Arrangement
}

func NewMemoryStore(seed ...core.Arrangement) *MemoryStore {
	return &MemoryStore{arrs: slices.Clone(seed)}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]core.Arrangement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.arrs), nil
}

func (s *MemoryStore) SaveAll(ctx context.Context, arrs []core.Arrangement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrs = slices.Clone(arrs)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
