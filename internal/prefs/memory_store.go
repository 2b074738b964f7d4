// File: internal/prefs/memory_store.go
package prefs

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and the memory backend.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
