package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store, used in tests and as a fallback when no
// database is available.
type MemoryStore struct {
	docs map[string][]byte
	mu   sync.RWMutex

	// FailWrites makes Set return the given error, for testing storage
	// failure handling.
	FailWrites error
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Get returns the document stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

// Set replaces the document stored under key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}
	doc := make([]byte, len(value))
	copy(doc, value)
	s.docs[key] = doc
	return nil
}

// Delete removes the document stored under key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}
