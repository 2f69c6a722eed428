package fingerprint

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and runs without a
// database; the check-and-mark is a single operation under one mutex.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore returns an empty in-memory fingerprint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// IsGenerated reports whether digest has been marked.
func (s *MemoryStore) IsGenerated(_ context.Context, digest string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[digest]
	return ok, nil
}

// MarkGenerated marks digest, returning false if it was already marked.
func (s *MemoryStore) MarkGenerated(_ context.Context, digest, artifactRef string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[digest]; ok {
		return false, nil
	}
	s.entries[digest] = artifactRef
	return true, nil
}

// ArtifactRef returns the artifact reference stored for digest, if any.
func (s *MemoryStore) ArtifactRef(digest string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.entries[digest]
	return ref, ok
}
