package coverage

import (
	"sync"

	"github.com/battleready/core/pkg/domain"
)

// SignatureStore caches coverage signatures keyed by test. Entries are
// write-once per key: concurrent writers for the same key must agree
// (regeneration is idempotent), so the first stored value wins.
type SignatureStore interface {
	// Get returns the cached signature for a test, if present.
	Get(key domain.TestKey) (domain.CoverageSignature, bool)
	// Put stores a signature. Existing entries are kept unchanged.
	Put(key domain.TestKey, sig domain.CoverageSignature) error
	// Close releases any resources held by the store.
	Close() error
}

// Store is an in-memory signature store safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	signatures map[string]domain.CoverageSignature
}

// NewStore returns an empty in-memory signature store.
func NewStore() *Store {
	return &Store{signatures: make(map[string]domain.CoverageSignature)}
}

// Get implements SignatureStore.
func (s *Store) Get(key domain.TestKey) (domain.CoverageSignature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signatures[key.String()]
	return sig, ok
}

// Put implements SignatureStore.
func (s *Store) Put(key domain.TestKey, sig domain.CoverageSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.signatures[key.String()]; !exists {
		s.signatures[key.String()] = sig
	}
	return nil
}

// Len returns the number of cached signatures.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.signatures)
}

// Reset discards all cached signatures.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signatures = make(map[string]domain.CoverageSignature)
}

// Close implements SignatureStore. It is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
