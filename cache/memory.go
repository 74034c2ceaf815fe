// In-memory cache store.
//
// Suitable for testing and for callers that want per-process deduplication
// without touching disk. Data is lost when the process terminates.

package cache

import (
	"context"
	"sync"

	"github.com/richinex/dnclgen/model"
)

// MemoryStore implements Store using a map keyed by fingerprint.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]model.CacheRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]model.CacheRecord)}
}

// Load returns the cached response for req.
func (s *MemoryStore) Load(ctx context.Context, req model.TranslationRequest) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[req.Key()]
	if !ok {
		return "", false, nil
	}
	return record.Response, true, nil
}

// Store records response for req.
func (s *MemoryStore) Store(ctx context.Context, req model.TranslationRequest, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[req.Key()] = model.NewCacheRecord(req, response)
	return nil
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
