package memory

import (
	"context"
	"sync"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage"
)

// TickerMappingStore is an in-memory implementation of
// storage.TickerMappingStore.
type TickerMappingStore struct {
	mu       sync.RWMutex
	mappings []domain.TickerMapping
}

// NewTickerMappingStore creates a new in-memory ticker mapping store.
func NewTickerMappingStore() *TickerMappingStore {
	return &TickerMappingStore{}
}

// Compile-time interface check.
var _ storage.TickerMappingStore = (*TickerMappingStore)(nil)

// GetAll retrieves every mapping in catalog order.
func (s *TickerMappingStore) GetAll(_ context.Context) ([]domain.TickerMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TickerMapping, len(s.mappings))
	copy(out, s.mappings)
	return out, nil
}

// ReplaceAll swaps the entire catalog for mappings.
func (s *TickerMappingStore) ReplaceAll(_ context.Context, mappings []domain.TickerMapping) error {
	for _, m := range mappings {
		if m.Ticker == "" {
			return storage.ErrInvalidInput
		}
	}

	fresh := make([]domain.TickerMapping, len(mappings))
	copy(fresh, mappings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = fresh
	return nil
}
