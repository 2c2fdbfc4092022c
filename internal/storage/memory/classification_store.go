package memory

import (
	"context"
	"sync"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage"
)

// ClassificationStore is an in-memory implementation of
// storage.ClassificationStore.
type ClassificationStore struct {
	mu   sync.RWMutex
	recs []domain.ClassificationRecord
}

// NewClassificationStore creates a new in-memory classification store.
func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{}
}

// Compile-time interface check.
var _ storage.ClassificationStore = (*ClassificationStore)(nil)

// GetAll retrieves every classification record in catalog order.
func (s *ClassificationStore) GetAll(_ context.Context) ([]domain.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ClassificationRecord, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

// ReplaceAll swaps the entire catalog for recs.
func (s *ClassificationStore) ReplaceAll(_ context.Context, recs []domain.ClassificationRecord) error {
	fresh := make([]domain.ClassificationRecord, len(recs))
	copy(fresh, recs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = fresh
	return nil
}
