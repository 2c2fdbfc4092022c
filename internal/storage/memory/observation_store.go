// Package memory provides in-memory store implementations for tests and
// single-process runs without external databases.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage"
)

// ObservationStore is an in-memory implementation of
// storage.ObservationStore. Append order is retained so keep-last duplicate
// collapse behaves the same as against a real backend.
type ObservationStore struct {
	mu  sync.RWMutex
	obs []domain.PriceObservation
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// InsertBulk appends observations in load order.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []domain.PriceObservation) error {
	for _, o := range obs {
		if o.Key == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = append(s.obs, obs...)
	return nil
}

// GetAll retrieves every observation ordered by date ASC, load order
// within a date.
func (s *ObservationStore) GetAll(ctx context.Context) ([]domain.PriceObservation, error) {
	return s.GetFrom(ctx, time.Time{})
}

// GetFrom retrieves observations dated on or after start.
func (s *ObservationStore) GetFrom(_ context.Context, start time.Time) ([]domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PriceObservation
	for _, o := range s.obs {
		if start.IsZero() || !o.Date.Before(start) {
			result = append(result, o)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}
