package storage

import (
	"context"
	"time"

	"commodity-index-lab/internal/domain"
)

// ObservationStore provides access to raw price observation storage. This
// is the expensive bulk source behind the long-TTL cache tier.
type ObservationStore interface {
	// InsertBulk appends observations. Load order is preserved: it decides
	// which duplicate (Date, SeriesKey) row wins downstream.
	InsertBulk(ctx context.Context, obs []domain.PriceObservation) error

	// GetAll retrieves every observation ordered by date ASC, load order
	// within a date.
	GetAll(ctx context.Context) ([]domain.PriceObservation, error)

	// GetFrom retrieves observations dated on or after start, same
	// ordering. An optimization hint only: callers must handle being
	// handed extra history.
	GetFrom(ctx context.Context, start time.Time) ([]domain.PriceObservation, error)
}

// ClassificationStore provides access to the externally-editable commodity
// catalog behind the short-TTL cache tier.
type ClassificationStore interface {
	// GetAll retrieves every classification record in catalog order.
	GetAll(ctx context.Context) ([]domain.ClassificationRecord, error)

	// ReplaceAll swaps the entire catalog for recs. Catalog edits are full
	// replaces; the latest state is authoritative.
	ReplaceAll(ctx context.Context, recs []domain.ClassificationRecord) error
}

// TickerMappingStore provides access to the equity input/output basket
// catalog.
type TickerMappingStore interface {
	// GetAll retrieves every mapping in catalog order.
	GetAll(ctx context.Context) ([]domain.TickerMapping, error)

	// ReplaceAll swaps the entire catalog for mappings.
	ReplaceAll(ctx context.Context, mappings []domain.TickerMapping) error
}
