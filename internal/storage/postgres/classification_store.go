package postgres

import (
	"context"
	"fmt"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage"
)

// ClassificationStore implements storage.ClassificationStore using
// PostgreSQL. The serial id column preserves catalog order so last-wins
// duplicate handling matches the editor's intent.
type ClassificationStore struct {
	pool *Pool
}

// NewClassificationStore creates a new ClassificationStore.
func NewClassificationStore(pool *Pool) *ClassificationStore {
	return &ClassificationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClassificationStore = (*ClassificationStore)(nil)

// GetAll retrieves every classification record in catalog order.
func (s *ClassificationStore) GetAll(ctx context.Context) ([]domain.ClassificationRecord, error) {
	query := `
		SELECT item, group_name, region, sector
		FROM classification_records
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query classification records: %w", err)
	}
	defer rows.Close()

	var recs []domain.ClassificationRecord
	for rows.Next() {
		var rec domain.ClassificationRecord
		if err := rows.Scan(&rec.Item, &rec.Group, &rec.Region, &rec.Sector); err != nil {
			return nil, fmt.Errorf("scan classification record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classification records: %w", err)
	}

	return recs, nil
}

// ReplaceAll swaps the entire catalog for recs in one transaction.
func (s *ClassificationStore) ReplaceAll(ctx context.Context, recs []domain.ClassificationRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace classification: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM classification_records`); err != nil {
		return fmt.Errorf("clear classification records: %w", err)
	}

	for _, rec := range recs {
		_, err := tx.Exec(ctx, `
			INSERT INTO classification_records (item, group_name, region, sector)
			VALUES ($1, $2, $3, $4)
		`, rec.Item, rec.Group, rec.Region, rec.Sector)
		if err != nil {
			return fmt.Errorf("insert classification record %q: %w", rec.Item, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace classification: %w", err)
	}
	return nil
}
