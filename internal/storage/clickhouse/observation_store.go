package clickhouse

import (
	"context"
	"fmt"
	"time"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using ClickHouse.
// Each row carries a load sequence number; reads order by (date, seq) so
// keep-last duplicate collapse sees the same order the rows were loaded in.
type ObservationStore struct {
	conn *Conn
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(conn *Conn) *ObservationStore {
	return &ObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// InsertBulk appends observations in load order.
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	for _, o := range obs {
		if o.Key == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (
			series_key, ticker, name, date, price, seq
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	seqBase := uint64(time.Now().UnixNano())
	for i, o := range obs {
		err = batch.Append(
			string(o.Key), o.Ticker, o.Name,
			o.Date, o.Price, seqBase+uint64(i),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves every observation ordered by date ASC, load order
// within a date.
func (s *ObservationStore) GetAll(ctx context.Context) ([]domain.PriceObservation, error) {
	return s.GetFrom(ctx, time.Time{})
}

// GetFrom retrieves observations dated on or after start.
func (s *ObservationStore) GetFrom(ctx context.Context, start time.Time) ([]domain.PriceObservation, error) {
	query := `
		SELECT series_key, ticker, name, date, price
		FROM price_observations
		WHERE date >= ?
		ORDER BY date ASC, seq ASC
	`
	if start.IsZero() {
		// ClickHouse Date cannot represent the zero time
		start = time.Unix(0, 0).UTC()
	}

	rows, err := s.conn.Query(ctx, query, start)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var result []domain.PriceObservation
	for rows.Next() {
		var (
			o   domain.PriceObservation
			key string
		)
		if err := rows.Scan(&key, &o.Ticker, &o.Name, &o.Date, &o.Price); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Key = domain.SeriesKey(key)
		o.Date = domain.Day(o.Date)
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return result, nil
}
