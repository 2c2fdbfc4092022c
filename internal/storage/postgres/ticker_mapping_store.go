package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/storage"
)

// TickerMappingStore implements storage.TickerMappingStore using
// PostgreSQL with JSONB basket columns.
type TickerMappingStore struct {
	pool *Pool
}

// NewTickerMappingStore creates a new TickerMappingStore.
func NewTickerMappingStore(pool *Pool) *TickerMappingStore {
	return &TickerMappingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TickerMappingStore = (*TickerMappingStore)(nil)

// basketEntryJSON is the JSONB wire shape of one basket entry. Absent item
// and region serialize as null.
type basketEntryJSON struct {
	Item   *string `json:"item"`
	Group  string  `json:"group"`
	Region *string `json:"region"`
}

func toWire(entries []domain.BasketEntry) []basketEntryJSON {
	out := make([]basketEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = basketEntryJSON{Item: e.ItemKey, Group: e.Group, Region: e.Region}
	}
	return out
}

func fromWire(entries []basketEntryJSON) []domain.BasketEntry {
	out := make([]domain.BasketEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.BasketEntry{ItemKey: e.Item, Group: e.Group, Region: e.Region}
	}
	return out
}

// GetAll retrieves every mapping in catalog order.
func (s *TickerMappingStore) GetAll(ctx context.Context) ([]domain.TickerMapping, error) {
	query := `
		SELECT ticker, inputs, outputs
		FROM ticker_mappings
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ticker mappings: %w", err)
	}
	defer rows.Close()

	var mappings []domain.TickerMapping
	for rows.Next() {
		var (
			m               domain.TickerMapping
			inputs, outputs []byte
		)
		if err := rows.Scan(&m.Ticker, &inputs, &outputs); err != nil {
			return nil, fmt.Errorf("scan ticker mapping: %w", err)
		}

		var in, out []basketEntryJSON
		if err := json.Unmarshal(inputs, &in); err != nil {
			return nil, fmt.Errorf("decode inputs for %s: %w", m.Ticker, err)
		}
		if err := json.Unmarshal(outputs, &out); err != nil {
			return nil, fmt.Errorf("decode outputs for %s: %w", m.Ticker, err)
		}
		m.Inputs = fromWire(in)
		m.Outputs = fromWire(out)
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticker mappings: %w", err)
	}

	return mappings, nil
}

// ReplaceAll swaps the entire catalog for mappings in one transaction.
func (s *TickerMappingStore) ReplaceAll(ctx context.Context, mappings []domain.TickerMapping) error {
	for _, m := range mappings {
		if m.Ticker == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace ticker mappings: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ticker_mappings`); err != nil {
		return fmt.Errorf("clear ticker mappings: %w", err)
	}

	for _, m := range mappings {
		inputs, err := json.Marshal(toWire(m.Inputs))
		if err != nil {
			return fmt.Errorf("encode inputs for %s: %w", m.Ticker, err)
		}
		outputs, err := json.Marshal(toWire(m.Outputs))
		if err != nil {
			return fmt.Errorf("encode outputs for %s: %w", m.Ticker, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ticker_mappings (ticker, inputs, outputs)
			VALUES ($1, $2, $3)
		`, m.Ticker, inputs, outputs)
		if err != nil {
			return fmt.Errorf("insert ticker mapping %s: %w", m.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace ticker mappings: %w", err)
	}
	return nil
}
