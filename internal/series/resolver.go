// Package series resolves basket entries to price series and aggregates
// multi-entry baskets into ad-hoc composite indices.
package series

import (
	"errors"

	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
)

// ErrNotFound is returned when a basket entry resolves to no data at any
// rung of the fallback ladder. Callers skip the entry; nothing substitutes
// a default series at this layer.
var ErrNotFound = errors.New("no series data available")

// Resolve returns the most specific price series available for a basket
// entry. Strict fallback order, first success wins:
//
//  1. the entry's own item series, when the key has observations;
//  2. the (group, region) sub-index, when the entry carries a region;
//  3. the group index.
//
// The ladder lets a ticker mapping reference either a precise named
// commodity or a broader index without knowing which is available.
func Resolve(
	entry domain.BasketEntry,
	t dataset.Table,
	groupIndices map[string]domain.CompositeIndex,
	regionalIndices map[domain.RegionalKey]domain.CompositeIndex,
) (domain.CompositeIndex, error) {
	if entry.ItemKey != nil {
		if obs := t.Series(domain.SeriesKey(*entry.ItemKey)); len(obs) > 0 {
			return obs, nil
		}
	}

	if entry.Region != nil {
		key := domain.RegionalKey{Group: entry.Group, Region: *entry.Region}
		if idx, ok := regionalIndices[key]; ok {
			return idx, nil
		}
	}

	if entry.Group != "" {
		if idx, ok := groupIndices[entry.Group]; ok {
			return idx, nil
		}
	}

	return nil, ErrNotFound
}
