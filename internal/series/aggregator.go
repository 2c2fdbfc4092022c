package series

import (
	"errors"
	"fmt"
	"math"

	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/index"
)

// Aggregate builds an ad-hoc equal-weighted index over a heterogeneous
// basket. Each entry is resolved through the fallback ladder; entries that
// resolve to nothing are discarded. When no entry resolves the basket is
// ErrNotFound — flat-line substitution is the spread calculator's call, not
// made here.
//
// Resolved series are aligned on their union of dates and combined with the
// same return math as a group index: adjacent-day changes per entry,
// skip-missing daily mean, cumulative product from base, first value forced
// to base.
func Aggregate(
	basket []domain.BasketEntry,
	t dataset.Table,
	groupIndices map[string]domain.CompositeIndex,
	regionalIndices map[domain.RegionalKey]domain.CompositeIndex,
	base float64,
) (domain.CompositeIndex, error) {
	var rows []dataset.Row
	resolved := 0

	for i, entry := range basket {
		s, err := Resolve(entry, t, groupIndices, regionalIndices)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved++

		key := entryKey(i, entry)
		for _, pt := range s {
			if math.IsNaN(pt.Value) {
				continue
			}
			rows = append(rows, dataset.Row{Key: key, Date: pt.Date, Price: pt.Value})
		}
	}

	if resolved == 0 {
		return nil, ErrNotFound
	}

	return index.Build(rows, domain.ReturnBased, base), nil
}

// entryKey labels one basket entry's column in the combined grid. The
// positional suffix keeps two entries over the same underlying series from
// collapsing into one column.
func entryKey(i int, entry domain.BasketEntry) domain.SeriesKey {
	label := entry.Group
	if entry.ItemKey != nil {
		label = *entry.ItemKey
	}
	return domain.SeriesKey(fmt.Sprintf("%s#%d", label, i))
}
