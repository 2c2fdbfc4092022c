// Package spread computes trailing-window percentage changes and the
// output-minus-input margin spreads used to rank market movers.
package spread

import (
	"errors"
	"fmt"

	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/series"
)

// Changes holds the trailing percentage change per window for one series.
type Changes struct {
	D5, D10, D50, D150 float64
}

// TrailingChanges computes the trailing change per window over a
// date-ordered series: (latest − value w rows back) / value w rows back ×
// 100. Windows count rows, not calendar days. A series shorter than w+1
// rows reports 0 for that window — each window independently.
func TrailingChanges(values []float64) Changes {
	return Changes{
		D5:   trailingChange(values, 5),
		D10:  trailingChange(values, 10),
		D50:  trailingChange(values, 50),
		D150: trailingChange(values, 150),
	}
}

func trailingChange(values []float64, window int) float64 {
	n := len(values)
	if n <= window {
		return 0
	}
	latest := values[n-1]
	back := values[n-1-window]
	return (latest - back) / back * 100
}

// Calculator resolves ticker-mapping baskets and produces one SpreadRow per
// mapping per pass.
type Calculator struct {
	table           dataset.Table
	groupIndices    map[string]domain.CompositeIndex
	regionalIndices map[domain.RegionalKey]domain.CompositeIndex
	base            float64
}

// NewCalculator wires a calculator over one computation pass's snapshot and
// derived indices.
func NewCalculator(
	t dataset.Table,
	groupIndices map[string]domain.CompositeIndex,
	regionalIndices map[domain.RegionalKey]domain.CompositeIndex,
	base float64,
) *Calculator {
	return &Calculator{
		table:           t,
		groupIndices:    groupIndices,
		regionalIndices: regionalIndices,
		base:            base,
	}
}

// Compute produces exactly one SpreadRow per mapping. An unresolved input
// or output basket contributes zero change on that side; the row is still
// emitted so every cataloged ticker ranks.
func (c *Calculator) Compute(mappings []domain.TickerMapping) ([]domain.SpreadRow, error) {
	rows := make([]domain.SpreadRow, 0, len(mappings))

	for _, m := range mappings {
		input, err := c.resolveBasket(m.Inputs)
		if err != nil {
			return nil, fmt.Errorf("ticker %s inputs: %w", m.Ticker, err)
		}
		output, err := c.resolveBasket(m.Outputs)
		if err != nil {
			return nil, fmt.Errorf("ticker %s outputs: %w", m.Ticker, err)
		}

		in := basketChanges(input)
		out := basketChanges(output)

		rows = append(rows, domain.SpreadRow{
			Ticker:     m.Ticker,
			Spread5D:   out.D5 - in.D5,
			Spread10D:  out.D10 - in.D10,
			Spread50D:  out.D50 - in.D50,
			Spread150D: out.D150 - in.D150,
		})
	}

	return rows, nil
}

// resolveBasket resolves one side of a mapping. Multi-entry baskets go
// through the aggregator; a single entry resolves directly, which is
// numerically equivalent and skips the alignment pass. A basket that
// resolves to nothing is nil, not an error.
func (c *Calculator) resolveBasket(basket []domain.BasketEntry) (domain.CompositeIndex, error) {
	if len(basket) == 0 {
		return nil, nil
	}

	var (
		s   domain.CompositeIndex
		err error
	)
	if len(basket) > 1 {
		s, err = series.Aggregate(basket, c.table, c.groupIndices, c.regionalIndices, c.base)
	} else {
		s, err = series.Resolve(basket[0], c.table, c.groupIndices, c.regionalIndices)
	}
	if errors.Is(err, series.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// basketChanges computes a resolved basket's trailing changes. A missing
// basket is all zeros, the same flat-line default as a too-short series.
func basketChanges(s domain.CompositeIndex) Changes {
	if len(s) == 0 {
		return Changes{}
	}
	return TrailingChanges(s.Values())
}

// SwingRows computes trailing changes for each group index, for the
// commodity swings ranking. Groups iterate in map order; callers sort.
func SwingRows(groupIndices map[string]domain.CompositeIndex) []domain.GroupSwingRow {
	rows := make([]domain.GroupSwingRow, 0, len(groupIndices))
	for group, idx := range groupIndices {
		ch := TrailingChanges(idx.Values())
		rows = append(rows, domain.GroupSwingRow{
			Group:      group,
			Change5D:   ch.D5,
			Change10D:  ch.D10,
			Change50D:  ch.D50,
			Change150D: ch.D150,
		})
	}
	return rows
}
