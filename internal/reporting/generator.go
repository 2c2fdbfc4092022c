package reporting

import (
	"math"
	"sort"
	"time"

	"commodity-index-lab/internal/domain"
	"commodity-index-lab/internal/engine"
)

// Generator produces reports from computation pass results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles a report from one pass. Movers are ranked by absolute
// 5-day change so the largest swings in either direction surface first.
func (g *Generator) Generate(result *engine.Result, windowStart time.Time, mappingCount int) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		WindowStart: windowStart,
	}

	r.DataSummary = DataSummary{
		TotalObservations: result.Table.Len(),
		ClassifiedRows:    len(result.Table.Classified()),
		GroupCount:        len(result.GroupIndices),
		RegionalCount:     len(result.RegionalIndices),
		SectorCount:       len(result.SectorIndices),
		MappingCount:      mappingCount,
	}
	for _, row := range result.Table.Classified() {
		if r.DataSummary.DateRangeStart.IsZero() || row.Date.Before(r.DataSummary.DateRangeStart) {
			r.DataSummary.DateRangeStart = row.Date
		}
		if row.Date.After(r.DataSummary.DateRangeEnd) {
			r.DataSummary.DateRangeEnd = row.Date
		}
	}

	r.GroupIndexRows = summarizeIndices(result.GroupIndices)
	r.SectorIndexRows = summarizeIndices(result.SectorIndices)

	r.Swings = append([]domain.GroupSwingRow(nil), result.Swings...)
	sort.SliceStable(r.Swings, func(i, j int) bool {
		return math.Abs(r.Swings[i].Change5D) > math.Abs(r.Swings[j].Change5D)
	})

	r.Spreads = append([]domain.SpreadRow(nil), result.Spreads...)
	sort.SliceStable(r.Spreads, func(i, j int) bool {
		return math.Abs(r.Spreads[i].Spread5D) > math.Abs(r.Spreads[j].Spread5D)
	})

	for _, key := range result.Unmatched {
		r.UnmatchedKeys = append(r.UnmatchedKeys, string(key))
	}
	sort.Strings(r.UnmatchedKeys)

	return r
}

func summarizeIndices(indices map[string]domain.CompositeIndex) []IndexSummaryRow {
	rows := make([]IndexSummaryRow, 0, len(indices))
	for name, idx := range indices {
		if len(idx) == 0 {
			continue
		}
		rows = append(rows, IndexSummaryRow{
			Name:        name,
			Points:      len(idx),
			FirstDate:   idx[0].Date,
			LatestDate:  idx[len(idx)-1].Date,
			LatestValue: idx[len(idx)-1].Value,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}
