package reporting

import (
	"time"

	"commodity-index-lab/internal/domain"
)

// Report is the rendered outcome of one computation pass, consumed by the
// presentation collaborators.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	WindowStart time.Time

	// Data Summary
	DataSummary DataSummary

	// Index snapshots (sorted by name/key)
	GroupIndexRows  []IndexSummaryRow
	SectorIndexRows []IndexSummaryRow

	// Market movers
	Swings  []domain.GroupSwingRow // sorted by |5D change| descending
	Spreads []domain.SpreadRow     // sorted by |5D spread| descending

	// Reconciliation
	UnmatchedKeys []string
}

// DataSummary describes the snapshot a pass ran over.
type DataSummary struct {
	TotalObservations int
	ClassifiedRows    int
	GroupCount        int
	RegionalCount     int
	SectorCount       int
	MappingCount      int
	DateRangeStart    time.Time
	DateRangeEnd      time.Time
}

// IndexSummaryRow is the latest state of one composite index.
type IndexSummaryRow struct {
	Name        string
	Points      int
	FirstDate   time.Time
	LatestDate  time.Time
	LatestValue float64
}
