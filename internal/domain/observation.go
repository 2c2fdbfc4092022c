package domain

import (
	"strings"
	"time"
)

// SeriesKey identifies one price series. It is derived exactly once at the
// ingestion boundary (display name when present, raw ticker otherwise) and
// is never re-derived downstream.
type SeriesKey string

// NewSeriesKey picks the canonical join key for an observation. Display
// names are preferred because the classification catalog is keyed by them;
// legacy rows without a name fall back to the ticker code.
func NewSeriesKey(ticker, name string) SeriesKey {
	name = strings.TrimSpace(name)
	if name != "" {
		return SeriesKey(name)
	}
	return SeriesKey(strings.TrimSpace(ticker))
}

// PriceObservation is one raw price row: one ticker, one day, one price.
// Multiple observations may exist for the same (Date, SeriesKey); duplicates
// are collapsed keep-last by load order before any pivot.
type PriceObservation struct {
	Key    SeriesKey
	Ticker string
	Name   string
	Date   time.Time // normalized to UTC midnight
	Price  float64
}

// Day truncates t to UTC midnight so observations from sources with
// differing time components land on the same calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
