package domain

import "time"

// DefaultBaseValue is the index level assigned to the first chronological
// point of every return-based composite index.
const DefaultBaseValue = 100.0

// IndexPoint is one day of a composite index. Value may be NaN on days
// where no constituent series produced a return; the cumulative product
// skips such days rather than treating them as zero change.
type IndexPoint struct {
	Date  time.Time
	Value float64
}

// CompositeIndex is a date-ordered derived series summarizing multiple
// underlying price series. It is rebuilt in full on every computation pass
// and never mutated incrementally.
type CompositeIndex []IndexPoint

// Values returns just the index levels in date order.
func (ci CompositeIndex) Values() []float64 {
	out := make([]float64, len(ci))
	for i, p := range ci {
		out[i] = p.Value
	}
	return out
}

// AggregationPolicy selects how a group's observations combine into an
// index.
type AggregationPolicy int

const (
	// ReturnBased chains equal-weighted daily returns from a fixed base.
	ReturnBased AggregationPolicy = iota
	// AbsoluteLevel averages absolute observation values per day. Used for
	// groups whose observations are signed differentials (crack spreads),
	// where a return-based index is meaningless. The result is a level,
	// not an index: it is never forced to the base value.
	AbsoluteLevel
)

// RegionalKey identifies one (group, region) sub-index partition.
type RegionalKey struct {
	Group  string
	Region string
}

// String renders the key the way downstream consumers label regional
// series, e.g. "HRC - VN".
func (k RegionalKey) String() string {
	return k.Group + " - " + k.Region
}
