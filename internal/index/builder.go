// Package index builds equal-weighted composite indices from classified
// observation rows, at group, (group, region), and sector granularity.
package index

import (
	"math"

	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
)

// Build constructs a composite index over one partition's rows. An empty
// partition yields an empty index, never an error.
//
// ReturnBased: per-series adjacent-day percentage changes (a gap on either
// side means a missing return, no forward fill), equal-weighted mean across
// the series that have a return that day, cumulative product from base,
// first value forced to base exactly. A day where no series has a return
// keeps a NaN point; the running product carries past it rather than
// treating it as zero change.
//
// AbsoluteLevel: per-day mean of absolute values across the series present
// that day. A level, not an index: it is never forced to base.
func Build(rows []dataset.Row, policy domain.AggregationPolicy, base float64) domain.CompositeIndex {
	if len(rows) == 0 {
		return nil
	}
	p := buildPivot(rows)

	if policy == domain.AbsoluteLevel {
		return buildAbsoluteLevel(p)
	}
	return buildReturnBased(p, base)
}

func buildReturnBased(p pivot, base float64) domain.CompositeIndex {
	out := make(domain.CompositeIndex, len(p.dates))
	running := base

	for i, date := range p.dates {
		if i == 0 {
			// cold start: no prior day, the first value is the base by
			// construction
			out[i] = domain.IndexPoint{Date: date, Value: base}
			continue
		}

		sum := 0.0
		n := 0
		for _, key := range p.keys {
			curr, okCurr := p.at(key, i)
			prev, okPrev := p.at(key, i-1)
			if !okCurr || !okPrev {
				continue
			}
			sum += curr/prev - 1
			n++
		}

		if n == 0 {
			// no observation: the point is NaN and the product skips it
			out[i] = domain.IndexPoint{Date: date, Value: math.NaN()}
			continue
		}

		running *= 1 + sum/float64(n)
		out[i] = domain.IndexPoint{Date: date, Value: running}
	}

	return out
}

func buildAbsoluteLevel(p pivot) domain.CompositeIndex {
	out := make(domain.CompositeIndex, len(p.dates))

	for i, date := range p.dates {
		sum := 0.0
		n := 0
		for _, key := range p.keys {
			v, ok := p.at(key, i)
			if !ok {
				continue
			}
			sum += math.Abs(v)
			n++
		}

		value := math.NaN()
		if n > 0 {
			value = sum / float64(n)
		}
		out[i] = domain.IndexPoint{Date: date, Value: value}
	}

	return out
}
