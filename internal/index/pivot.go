package index

import (
	"sort"
	"time"

	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
)

// pivot is the Date×SeriesKey price grid one partition's rows collapse
// into. Duplicate (Date, SeriesKey) cells keep the last row by load order.
// The date axis is the sorted union of observation dates; a cell is absent
// when the series has no observation that day.
type pivot struct {
	dates []time.Time
	keys  []domain.SeriesKey
	cells map[domain.SeriesKey]map[int64]float64
}

func buildPivot(rows []dataset.Row) pivot {
	p := pivot{cells: make(map[domain.SeriesKey]map[int64]float64)}
	dateSet := make(map[int64]time.Time)

	for _, r := range rows {
		day := r.Date.Unix()
		dateSet[day] = r.Date

		col, ok := p.cells[r.Key]
		if !ok {
			col = make(map[int64]float64)
			p.cells[r.Key] = col
			p.keys = append(p.keys, r.Key)
		}
		// keep-last: later rows overwrite earlier ones for the same day
		col[day] = r.Price
	}

	p.dates = make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		p.dates = append(p.dates, d)
	}
	sort.Slice(p.dates, func(i, j int) bool { return p.dates[i].Before(p.dates[j]) })

	return p
}

// at returns the cell for (key, date index), reporting presence.
func (p pivot) at(key domain.SeriesKey, i int) (float64, bool) {
	v, ok := p.cells[key][p.dates[i].Unix()]
	return v, ok
}
