// Package dataset joins raw price observations with the classification
// snapshot and exposes the classified view the builders consume.
package dataset

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"commodity-index-lab/internal/domain"
)

// Row is one observation with its classification applied. Group and Sector
// are empty for unmatched keys; Region is nil for items that classify
// without a region (they join the group index but no regional one).
type Row struct {
	Key    domain.SeriesKey
	Date   time.Time
	Price  float64
	Group  string
	Region *string
	Sector string
}

// Table holds a classified observation snapshot. All rows are retained:
// unmatched ("internal") series stay resolvable as individual item series
// while being excluded from every group/region/sector index.
type Table struct {
	rows []Row
}

// Classify joins each observation's series key against the classification
// maps. Keys with no entry in any map are handled per policy: warn logs
// each key once and keeps the row unclassified, drop keeps it silently,
// fail aborts the pass naming the keys.
func Classify(obs []domain.PriceObservation, cls domain.Classification, policy domain.MatchPolicy, logger *log.Logger) (Table, error) {
	rows := make([]Row, 0, len(obs))
	var unmatched []string
	seen := make(map[domain.SeriesKey]struct{})

	for _, o := range obs {
		row := Row{Key: o.Key, Date: o.Date, Price: o.Price}
		region, okRegion := cls.Region[o.Key]

		row.Group = cls.Group[o.Key]
		row.Sector = cls.Sector[o.Key]
		if okRegion {
			row.Region = domain.OptionalField(region)
		}

		if row.Group == "" && row.Sector == "" && !okRegion {
			if _, dup := seen[o.Key]; !dup {
				seen[o.Key] = struct{}{}
				unmatched = append(unmatched, string(o.Key))
			}
		}
		rows = append(rows, row)
	}

	if len(unmatched) > 0 {
		switch policy {
		case domain.MatchFail:
			return Table{}, fmt.Errorf("classification missing for series keys: %s", strings.Join(unmatched, ", "))
		case domain.MatchWarn:
			if logger != nil {
				for _, key := range unmatched {
					logger.Printf("classification: no entry for series key %q, rows excluded from indices", key)
				}
			}
		}
	}

	return Table{rows: rows}, nil
}

// Unmatched returns the distinct series keys that carry no classification,
// in first-appearance order.
func (t Table) Unmatched() []domain.SeriesKey {
	var out []domain.SeriesKey
	seen := make(map[domain.SeriesKey]struct{})
	for _, r := range t.rows {
		if r.Group == "" && r.Sector == "" {
			if _, ok := seen[r.Key]; !ok {
				seen[r.Key] = struct{}{}
				out = append(out, r.Key)
			}
		}
	}
	return out
}

// FilterFrom returns the rows observed on or after start. The filter runs
// against the already-fetched snapshot so varying requested windows never
// fragment the upstream cache.
func (t Table) FilterFrom(start time.Time) Table {
	if start.IsZero() {
		return t
	}
	rows := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if !r.Date.Before(start) {
			rows = append(rows, r)
		}
	}
	return Table{rows: rows}
}

// Classified returns the rows eligible for index construction: both Group
// and Sector resolved. Unmatched rows never enter a composite index.
func (t Table) Classified() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if r.Group != "" && r.Sector != "" {
			out = append(out, r)
		}
	}
	return out
}

// Len reports the total number of rows, classified or not.
func (t Table) Len() int {
	return len(t.rows)
}

// Series returns the raw observations for one series key sorted by date,
// load order preserved within a date. No deduplication: keep-last collapse
// is a pivot-time concern.
func (t Table) Series(key domain.SeriesKey) []domain.IndexPoint {
	var out []domain.IndexPoint
	for _, r := range t.rows {
		if r.Key == key {
			out = append(out, domain.IndexPoint{Date: r.Date, Value: r.Price})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Groups returns the distinct classified groups in first-appearance order.
func (t Table) Groups() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range t.Classified() {
		if _, ok := seen[r.Group]; !ok {
			seen[r.Group] = struct{}{}
			out = append(out, r.Group)
		}
	}
	return out
}

// RegionalKeys returns the distinct (group, region) combinations with a
// region present, in first-appearance order.
func (t Table) RegionalKeys() []domain.RegionalKey {
	var out []domain.RegionalKey
	seen := make(map[domain.RegionalKey]struct{})
	for _, r := range t.Classified() {
		if r.Region == nil {
			continue
		}
		k := domain.RegionalKey{Group: r.Group, Region: *r.Region}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Sectors returns the distinct classified sectors in first-appearance
// order.
func (t Table) Sectors() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range t.Classified() {
		if _, ok := seen[r.Sector]; !ok {
			seen[r.Sector] = struct{}{}
			out = append(out, r.Sector)
		}
	}
	return out
}
