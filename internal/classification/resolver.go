// Package classification converts catalog records into the lookup maps the
// engine joins raw observations against.
package classification

import (
	"strings"

	"commodity-index-lab/internal/domain"
)

// BuildMaps turns catalog records into the three independent item→value
// maps. Item keys are whitespace-trimmed before use; when the catalog holds
// duplicate items the last record wins, matching catalog edit semantics
// (full replace, latest state authoritative).
//
// An empty record set yields empty maps: downstream filtering then drops
// every row, which is the documented fail-open behavior for an empty or
// freshly-wiped catalog.
func BuildMaps(records []domain.ClassificationRecord) domain.Classification {
	cls := domain.Classification{
		Group:  make(map[domain.SeriesKey]string, len(records)),
		Region: make(map[domain.SeriesKey]string, len(records)),
		Sector: make(map[domain.SeriesKey]string, len(records)),
	}

	for _, rec := range records {
		item := domain.SeriesKey(strings.TrimSpace(rec.Item))
		if item == "" {
			continue
		}
		if rec.Group != "" {
			cls.Group[item] = rec.Group
		}
		if rec.Region != nil {
			cls.Region[item] = *rec.Region
		}
		if rec.Sector != "" {
			cls.Sector[item] = rec.Sector
		}
	}

	return cls
}
