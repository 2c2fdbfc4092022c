// Package ingestion parses external fixture files into domain records.
// This is the boundary where series keys and optional-field sentinels are
// normalized; nothing downstream re-derives them.
package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"commodity-index-lab/internal/domain"
)

// observation CSV columns. Header is matched case-insensitively; Name is
// optional for legacy exports keyed by ticker only.
const (
	colDate   = "date"
	colTicker = "ticker"
	colPrice  = "price"
	colName   = "name"
)

// LoadObservationsCSV parses price observation rows from CSV with a
// header line. Dates accept YYYY-MM-DD or RFC3339; rows with an empty or
// unparseable price are skipped (upstream exports carry blank cells for
// non-publishing days).
func LoadObservationsCSV(r io.Reader) ([]domain.PriceObservation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read observations header: %w", err)
	}
	cols := headerIndex(header)
	for _, required := range []string{colDate, colTicker, colPrice} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("observations csv missing column %q", required)
		}
	}

	var obs []domain.PriceObservation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read observations line %d: %w", line+1, err)
		}
		line++

		rawPrice := strings.TrimSpace(record[cols[colPrice]])
		if rawPrice == "" {
			continue
		}
		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			continue
		}

		date, err := parseDate(record[cols[colDate]])
		if err != nil {
			return nil, fmt.Errorf("observations line %d: %w", line, err)
		}

		ticker := strings.TrimSpace(record[cols[colTicker]])
		name := ""
		if i, ok := cols[colName]; ok && i < len(record) {
			name = strings.TrimSpace(record[i])
		}

		obs = append(obs, domain.PriceObservation{
			Key:    domain.NewSeriesKey(ticker, name),
			Ticker: ticker,
			Name:   name,
			Date:   domain.Day(date),
			Price:  price,
		})
	}

	return obs, nil
}

// LoadClassificationCSV parses catalog records from CSV with an
// item,group,region,sector header (any order). Region sentinels normalize
// to absent.
func LoadClassificationCSV(r io.Reader) ([]domain.ClassificationRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read classification header: %w", err)
	}
	cols := headerIndex(header)
	for _, required := range []string{"item", "group", "sector"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("classification csv missing column %q", required)
		}
	}

	var recs []domain.ClassificationRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read classification row: %w", err)
		}

		rec := domain.ClassificationRecord{
			Item:   strings.TrimSpace(record[cols["item"]]),
			Group:  strings.TrimSpace(record[cols["group"]]),
			Sector: strings.TrimSpace(record[cols["sector"]]),
		}
		if i, ok := cols["region"]; ok && i < len(record) {
			rec.Region = domain.OptionalField(record[i])
		}
		if rec.Item == "" {
			continue
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

// tickerMappingJSON mirrors the catalog export shape:
// [{"ticker": ..., "inputs": [{"item","group","region"}], "outputs": [...]}]
type tickerMappingJSON struct {
	Ticker  string            `json:"ticker"`
	Inputs  []basketEntryJSON `json:"inputs"`
	Outputs []basketEntryJSON `json:"outputs"`
}

type basketEntryJSON struct {
	Item   string `json:"item"`
	Group  string `json:"group"`
	Region string `json:"region"`
}

// LoadTickerMappingsJSON parses the ticker mapping catalog. Item and
// region sentinels ("", "nan", "none") normalize to absent.
func LoadTickerMappingsJSON(r io.Reader) ([]domain.TickerMapping, error) {
	var wire []tickerMappingJSON
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode ticker mappings: %w", err)
	}

	mappings := make([]domain.TickerMapping, 0, len(wire))
	for _, w := range wire {
		if strings.TrimSpace(w.Ticker) == "" {
			return nil, fmt.Errorf("ticker mapping with empty ticker")
		}
		mappings = append(mappings, domain.TickerMapping{
			Ticker:  strings.TrimSpace(w.Ticker),
			Inputs:  basketFromWire(w.Inputs),
			Outputs: basketFromWire(w.Outputs),
		})
	}

	return mappings, nil
}

func basketFromWire(entries []basketEntryJSON) []domain.BasketEntry {
	out := make([]domain.BasketEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.BasketEntry{
			ItemKey: domain.OptionalField(e.Item),
			Group:   strings.TrimSpace(e.Group),
			Region:  domain.OptionalField(e.Region),
		})
	}
	return out
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
