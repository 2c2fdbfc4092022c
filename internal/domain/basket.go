package domain

import "strings"

// BasketEntry is one line of an equity's cost or product exposure: either a
// specific named commodity, a (group, region) sub-index, or a group index.
// Nil ItemKey/Region mean "absent"; resolution falls through item →
// regional index → group index.
type BasketEntry struct {
	ItemKey *string
	Group   string
	Region  *string
}

// TickerMapping links one equity ticker to its input (cost) and output
// (product) baskets. Owned by an external catalog; read-only here.
type TickerMapping struct {
	Ticker  string
	Inputs  []BasketEntry
	Outputs []BasketEntry
}

// OptionalField normalizes the loosely-typed absence sentinels that the
// catalog historically carried ("", "nan", "none", whitespace) into nil.
// Loaders call this once at the boundary; nothing downstream re-checks
// sentinel strings.
func OptionalField(s string) *string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return nil
	}
	return &s
}
