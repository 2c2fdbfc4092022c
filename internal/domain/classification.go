package domain

// ClassificationRecord is one row of the externally-editable commodity
// catalog: an item key plus its group/region/sector assignment. Region is
// optional; items without a region join group indices but no regional one.
type ClassificationRecord struct {
	Item   string
	Group  string
	Region *string
	Sector string
}

// Classification holds the three independent item→value maps built from the
// catalog. They are separate maps so a missing region does not block group
// or sector lookup for the same item.
type Classification struct {
	Group  map[SeriesKey]string
	Region map[SeriesKey]string
	Sector map[SeriesKey]string
}

// Empty reports whether no items are classified at all. An empty
// classification fails open: downstream filtering drops every row.
func (c Classification) Empty() bool {
	return len(c.Group) == 0 && len(c.Region) == 0 && len(c.Sector) == 0
}

// MatchPolicy controls what happens when a series key has no
// classification entry.
type MatchPolicy string

const (
	// MatchWarn logs each unmatched key once per pass. Unmatched rows stay
	// in the table but join no index.
	MatchWarn MatchPolicy = "warn"
	// MatchDrop keeps unmatched rows out of indices silently.
	MatchDrop MatchPolicy = "drop"
	// MatchFail aborts the pass with an error naming the unmatched keys.
	MatchFail MatchPolicy = "fail"
)
