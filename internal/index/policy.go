package index

import "commodity-index-lab/internal/domain"

// Policies resolves per-group aggregation behavior once, from
// configuration, replacing scattered comparisons against special group
// names.
type Policies struct {
	absolute map[string]struct{}
	excluded map[string]struct{}
}

// NewPolicies builds the resolver. Groups in absolute aggregate as
// AbsoluteLevel (signed-differential observations); groups in excluded are
// skipped entirely during group/regional/sector construction.
func NewPolicies(absolute, excluded []string) Policies {
	p := Policies{
		absolute: make(map[string]struct{}, len(absolute)),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, g := range absolute {
		p.absolute[g] = struct{}{}
	}
	for _, g := range excluded {
		p.excluded[g] = struct{}{}
	}
	return p
}

// ForGroup returns the group's aggregation policy. ReturnBased unless
// configured otherwise.
func (p Policies) ForGroup(group string) domain.AggregationPolicy {
	if _, ok := p.absolute[group]; ok {
		return domain.AbsoluteLevel
	}
	return domain.ReturnBased
}

// Excluded reports whether the group is kept out of index construction.
func (p Policies) Excluded(group string) bool {
	_, ok := p.excluded[group]
	return ok
}
