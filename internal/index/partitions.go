package index

import (
	"commodity-index-lab/internal/dataset"
	"commodity-index-lab/internal/domain"
)

// BuildGroup builds the composite index for one group from the classified
// rows of the table.
func BuildGroup(t dataset.Table, group string, policies Policies, base float64) domain.CompositeIndex {
	var rows []dataset.Row
	for _, r := range t.Classified() {
		if r.Group == group {
			rows = append(rows, r)
		}
	}
	return Build(rows, policies.ForGroup(group), base)
}

// BuildAllGroups builds one index per classified group, honoring
// exclusions. Groups whose partition is empty are not emitted.
func BuildAllGroups(t dataset.Table, policies Policies, base float64) map[string]domain.CompositeIndex {
	out := make(map[string]domain.CompositeIndex)
	for _, group := range t.Groups() {
		if policies.Excluded(group) {
			continue
		}
		idx := BuildGroup(t, group, policies, base)
		if len(idx) == 0 {
			continue
		}
		out[group] = idx
	}
	return out
}

// BuildRegional builds one sub-index per distinct (group, region)
// combination. Rows without a region never join a regional partition; the
// aggregation policy is the group's.
func BuildRegional(t dataset.Table, policies Policies, base float64) map[domain.RegionalKey]domain.CompositeIndex {
	out := make(map[domain.RegionalKey]domain.CompositeIndex)
	for _, key := range t.RegionalKeys() {
		if policies.Excluded(key.Group) {
			continue
		}

		var rows []dataset.Row
		for _, r := range t.Classified() {
			if r.Group == key.Group && r.Region != nil && *r.Region == key.Region {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			continue
		}
		out[key] = Build(rows, policies.ForGroup(key.Group), base)
	}
	return out
}

// BuildSectors builds one index per distinct sector. A sector aggregates
// as AbsoluteLevel only when every one of its rows belongs to an
// absolute-level group; any mixed sector is return-based.
func BuildSectors(t dataset.Table, policies Policies, base float64) map[string]domain.CompositeIndex {
	out := make(map[string]domain.CompositeIndex)
	for _, sector := range t.Sectors() {
		var rows []dataset.Row
		allAbsolute := true
		for _, r := range t.Classified() {
			if r.Sector != sector {
				continue
			}
			if policies.Excluded(r.Group) {
				continue
			}
			if policies.ForGroup(r.Group) != domain.AbsoluteLevel {
				allAbsolute = false
			}
			rows = append(rows, r)
		}
		if len(rows) == 0 {
			continue
		}

		policy := domain.ReturnBased
		if allAbsolute {
			policy = domain.AbsoluteLevel
		}
		out[sector] = Build(rows, policy, base)
	}
	return out
}
