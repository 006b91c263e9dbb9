package analytics

import (
	"strings"

	"supplychain-analytics/internal/model"
)

// FilterLogistics returns the records matching the spec. Date bounds are
// inclusive; an empty region or state set leaves that dimension
// unrestricted. Output preserves input order, so identical input yields
// identical output.
func FilterLogistics(records []model.LogisticsRecord, spec model.FilterSpec) []model.LogisticsRecord {
	regions := memberSet(spec.Regions)
	states := memberSet(spec.States)

	out := make([]model.LogisticsRecord, 0, len(records))
	for _, rec := range records {
		if !spec.Range.Contains(rec.Date) {
			continue
		}
		if !matches(regions, rec.Region) || !matches(states, rec.State) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FilterInventory is the inventory counterpart of FilterLogistics.
func FilterInventory(records []model.InventoryRecord, spec model.FilterSpec) []model.InventoryRecord {
	regions := memberSet(spec.Regions)
	states := memberSet(spec.States)

	out := make([]model.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if !spec.Range.Contains(rec.Date) {
			continue
		}
		if !matches(regions, rec.Region) || !matches(states, rec.State) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func memberSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func matches(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[strings.ToLower(strings.TrimSpace(value))]
	return ok
}
