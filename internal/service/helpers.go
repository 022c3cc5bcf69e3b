package service

import (
	"sort"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

// diffIDs returns the ids in next but not in current, and the ids in current
// but not in next.
func diffIDs(current, next []string) (added, removed []string) {
	have := make(map[string]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[string]struct{}, len(next))
	for _, id := range next {
		if id == "" {
			continue
		}
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		if _, ok := have[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := want[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func shiftIDs(shifts []*domain.Shift) []string {
	ids := make([]string, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}
	return ids
}

func mileageIDs(mileages []*domain.Mileage) []string {
	ids := make([]string, len(mileages))
	for i, m := range mileages {
		ids[i] = m.ID
	}
	return ids
}
