package expiry

import (
	"cmp"
	"slices"
)

// CompareOffsets orders offsets ascending with Unknown after every known
// offset, whatever its sign.
func CompareOffsets(a, b Offset) int {
	switch {
	case a.ok && b.ok:
		return cmp.Compare(a.days, b.days)
	case a.ok:
		return -1
	case b.ok:
		return 1
	default:
		return 0
	}
}

// SortByExpiry stable-sorts items soonest first, Unknown last.
func SortByExpiry[T any](items []T, offset func(T) Offset) {
	slices.SortStableFunc(items, func(a, b T) int {
		return CompareOffsets(offset(a), offset(b))
	})
}

// Filter selects a subset of an inventory view.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterExpiring Filter = "expiring"
	FilterExpired  Filter = "expired"
)

// ParseFilter maps query values to a Filter; anything unrecognised is FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterExpiring, FilterExpired:
		return Filter(s)
	default:
		return FilterAll
	}
}

// Matches reports whether o belongs in the filtered view. Unknown offsets
// only appear under FilterAll.
func (f Filter) Matches(o Offset) bool {
	if f == FilterAll || f == "" {
		return true
	}
	days, ok := o.Value()
	if !ok {
		return false
	}
	switch f {
	case FilterExpiring:
		return days >= 0 && days <= FilterWindowDays
	case FilterExpired:
		return days < 0
	default:
		return true
	}
}
