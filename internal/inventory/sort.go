package inventory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
)

// ParseSortKey maps query values to a SortKey, defaulting to expiry order.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByName, SortByCategory:
		return SortKey(s)
	default:
		return SortByExpiry
	}
}

func sortItems(items []*Item, key SortKey) {
	switch key {
	case SortByName:
		slices.SortStableFunc(items, func(a, b *Item) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case SortByCategory:
		slices.SortStableFunc(items, func(a, b *Item) int {
			if c := cmp.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category)); c != 0 {
				return c
			}
			return expiry.CompareOffsets(a.DaysLeft, b.DaysLeft)
		})
	default:
		expiry.SortByExpiry(items, func(it *Item) expiry.Offset { return it.DaysLeft })
	}
}
