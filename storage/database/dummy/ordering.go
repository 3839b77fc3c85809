package dummydb

import (
	"sort"

	"github.com/trezcool/gradebook/core"
)

// lessFunc compares a and b on a field. ok is false when the field is not supported.
type lessFunc[T any] func(a, b T, field string) (less, equal, ok bool)

// sortBy sorts items on the given orderings, in turn, then by id.
// Unknown fields are ignored.
func sortBy[T any](items []T, less lessFunc[T], ordering []core.Ordering) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			l, eq, ok := less(items[i], items[j], ord.Field)
			if !ok || eq {
				continue
			}
			if ord.Ascending {
				return l
			}
			return !l
		}
		l, _, _ := less(items[i], items[j], "id")
		return l
	})
}
