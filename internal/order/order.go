// Package order sorts name-mapped result rows by a multi-key ordering.
package order

import (
	"slices"

	"github.com/roach88/termstore/internal/queryir"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/term"
)

// Comparator orders two rows. It returns a negative number when a sorts
// before b, a positive number when b sorts before a, and zero otherwise.
type Comparator func(a, b schema.Row) int

// Build returns the comparator for ordering, or nil for an empty ordering.
// A nil comparator means "keep the store's order".
//
// Keys are evaluated left to right: ascending keys put the lesser value
// first, descending keys the greater, and equal values fall through to
// the next key. Values compare in term order; a field missing from a row
// compares as null.
func Build(ordering queryir.Ordering) Comparator {
	if len(ordering) == 0 {
		return nil
	}
	keys := slices.Clone(ordering)
	return func(a, b schema.Row) int {
		for _, k := range keys {
			c := term.Compare(field(a, k.Field), field(b, k.Field))
			if c == 0 {
				continue
			}
			if k.Dir == queryir.Desc {
				return -c
			}
			return c
		}
		return 0
	}
}

// Sort orders rows in place. The sort is stable: rows that compare equal
// on every key keep their relative order. An empty ordering leaves rows
// untouched.
func Sort(rows []schema.Row, ordering queryir.Ordering) {
	cmp := Build(ordering)
	if cmp == nil {
		return
	}
	slices.SortStableFunc(rows, cmp)
}

func field(r schema.Row, name string) term.Value {
	if v, ok := r[name]; ok && v != nil {
		return v
	}
	return term.Null{}
}
