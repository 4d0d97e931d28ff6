// Package querymatch translates the filter and projection of a query into
// the store's native match specification.
//
// Field names resolve to record positions through the table's schema, and
// every head variable is numbered after its position ('$1' is the first
// field). Equality against a constant on a position nothing else refers to
// is folded into the head, which lets the store answer key equality with a
// point lookup. Every other comparison becomes a guard.
//
// Only conjunctions of comparisons are native. Or and Not are rejected with
// ErrCodeUnsupportedPredicate wherever they appear. Ordering and limit are
// never part of a match specification; the adapter handles them.
package querymatch
