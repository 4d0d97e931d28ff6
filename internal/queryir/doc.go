// Package queryir provides the abstract query representation the adapter
// accepts: a table, a projection, a filter predicate, ordering clauses
// and a limit.
//
// ARCHITECTURE:
//
// The IR sits between callers and the native store:
//
//	[caller / CLI filter parser] → [Query IR] → [querymatch] → [match spec]
//	                                          → [order]      (sort pass)
//
// Only part of the IR compiles to the store's native selection primitive.
//
// NATIVE FRAGMENT:
//
// The native fragment includes:
//   - Compare, BoundCompare, FieldCompare with ==, !=, <, <=, >, >=
//   - And (any nesting)
//   - Projection by field name
//
// The native fragment EXCLUDES:
//   - Or and Not (rejected by the translator)
//   - Ordering (applied in memory after selection)
//   - Limit combined with ordering (applied after the in-memory sort)
//
// Validate reports which parts of a query fall outside the native fragment
// without translating it.
//
// SEALED INTERFACES:
//
// Predicate is a sealed interface using the marker method pattern. Only
// types in this package implement it, so translators can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Compare:
//	    // field op literal
//	case And:
//	    // conjunction
//	default:
//	    // unsupported
//	}
package queryir
