// Package term provides the value model of the ordered term store.
//
// A term is one of Null, Bool, Int, Float, String or List. Records are
// fixed-arity positional tuples of terms tagged with their table name.
//
// This package imports nothing internal. Every other package that touches
// stored data builds on it.
//
// Key design constraints:
//   - Terms have one total order (Compare) used for keys, guards and sorting
//   - Unspecified is a sentinel for "leave this field alone" in partial
//     records; it is distinct from Null and is never persisted
//   - Strings are NFC normalized before they are written (Canonical)
package term
