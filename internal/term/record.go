package term

import (
	"errors"
	"fmt"
	"slices"
)

// ErrArityMismatch is returned when two records of different shape are combined.
var ErrArityMismatch = errors.New("arity mismatch")

// Record is one row of a table: a fixed-arity positional tuple of terms.
//
// Table identifies the record's table (the tuple's leading tag); Fields[i]
// holds the value at schema position i. A partial record may contain
// Unspecified at any position.
type Record struct {
	Table  string
	Fields []Value
}

// Tuple is a projected row returned by a selection: the values of the
// projected positions in projection order.
type Tuple []Value

// NewRecord creates a record for table from positional values.
func NewRecord(table string, fields ...Value) Record {
	return Record{Table: table, Fields: fields}
}

// Blank returns a partial record of the given arity with every position
// Unspecified. Callers set the positions they want to change.
func Blank(table string, arity int) Record {
	fields := make([]Value, arity)
	for i := range fields {
		fields[i] = Unspecified{}
	}
	return Record{Table: table, Fields: fields}
}

// Arity returns the number of fields.
func (r Record) Arity() int {
	return len(r.Fields)
}

// Clone returns a copy whose Fields slice does not alias r's.
func (r Record) Clone() Record {
	return Record{Table: r.Table, Fields: slices.Clone(r.Fields)}
}

// IsPartial reports whether any field is Unspecified.
func (r Record) IsPartial() bool {
	return slices.ContainsFunc(r.Fields, IsUnspecified)
}

// String renders the record as {table, f1, f2, ...}.
func (r Record) String() string {
	s := "{" + r.Table
	for _, f := range r.Fields {
		s += ", " + Format(f)
	}
	return s + "}"
}

// Merge overlays partial onto stored position by position.
//
// Positions holding Unspecified keep the stored value; every other value,
// Null included, replaces it. The result never contains Unspecified as
// long as stored is complete. Both records must have the same arity.
//
// Merge with an all-Unspecified partial returns a copy of stored, and
// merging the same partial twice gives the same result as merging it once.
func Merge(stored, partial Record) (Record, error) {
	if stored.Arity() != partial.Arity() {
		return Record{}, fmt.Errorf("merge %s: %w (stored %d, partial %d)",
			stored.Table, ErrArityMismatch, stored.Arity(), partial.Arity())
	}
	merged := stored.Clone()
	for i, v := range partial.Fields {
		if !IsUnspecified(v) {
			merged.Fields[i] = v
		}
	}
	return merged, nil
}
