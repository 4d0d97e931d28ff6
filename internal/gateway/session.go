package gateway

import (
	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/term"
)

// Session is the record-level API available inside a Run body. It is
// bound to the body's execution context and must not escape it.
type Session struct {
	act *store.Activity
	gw  *Gateway
}

// Transactional reports whether the session runs in a Transaction.
func (s *Session) Transactional() bool {
	return s.act.Transactional()
}

// Abort aborts the execution context. Run returns an ErrCodeAborted error
// carrying reason; inside a Transaction nothing the body wrote is kept.
func (s *Session) Abort(reason any) {
	s.act.Abort(reason)
}

// Insert writes rec to table, replacing any record with the same key.
// A write the store does not accept yields ErrCodeWriteFailed.
func (s *Session) Insert(table string, rec term.Record) (term.Record, error) {
	rec.Table = table
	if err := s.act.Write(rec); err != nil {
		return term.Record{}, NewWriteFailedError(table, err)
	}
	return rec, nil
}

// Get returns the record stored under key. A missing record is not an
// error.
func (s *Session) Get(table string, key term.Value) (term.Record, bool) {
	recs := s.act.Read(table, key)
	if len(recs) == 0 {
		return term.Record{}, false
	}
	return recs[0], true
}

// Update merges partial into the record stored under key and writes the
// result. Unspecified positions keep their stored values; the key
// position always keeps key.
//
// Under Dirty the read and the write are separate operations and a
// concurrent writer can interleave between them.
func (s *Session) Update(table string, key term.Value, partial term.Record) (term.Record, error) {
	stored, ok := s.Get(table, key)
	if !ok {
		return term.Record{}, NewNotFoundError(table, key)
	}

	if def, ok := s.gw.store.TableInfo(table); ok && def.KeyPos < partial.Arity() {
		partial = partial.Clone()
		partial.Fields[def.KeyPos] = term.Unspecified{}
	}
	partial.Table = table

	merged, err := term.Merge(stored, partial)
	if err != nil {
		return term.Record{}, NewWriteFailedError(table, err)
	}
	return s.Insert(table, merged)
}

// Delete removes the record stored under key and returns key. Deleting a
// missing key succeeds.
func (s *Session) Delete(table string, key term.Value) (term.Value, error) {
	if err := s.act.Delete(table, key); err != nil {
		return nil, NewWriteFailedError(table, err)
	}
	return key, nil
}

// Select returns the projections of matching records in key order. A
// positive limit is enforced by the store.
func (s *Session) Select(table string, spec store.MatchSpec, limit int) []term.Tuple {
	return s.act.Select(table, spec, limit)
}

// Count returns the number of records in table.
func (s *Session) Count(table string) int {
	return s.act.Count(table)
}

// First returns the smallest key in table.
func (s *Session) First(table string) (term.Value, bool) {
	return s.act.First(table)
}

// Last returns the largest key in table.
func (s *Session) Last(table string) (term.Value, bool) {
	return s.act.Last(table)
}

// Next returns the smallest key greater than key.
func (s *Session) Next(table string, key term.Value) (term.Value, bool) {
	return s.act.Next(table, key)
}

// Prev returns the largest key less than key.
func (s *Session) Prev(table string, key term.Value) (term.Value, bool) {
	return s.act.Prev(table, key)
}
