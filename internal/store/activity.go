package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/termstore/internal/term"
)

// ErrInvalidRecord is returned by Write for records that do not fit their
// table or contain unstorable values.
var ErrInvalidRecord = errors.New("invalid record")

// Activity is the handle through which a Dirty or Transaction body
// accesses tables. It must not be used after the body returns or from
// goroutines other than the one running the body.
type Activity struct {
	store *Store
	ctx   context.Context
	tx    *txn // nil for dirty activities
}

// Transactional reports whether the activity runs inside a transaction.
func (a *Activity) Transactional() bool {
	return a.tx != nil
}

// Abort unwinds the activity with the given reason. Inside a transaction
// the buffered writes are discarded and Transaction returns
// &Abort{Reason: reason}.
func (a *Activity) Abort(reason any) {
	abort(reason)
}

// view runs fn against the tree this activity reads from: the
// transaction's snapshot, or the live tree under its read lock.
func (a *Activity) view(t *table, fn func(*tree)) {
	if a.tx != nil {
		fn(a.tx.view(t))
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn(t.tree)
}

// Read returns the record stored under key, as a zero or one element slice.
func (a *Activity) Read(tab string, key term.Value) []term.Record {
	t := a.store.lookup(tab)
	key = canonicalKey(key)

	var out []term.Record
	a.view(t, func(tr *tree) {
		if e, ok := tr.Get(pivot(key)); ok {
			out = append(out, e.rec.Clone())
		}
	})
	return out
}

// Write stores rec, replacing any record with the same key.
//
// Strings are NFC normalized before storage. A record whose arity differs
// from the table's or that holds Unspecified, NaN or infinite values is
// rejected with ErrInvalidRecord. For disc tables outside a transaction,
// a database failure is returned and memory is left unchanged.
func (a *Activity) Write(rec term.Record) error {
	t := a.store.lookup(rec.Table)

	stored, err := canonicalRecord(t.def, rec)
	if err != nil {
		return err
	}
	e := entry{key: stored.Fields[t.def.KeyPos], rec: stored}

	if a.tx != nil {
		a.tx.view(t).ReplaceOrInsert(e)
		a.tx.log = append(a.tx.log, mutation{table: t, op: opPut, entry: e})
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.def.Disc {
		if err := putDisc(a.ctx, a.store.db, t.def.Name, e); err != nil {
			return fmt.Errorf("write %s: %w", t.def.Name, err)
		}
	}
	t.tree.ReplaceOrInsert(e)
	return nil
}

// Delete removes the record stored under key. Deleting an absent key is
// not an error.
func (a *Activity) Delete(tab string, key term.Value) error {
	t := a.store.lookup(tab)
	e := pivot(canonicalKey(key))

	if a.tx != nil {
		a.tx.view(t).Delete(e)
		a.tx.log = append(a.tx.log, mutation{table: t, op: opDelete, entry: e})
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.def.Disc {
		if err := deleteDisc(a.ctx, a.store.db, t.def.Name, e.key); err != nil {
			return fmt.Errorf("delete %s: %w", t.def.Name, err)
		}
	}
	t.tree.Delete(e)
	return nil
}

// Select returns the projections of records matching spec, in key order.
//
// A positive limit stops the scan after that many matches. When the head
// fixes the key position with a constant, the record is fetched by point
// lookup instead of a scan.
func (a *Activity) Select(tab string, spec MatchSpec, limit int) []term.Tuple {
	t := a.store.lookup(tab)
	m := compileMatch(t.def, spec)

	var out []term.Tuple
	a.view(t, func(tr *tree) {
		if m.keyEq != nil {
			if e, ok := tr.Get(pivot(canonicalKey(m.keyEq))); ok {
				if tuple, ok := m.match(e.rec); ok {
					out = append(out, tuple)
				}
			}
			return
		}
		tr.Ascend(func(e entry) bool {
			if tuple, ok := m.match(e.rec); ok {
				out = append(out, tuple)
			}
			return limit <= 0 || len(out) < limit
		})
	})
	return out
}

// Count returns the number of records in the table.
func (a *Activity) Count(tab string) int {
	t := a.store.lookup(tab)
	var n int
	a.view(t, func(tr *tree) { n = tr.Len() })
	return n
}

// First returns the smallest key of the table.
func (a *Activity) First(tab string) (term.Value, bool) {
	return a.traverse(tab, treeFirst)
}

// Last returns the largest key of the table.
func (a *Activity) Last(tab string) (term.Value, bool) {
	return a.traverse(tab, treeLast)
}

// Next returns the smallest key strictly greater than key. key does not
// have to be present in the table.
func (a *Activity) Next(tab string, key term.Value) (term.Value, bool) {
	key = canonicalKey(key)
	return a.traverse(tab, func(tr *tree) (term.Value, bool) { return treeNext(tr, key) })
}

// Prev returns the largest key strictly less than key.
func (a *Activity) Prev(tab string, key term.Value) (term.Value, bool) {
	key = canonicalKey(key)
	return a.traverse(tab, func(tr *tree) (term.Value, bool) { return treePrev(tr, key) })
}

func (a *Activity) traverse(tab string, step func(*tree) (term.Value, bool)) (term.Value, bool) {
	t := a.store.lookup(tab)
	var (
		key   term.Value
		found bool
	)
	a.view(t, func(tr *tree) { key, found = step(tr) })
	return key, found
}

// canonicalRecord validates rec against def and normalizes its values.
func canonicalRecord(def TableDef, rec term.Record) (term.Record, error) {
	if rec.Arity() != def.Arity {
		return term.Record{}, fmt.Errorf("%w: %s has arity %d, got %d",
			ErrInvalidRecord, def.Name, def.Arity, rec.Arity())
	}
	out := term.Record{Table: def.Name, Fields: make([]term.Value, def.Arity)}
	for i, v := range rec.Fields {
		c, err := term.Canonical(v)
		if err != nil {
			return term.Record{}, fmt.Errorf("%w: %s field %d: %v", ErrInvalidRecord, def.Name, i, err)
		}
		out.Fields[i] = c
	}
	return out, nil
}

// canonicalKey normalizes a lookup key the way Write normalizes stored
// keys. Keys that cannot be stored cannot be found either, so they are
// looked up as given.
func canonicalKey(key term.Value) term.Value {
	c, err := term.Canonical(key)
	if err != nil {
		return key
	}
	return c
}
