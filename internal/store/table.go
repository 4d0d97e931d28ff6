package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/roach88/termstore/internal/term"
)

// btreeDegree is the B-tree branching factor used for every table.
const btreeDegree = 32

// TableDef describes a table.
type TableDef struct {
	Name string

	// Arity is the number of fields of every record.
	Arity int

	// KeyPos is the 0-based field position holding the primary key.
	KeyPos int

	// Disc keeps a durable copy of the table in the store's database.
	Disc bool
}

func (d TableDef) validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTableDef)
	case d.Arity < 1:
		return fmt.Errorf("%w: arity %d", ErrInvalidTableDef, d.Arity)
	case d.KeyPos < 0 || d.KeyPos >= d.Arity:
		return fmt.Errorf("%w: key position %d outside arity %d", ErrInvalidTableDef, d.KeyPos, d.Arity)
	}
	return nil
}

// entry is one record in a table tree, ordered by key.
type entry struct {
	key term.Value
	rec term.Record
}

func lessEntry(a, b entry) bool {
	return term.Compare(a.key, b.key) < 0
}

// pivot returns a search entry for key.
func pivot(key term.Value) entry {
	return entry{key: key}
}

type tree = btree.BTreeG[entry]

// table is a live table. mu guards tree; counter is lock-free.
type table struct {
	def     TableDef
	mu      sync.RWMutex
	tree    *tree
	counter atomic.Int64
}

func newTable(def TableDef) *table {
	return &table{
		def:  def,
		tree: btree.NewG(btreeDegree, lessEntry),
	}
}

// snapshot returns a copy-on-write clone of the live tree.
// Clone marks the shared nodes read-only, which is itself a write to the
// tree, so it needs the exclusive lock.
func (t *table) snapshot() *tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.Clone()
}

// The helpers below operate on any tree, live or snapshot.
// Callers hold whatever lock the tree needs.

func treeFirst(tr *tree) (term.Value, bool) {
	e, ok := tr.Min()
	return e.key, ok
}

func treeLast(tr *tree) (term.Value, bool) {
	e, ok := tr.Max()
	return e.key, ok
}

// treeNext returns the smallest key strictly greater than key. key need
// not be present.
func treeNext(tr *tree, key term.Value) (term.Value, bool) {
	var (
		next  term.Value
		found bool
	)
	tr.AscendGreaterOrEqual(pivot(key), func(e entry) bool {
		if term.Compare(e.key, key) == 0 {
			return true
		}
		next, found = e.key, true
		return false
	})
	return next, found
}

// treePrev returns the largest key strictly less than key.
func treePrev(tr *tree, key term.Value) (term.Value, bool) {
	var (
		prev  term.Value
		found bool
	)
	tr.DescendLessOrEqual(pivot(key), func(e entry) bool {
		if term.Compare(e.key, key) == 0 {
			return true
		}
		prev, found = e.key, true
		return false
	})
	return prev, found
}
