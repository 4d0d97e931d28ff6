package store

import (
	"context"
)

type opKind int

const (
	opPut opKind = iota
	opDelete
)

// mutation is one buffered transaction write.
type mutation struct {
	table *table
	op    opKind
	entry entry
}

// txn holds the private state of one transaction: a snapshot per table
// touched and the ordered log of writes to replay on commit.
type txn struct {
	views map[*table]*tree
	log   []mutation
}

func (tx *txn) view(t *table) *tree {
	if v, ok := tx.views[t]; ok {
		return v
	}
	v := t.snapshot()
	tx.views[t] = v
	return v
}

// Transaction runs fn as an isolated transaction.
//
// Transactions are serialized with each other. If fn returns nil, its
// writes are persisted to disc (in one database transaction) and then
// applied to the live tables. If fn returns an error, the writes are
// discarded and the error is returned unchanged. If fn is aborted (see
// Activity.Abort and the package documentation), the writes are discarded
// and the *Abort is returned. Any other panic is re-raised after the
// writes are discarded.
//
// Transactions must not be nested: calling Transaction from inside fn
// deadlocks.
func (s *Store) Transaction(ctx context.Context, fn func(*Activity) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txn{views: make(map[*table]*tree)}
	act := &Activity{store: s, ctx: ctx, tx: tx}

	defer func() {
		if r := recover(); r != nil {
			if ab, ok := r.(*Abort); ok {
				s.logger.Debug("transaction aborted", "reason", ab.Reason)
				err = ab
				return
			}
			panic(r)
		}
	}()

	if err := fn(act); err != nil {
		return err
	}
	return s.commit(ctx, tx)
}

func (s *Store) commit(ctx context.Context, tx *txn) error {
	if len(tx.log) == 0 {
		return nil
	}

	if err := commitDisc(ctx, s.db, tx.log); err != nil {
		return &Abort{Reason: CommitFailed{Err: err}}
	}

	for _, m := range tx.log {
		m.table.mu.Lock()
		switch m.op {
		case opPut:
			m.table.tree.ReplaceOrInsert(m.entry)
		case opDelete:
			m.table.tree.Delete(m.entry)
		}
		m.table.mu.Unlock()
	}
	return nil
}
