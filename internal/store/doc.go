// Package store implements the embedded, node-local ordered term store.
//
// Each table is an ordered set of term.Records keyed by one position and
// held in a B-tree (github.com/google/btree). Tables may additionally keep
// a disc copy in SQLite, written through on every committed mutation and
// reloaded when the table is created again on the same database file.
//
// # Activities
//
// All record access happens inside an activity:
//
//   - Dirty: operations apply directly to the live tables. Each single
//     operation is atomic; a sequence of operations is not isolated.
//   - Transaction: transactions are serialized against each other. Reads
//     see a copy-on-write snapshot of each table taken on first access
//     plus the transaction's own writes. Writes are buffered and applied
//     (disc first, then memory) only when the body returns nil.
//
// # Native failure signals
//
// Store operations do not return errors for conditions that abort the
// whole activity. They panic with *Abort instead, unwinding the caller the
// way an exit would:
//
//   - operating on a table that does not exist (reason NoExists)
//   - a malformed match specification (reason BadArg)
//   - an explicit Activity.Abort(reason)
//
// Transaction recovers *Abort, discards buffered writes and returns the
// *Abort as its error. Any other panic raised by the body propagates after
// the buffered writes are discarded. Dirty does not recover anything.
//
// Operations that can fail without aborting (Write and Delete on a disc
// table, records of the wrong arity) return an error.
//
// # Counters
//
// Every table carries a 64-bit counter updated with UpdateCounter. Counter
// updates are lock-free, independent of any activity and never rolled
// back, so concurrent callers always observe distinct values.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - Single connection: SQLite allows one writer at a time
package store
