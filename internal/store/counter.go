package store

import (
	"context"
)

// UpdateCounter atomically adds incr to the table's counter and returns
// the new value. Counters start at 0.
//
// The update is lock-free and independent of any activity: it is never
// rolled back, and calls from dirty activities, transactions or neither
// all draw from the same sequence. For disc tables the new value is
// persisted afterwards; a persistence failure is logged and does not
// affect the returned value.
//
// A missing table aborts with NoExists.
func (s *Store) UpdateCounter(ctx context.Context, tab string, incr int64) int64 {
	t := s.lookup(tab)
	v := t.counter.Add(incr)

	if t.def.Disc {
		if err := saveCounter(ctx, s.db, tab, v); err != nil {
			s.logger.Warn("failed to persist counter", "table", tab, "value", v, "error", err)
		}
	}
	return v
}

// ReadCounter returns the current value of the table's counter.
func (s *Store) ReadCounter(tab string) int64 {
	return s.lookup(tab).counter.Load()
}
