package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/term"
)

func TestWriteRead(t *testing.T) {
	s := createTestStore(t)
	seedUsers(t, s, user(1, "ada", 36))

	dirty(t, s, func(a *Activity) {
		got := a.Read("users", term.Int(1))
		require.Len(t, got, 1)
		assert.Equal(t, user(1, "ada", 36), got[0])

		assert.Empty(t, a.Read("users", term.Int(2)))
	})
}

func TestWriteReplacesByKey(t *testing.T) {
	s := createTestStore(t)
	seedUsers(t, s, user(1, "ada", 36), user(1, "grace", 45))

	dirty(t, s, func(a *Activity) {
		assert.Equal(t, 1, a.Count("users"))
		assert.Equal(t, []term.Record{user(1, "grace", 45)}, a.Read("users", term.Int(1)))
	})
}

func TestReadFindsIntegralFloatKey(t *testing.T) {
	s := createTestStore(t)
	seedUsers(t, s, user(7, "ada", 36))

	dirty(t, s, func(a *Activity) {
		assert.Len(t, a.Read("users", term.Float(7)), 1)
	})
}

func TestWriteRejectsInvalidRecords(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		rec  term.Record
	}{
		{"short", term.NewRecord("users", term.Int(1))},
		{"unspecified", term.NewRecord("users", term.Int(1), term.Unspecified{}, term.Int(3))},
		{"nan", term.NewRecord("users", term.Int(1), term.String("x"), term.Float(math.NaN()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dirty(t, s, func(a *Activity) {
				err := a.Write(tt.rec)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
			})
		})
	}

	dirty(t, s, func(a *Activity) { assert.Equal(t, 0, a.Count("users")) })
}

func TestWriteNormalizesStrings(t *testing.T) {
	s := createTestStore(t)
	// decomposed form: "e" + combining acute accent
	seedUsers(t, s, term.NewRecord("users", term.String("e\u0301"), term.Null{}, term.Null{}))

	dirty(t, s, func(a *Activity) {
		assert.Len(t, a.Read("users", term.String("\u00e9")), 1)
		assert.Len(t, a.Read("users", term.String("e\u0301")), 1)
	})
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	seedUsers(t, s, user(1, "ada", 36), user(2, "grace", 45))

	dirty(t, s, func(a *Activity) {
		require.NoError(t, a.Delete("users", term.Int(1)))
		require.NoError(t, a.Delete("users", term.Int(1)))
		require.NoError(t, a.Delete("users", term.Int(99)))

		assert.Equal(t, 1, a.Count("users"))
		assert.Empty(t, a.Read("users", term.Int(1)))
	})
}

func TestTraversal(t *testing.T) {
	s := createTestStore(t)
	seedUsers(t, s, user(30, "c", 0), user(10, "a", 0), user(20, "b", 0))

	dirty(t, s, func(a *Activity) {
		first, ok := a.First("users")
		require.True(t, ok)
		assert.Equal(t, term.Int(10), first)

		last, ok := a.Last("users")
		require.True(t, ok)
		assert.Equal(t, term.Int(30), last)

		next, ok := a.Next("users", term.Int(10))
		require.True(t, ok)
		assert.Equal(t, term.Int(20), next)

		// absent key: next greater
		next, ok = a.Next("users", term.Int(15))
		require.True(t, ok)
		assert.Equal(t, term.Int(20), next)

		_, ok = a.Next("users", term.Int(30))
		assert.False(t, ok)

		prev, ok := a.Prev("users", term.Int(30))
		require.True(t, ok)
		assert.Equal(t, term.Int(20), prev)

		_, ok = a.Prev("users", term.Int(10))
		assert.False(t, ok)
	})
}

func TestTraversalEmptyTable(t *testing.T) {
	s := createTestStore(t)

	dirty(t, s, func(a *Activity) {
		_, ok := a.First("users")
		assert.False(t, ok)
		_, ok = a.Last("users")
		assert.False(t, ok)
	})
}

func TestMissingTableAbortsWithNoExists(t *testing.T) {
	s := createTestStore(t)

	ops := map[string]func(a *Activity){
		"read":   func(a *Activity) { a.Read("ghost", term.Int(1)) },
		"write":  func(a *Activity) { _ = a.Write(term.NewRecord("ghost", term.Int(1))) },
		"delete": func(a *Activity) { _ = a.Delete("ghost", term.Int(1)) },
		"count":  func(a *Activity) { a.Count("ghost") },
		"first":  func(a *Activity) { a.First("ghost") },
		"select": func(a *Activity) { a.Select("ghost", MatchAll(1), 0) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				ab, ok := r.(*Abort)
				require.True(t, ok, "expected *Abort panic, got %v", r)
				assert.Equal(t, NoExists{Table: "ghost"}, ab.Reason)
			}()
			_ = s.Dirty(context.Background(), func(a *Activity) error {
				op(a)
				return nil
			})
		})
	}
}

func TestNoExistsTable(t *testing.T) {
	table, ok := NoExistsTable(&Abort{Reason: NoExists{Table: "ghost"}})
	assert.True(t, ok)
	assert.Equal(t, "ghost", table)

	_, ok = NoExistsTable(&Abort{Reason: "other"})
	assert.False(t, ok)
}
