package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/term"
)

func TestDiscTableSurvivesReopen(t *testing.T) {
	path := testDBPath(t)
	ctx := context.Background()

	s1 := createDiscStore(t, path)
	seedUsers(t, s1, user(1, "ada", 36), user(2, "grace", 45), user(3, "alan", 41))
	dirty(t, s1, func(a *Activity) { require.NoError(t, a.Delete("users", term.Int(2))) })
	err := s1.Transaction(ctx, func(a *Activity) error {
		return a.Write(term.NewRecord("users", term.Int(4), term.String("edsger"), term.Float(72.5)))
	})
	require.NoError(t, err)
	s1.UpdateCounter(ctx, "users", 7)
	require.NoError(t, s1.Close())

	s2 := createDiscStore(t, path)
	dirty(t, s2, func(a *Activity) {
		assert.Equal(t, 3, a.Count("users"))
		assert.Empty(t, a.Read("users", term.Int(2)))
		assert.Equal(t, []term.Record{user(1, "ada", 36)}, a.Read("users", term.Int(1)))
		rec := a.Read("users", term.Int(4))
		require.Len(t, rec, 1)
		assert.Equal(t, term.Float(72.5), rec[0].Fields[2])
	})
	assert.Equal(t, int64(7), s2.ReadCounter("users"))
	assert.Equal(t, int64(8), s2.UpdateCounter(ctx, "users", 1))
}

func TestDiscDeleteMatchesEqualListKey(t *testing.T) {
	path := testDBPath(t)

	s1 := createDiscStore(t, path)
	seedUsers(t, s1, term.NewRecord("users", term.List{term.Int(1), term.String("a")}, term.String("ada"), term.Int(36)))
	dirty(t, s1, func(a *Activity) {
		require.NoError(t, a.Delete("users", term.List{term.Float(1), term.String("a")}))
		assert.Equal(t, 0, a.Count("users"))
	})
	require.NoError(t, s1.Close())

	s2 := createDiscStore(t, path)
	dirty(t, s2, func(a *Activity) { assert.Equal(t, 0, a.Count("users")) })
}

func TestDiscTransactionRollbackNotPersisted(t *testing.T) {
	path := testDBPath(t)
	ctx := context.Background()

	s1 := createDiscStore(t, path)
	err := s1.Transaction(ctx, func(a *Activity) error {
		require.NoError(t, a.Write(user(1, "ada", 36)))
		return errors.New("rollback")
	})
	require.Error(t, err)
	require.NoError(t, s1.Close())

	s2 := createDiscStore(t, path)
	dirty(t, s2, func(a *Activity) { assert.Equal(t, 0, a.Count("users")) })
}

func TestDiscTableDefinitionMismatch(t *testing.T) {
	path := testDBPath(t)
	s1 := createDiscStore(t, path)
	require.NoError(t, s1.Close())

	s2, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer s2.Close()

	err = s2.CreateTable(context.Background(), TableDef{Name: "users", Arity: 4, Disc: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTableDef)
}

func TestSaveCounterMaxWins(t *testing.T) {
	s := createDiscStore(t, testDBPath(t))
	ctx := context.Background()

	require.NoError(t, saveCounter(ctx, s.db, "users", 10))
	require.NoError(t, saveCounter(ctx, s.db, "users", 4))

	var v int64
	require.NoError(t, s.db.QueryRow(`SELECT value FROM counters WHERE tab = 'users'`).Scan(&v))
	assert.Equal(t, int64(10), v)
}
