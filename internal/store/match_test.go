package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/term"
)

func seedAges(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	seedUsers(t, s,
		user(1, "ada", 36),
		user(2, "grace", 45),
		user(3, "alan", 41),
		user(4, "edsger", 45),
	)
	return s
}

func TestSelectGuardsAndProjection(t *testing.T) {
	s := seedAges(t)

	// names of users older than 40
	spec := MatchSpec{
		Head:   []Pattern{Wildcard{}, Var(1), Var(2)},
		Guards: []Guard{{Op: GuardGt, Left: Var(2), Right: Const{term.Int(40)}}},
		Result: []Var{1},
	}

	dirty(t, s, func(a *Activity) {
		got := a.Select("users", spec, 0)
		assert.Equal(t, []term.Tuple{
			{term.String("grace")},
			{term.String("alan")},
			{term.String("edsger")},
		}, got)
	})
}

func TestSelectConstInHead(t *testing.T) {
	s := seedAges(t)
	spec := MatchSpec{Head: []Pattern{Var(1), Wildcard{}, Const{term.Int(45)}}, Result: []Var{1}}

	dirty(t, s, func(a *Activity) {
		assert.Equal(t, []term.Tuple{{term.Int(2)}, {term.Int(4)}}, a.Select("users", spec, 0))
	})
}

func TestSelectWholeRecordWhenNoResult(t *testing.T) {
	s := seedAges(t)
	spec := MatchSpec{Head: []Pattern{Wildcard{}, Const{term.String("alan")}, Wildcard{}}}

	dirty(t, s, func(a *Activity) {
		got := a.Select("users", spec, 0)
		assert.Equal(t, []term.Tuple{{term.Int(3), term.String("alan"), term.Int(41)}}, got)
	})
}

func TestSelectLimitStopsScan(t *testing.T) {
	s := seedAges(t)

	dirty(t, s, func(a *Activity) {
		got := a.Select("users", MatchAll(3), 2)
		require.Len(t, got, 2)
		// key order
		assert.Equal(t, term.Int(1), got[0][0])
		assert.Equal(t, term.Int(2), got[1][0])

		assert.Len(t, a.Select("users", MatchAll(3), 0), 4)
		assert.Len(t, a.Select("users", MatchAll(3), 10), 4)
	})
}

func TestSelectKeyLookupMatchesScan(t *testing.T) {
	s := seedAges(t)
	lookup := MatchSpec{
		Head:   []Pattern{Const{term.Int(2)}, Var(1), Var(2)},
		Guards: []Guard{{Op: GuardGe, Left: Var(2), Right: Const{term.Int(45)}}},
	}
	scan := MatchSpec{
		Head: []Pattern{Var(3), Var(1), Var(2)},
		Guards: []Guard{
			{Op: GuardEq, Left: Var(3), Right: Const{term.Int(2)}},
			{Op: GuardGe, Left: Var(2), Right: Const{term.Int(45)}},
		},
	}

	dirty(t, s, func(a *Activity) {
		got := a.Select("users", lookup, 0)
		assert.Len(t, got, 1)
		assert.Equal(t, a.Select("users", scan, 0), got)

		// the key matches but the guard does not
		lookup.Guards[0].Right = Const{term.Int(50)}
		assert.Empty(t, a.Select("users", lookup, 0))
	})
}

func TestSelectRepeatedVariable(t *testing.T) {
	s := createTestStore(t)
	seedUsers(t, s,
		term.NewRecord("users", term.Int(1), term.Int(1), term.Null{}),
		term.NewRecord("users", term.Int(2), term.Int(5), term.Null{}),
	)
	spec := MatchSpec{Head: []Pattern{Var(1), Var(1), Wildcard{}}, Result: []Var{1}}

	dirty(t, s, func(a *Activity) {
		assert.Equal(t, []term.Tuple{{term.Int(1)}}, a.Select("users", spec, 0))
	})
}

func TestSelectGuardOperators(t *testing.T) {
	s := seedAges(t)
	tests := []struct {
		op   GuardOp
		want int
	}{
		{GuardEq, 2},
		{GuardNe, 2},
		{GuardLt, 2},
		{GuardLe, 4},
		{GuardGt, 0},
		{GuardGe, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			spec := MatchSpec{
				Head:   []Pattern{Wildcard{}, Wildcard{}, Var(1)},
				Guards: []Guard{{Op: tt.op, Left: Var(1), Right: Const{term.Int(45)}}},
			}
			dirty(t, s, func(a *Activity) {
				assert.Len(t, a.Select("users", spec, 0), tt.want)
			})
		})
	}
}

func TestSelectBadArg(t *testing.T) {
	s := createTestStore(t)
	tests := []struct {
		name string
		spec MatchSpec
	}{
		{"head arity", MatchSpec{Head: []Pattern{Wildcard{}}}},
		{"unbound guard var", MatchSpec{
			Head:   []Pattern{Wildcard{}, Wildcard{}, Wildcard{}},
			Guards: []Guard{{Op: GuardEq, Left: Var(1), Right: Const{term.Int(1)}}},
		}},
		{"unbound result var", MatchSpec{Head: []Pattern{Var(1), Wildcard{}, Wildcard{}}, Result: []Var{2}}},
		{"unknown op", MatchSpec{
			Head:   []Pattern{Var(1), Wildcard{}, Wildcard{}},
			Guards: []Guard{{Op: "~", Left: Var(1), Right: Const{term.Int(1)}}},
		}},
		{"wildcard operand", MatchSpec{
			Head:   []Pattern{Var(1), Wildcard{}, Wildcard{}},
			Guards: []Guard{{Op: GuardEq, Left: Var(1), Right: Wildcard{}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Transaction(context.Background(), func(a *Activity) error {
				a.Select("users", tt.spec, 0)
				return nil
			})
			var ab *Abort
			require.ErrorAs(t, err, &ab)
			_, ok := ab.Reason.(BadArg)
			assert.True(t, ok, "reason = %v", ab.Reason)
		})
	}
}

func TestMatchSpecString(t *testing.T) {
	spec := MatchSpec{
		Head:   []Pattern{Var(1), Wildcard{}, Const{term.Int(36)}},
		Guards: []Guard{{Op: GuardGt, Left: Var(1), Right: Const{term.Int(10)}}},
		Result: []Var{1},
	}
	assert.Equal(t, `[{{'$1', '_', 36}, [{'>', '$1', 10}], ['$1']}]`, spec.String())
	assert.Equal(t, `[{{'_', '_'}, [], ['$_']}]`, MatchAll(2).String())
}
