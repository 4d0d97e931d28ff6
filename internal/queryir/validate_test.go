package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/termstore/internal/term"
)

func TestValidate_NativeQuery(t *testing.T) {
	result := Validate(Select{
		From: "users",
		Where: And{Predicates: []Predicate{
			Compare{Field: "age", Op: OpGe, Value: term.Int(18)},
			&BoundCompare{Field: "name", Op: OpEq, Param: 0},
		}},
	})

	assert.True(t, result.IsNative)
	assert.Empty(t, result.Warnings)
}

func TestValidate_NilFilter(t *testing.T) {
	result := Validate(Select{From: "users"})
	assert.True(t, result.IsNative)
}

func TestValidate_NestedDisjunction(t *testing.T) {
	result := Validate(Select{
		From: "users",
		Where: And{Predicates: []Predicate{
			Compare{Field: "age", Op: OpGe, Value: term.Int(18)},
			Or{Predicates: []Predicate{
				Compare{Field: "name", Op: OpEq, Value: term.String("a")},
				Compare{Field: "name", Op: OpEq, Value: term.String("b")},
			}},
		}},
	})

	assert.False(t, result.IsNative)
	assert.Equal(t, []string{"where.and[1]: disjunction is not supported by the native store"}, result.Warnings)
}

func TestValidate_Negation(t *testing.T) {
	result := Validate(Select{From: "users", Where: &Not{}})
	assert.False(t, result.IsNative)
	assert.Contains(t, result.Warnings[0], "negation")
}

func TestValidate_OrderingWithLimit(t *testing.T) {
	result := Validate(Select{
		From:    "users",
		OrderBy: []Ordering{{{Field: "age", Dir: Desc}}},
		Limit:   5,
	})

	assert.True(t, result.IsNative)
	assert.Equal(t, []string{
		"ordering by [age] is applied in memory",
		"limit 5 is applied after sorting the full matching set",
	}, result.Warnings)
}
