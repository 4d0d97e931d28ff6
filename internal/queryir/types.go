package queryir

import (
	"fmt"

	"github.com/roach88/termstore/internal/term"
)

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Compare: field op literal
//   - BoundCompare: field op positional parameter
//   - FieldCompare: field op field
//   - And: all predicates must be true
//   - Or: any predicate must be true (not native)
//   - Not: negation (not native)
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// ParseOp parses a comparison operator token.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return op, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q", s)
	}
}

// Compare represents a field-op-literal predicate.
//
// Example:
//
//	Compare{Field: "age", Op: OpGt, Value: term.Int(30)}
//
// compiles to the guard {'>', '$N', 30} where '$N' binds age.
type Compare struct {
	Field string     // Field name in the queried table
	Op    Op         // Comparison operator
	Value term.Value // Literal operand
}

func (Compare) predicateNode() {}

// BoundCompare represents a field-op-parameter predicate. Param is the
// 0-based index into the parameter list supplied at execution; the value
// is substituted before compilation.
//
// Example:
//
//	BoundCompare{Field: "name", Op: OpEq, Param: 0}
type BoundCompare struct {
	Field string
	Op    Op
	Param int
}

func (BoundCompare) predicateNode() {}

// FieldCompare compares two fields of the same record.
//
// Example:
//
//	FieldCompare{Left: "spent", Op: OpGt, Right: "budget"}
type FieldCompare struct {
	Left  string
	Op    Op
	Right string
}

func (FieldCompare) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction. It is part of the IR so callers can express
// it, but the native store cannot evaluate it.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not represents a negation. Like Or, it is outside the native fragment.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy is one sort key.
type OrderBy struct {
	Field string
	Dir   Direction
}

// Ordering is an ordered list of sort keys. Earlier keys take precedence;
// later keys only break ties. An empty Ordering leaves rows in the order
// the store returned them.
type Ordering []OrderBy

// Concat joins ordering fragments from several clauses into one ordering,
// preserving their order.
func Concat(fragments ...Ordering) Ordering {
	var out Ordering
	for _, f := range fragments {
		out = append(out, f...)
	}
	return out
}

// Fields returns the field names referenced by the ordering.
func (o Ordering) Fields() []string {
	names := make([]string, len(o))
	for i, ob := range o {
		names[i] = ob.Field
	}
	return names
}

// Select is a filtered read of one table.
//
// Semantics:
//
//	SELECT <Fields> FROM <From> WHERE <Where> ORDER BY <OrderBy...> LIMIT <Limit>
type Select struct {
	From    string     // Table name
	Fields  []string   // Projection; empty selects every field in table order
	Where   Predicate  // Filter; nil matches every record
	OrderBy []Ordering // Ordering clauses, concatenated in order
	Limit   int        // Maximum rows; 0 or negative means unlimited
}

// Ordering returns the concatenation of all ordering clauses.
func (s Select) Ordering() Ordering {
	return Concat(s.OrderBy...)
}
