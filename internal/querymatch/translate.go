package querymatch

import (
	"fmt"

	"github.com/roach88/termstore/internal/queryir"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/term"
)

// Translator compiles query filters to match specifications.
type Translator struct {
	// Params holds the values for BoundCompare predicates, indexed by
	// BoundCompare.Param.
	Params []term.Value
}

// NewTranslator creates a Translator with the given positional parameters.
func NewTranslator(params []term.Value) *Translator {
	return &Translator{Params: params}
}

// Translate is shorthand for NewTranslator(params).Translate.
func Translate(tbl *schema.Table, projection []string, where queryir.Predicate, params []term.Value) (store.MatchSpec, error) {
	return NewTranslator(params).Translate(tbl, projection, where)
}

// comparison is one flattened conjunct with fields resolved to positions.
type comparison struct {
	op    store.GuardOp
	left  int
	right int // -1 when comparing against value
	value term.Value
}

// Translate builds the match specification selecting the records of tbl
// that satisfy where, projected to the named fields. An empty projection
// returns whole records. A nil where matches every record.
func (t *Translator) Translate(tbl *schema.Table, projection []string, where queryir.Predicate) (store.MatchSpec, error) {
	var conds []comparison
	if err := t.collect(tbl, where, &conds); err != nil {
		return store.MatchSpec{}, err
	}

	arity := tbl.Arity()
	needsVar := make([]bool, arity)
	eqConsts := make([]int, arity)

	result := make([]store.Var, len(projection))
	for i, name := range projection {
		pos, err := resolve(tbl, name)
		if err != nil {
			return store.MatchSpec{}, err
		}
		needsVar[pos] = true
		result[i] = varAt(pos)
	}

	for _, c := range conds {
		switch {
		case c.right >= 0:
			needsVar[c.left] = true
			needsVar[c.right] = true
		case c.op == store.GuardEq:
			eqConsts[c.left]++
		default:
			needsVar[c.left] = true
		}
	}
	for pos, n := range eqConsts {
		if n > 1 {
			needsVar[pos] = true
		}
	}

	head := make([]store.Pattern, arity)
	for pos := range head {
		if needsVar[pos] {
			head[pos] = varAt(pos)
		} else {
			head[pos] = store.Wildcard{}
		}
	}

	var guards []store.Guard
	for _, c := range conds {
		switch {
		case c.right >= 0:
			guards = append(guards, store.Guard{Op: c.op, Left: varAt(c.left), Right: varAt(c.right)})
		case c.op == store.GuardEq && !needsVar[c.left]:
			head[c.left] = store.Const{Value: c.value}
		default:
			guards = append(guards, store.Guard{Op: c.op, Left: varAt(c.left), Right: store.Const{Value: c.value}})
		}
	}

	return store.MatchSpec{Head: head, Guards: guards, Result: result}, nil
}

// collect flattens the conjunction rooted at p into out.
func (t *Translator) collect(tbl *schema.Table, p queryir.Predicate, out *[]comparison) error {
	switch pred := p.(type) {
	case nil:
		return nil
	case queryir.Compare:
		return t.addCompare(tbl, pred.Field, pred.Op, pred.Value, out)
	case *queryir.Compare:
		if pred == nil {
			return nilPredicate(tbl, p)
		}
		return t.addCompare(tbl, pred.Field, pred.Op, pred.Value, out)
	case queryir.BoundCompare:
		return t.addBound(tbl, pred, out)
	case *queryir.BoundCompare:
		if pred == nil {
			return nilPredicate(tbl, p)
		}
		return t.addBound(tbl, *pred, out)
	case queryir.FieldCompare:
		return t.addFieldCompare(tbl, pred, out)
	case *queryir.FieldCompare:
		if pred == nil {
			return nilPredicate(tbl, p)
		}
		return t.addFieldCompare(tbl, *pred, out)
	case queryir.And:
		return t.collectAll(tbl, pred.Predicates, out)
	case *queryir.And:
		if pred == nil {
			return nilPredicate(tbl, p)
		}
		return t.collectAll(tbl, pred.Predicates, out)
	case queryir.Or, *queryir.Or:
		return &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Message: "disjunction cannot be expressed as a match specification"}
	case queryir.Not, *queryir.Not:
		return &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Message: "negation cannot be expressed as a match specification"}
	default:
		return &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Message: fmt.Sprintf("unsupported predicate type: %T", p)}
	}
}

func nilPredicate(tbl *schema.Table, p queryir.Predicate) error {
	return &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Message: fmt.Sprintf("nil %T predicate", p)}
}

func (t *Translator) collectAll(tbl *schema.Table, preds []queryir.Predicate, out *[]comparison) error {
	for _, p := range preds {
		if err := t.collect(tbl, p, out); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) addCompare(tbl *schema.Table, field string, op queryir.Op, value term.Value, out *[]comparison) error {
	pos, err := resolve(tbl, field)
	if err != nil {
		return err
	}
	gop, err := guardOp(tbl, field, op)
	if err != nil {
		return err
	}
	if value == nil {
		value = term.Null{}
	}
	if term.IsUnspecified(value) {
		return &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Field: field, Message: "cannot compare against an unspecified value"}
	}
	// Constants are compared against canonical stored values.
	value, err = term.Canonical(value)
	if err != nil {
		return &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Field: field, Message: err.Error()}
	}
	*out = append(*out, comparison{op: gop, left: pos, right: -1, value: value})
	return nil
}

func (t *Translator) addBound(tbl *schema.Table, bc queryir.BoundCompare, out *[]comparison) error {
	if bc.Param < 0 || bc.Param >= len(t.Params) {
		return &Error{
			Code:    ErrCodeMissingParameter,
			Table:   tbl.Name,
			Field:   bc.Field,
			Message: fmt.Sprintf("parameter %d not supplied (%d given)", bc.Param, len(t.Params)),
		}
	}
	return t.addCompare(tbl, bc.Field, bc.Op, t.Params[bc.Param], out)
}

func (t *Translator) addFieldCompare(tbl *schema.Table, fc queryir.FieldCompare, out *[]comparison) error {
	left, err := resolve(tbl, fc.Left)
	if err != nil {
		return err
	}
	right, err := resolve(tbl, fc.Right)
	if err != nil {
		return err
	}
	gop, err := guardOp(tbl, fc.Left, fc.Op)
	if err != nil {
		return err
	}
	*out = append(*out, comparison{op: gop, left: left, right: right})
	return nil
}

func resolve(tbl *schema.Table, field string) (int, error) {
	pos, ok := tbl.Position(field)
	if !ok {
		return 0, &Error{Code: ErrCodeUnknownField, Table: tbl.Name, Field: field, Message: "no such field"}
	}
	return pos, nil
}

func guardOp(tbl *schema.Table, field string, op queryir.Op) (store.GuardOp, error) {
	switch op {
	case queryir.OpEq:
		return store.GuardEq, nil
	case queryir.OpNe:
		return store.GuardNe, nil
	case queryir.OpLt:
		return store.GuardLt, nil
	case queryir.OpLe:
		return store.GuardLe, nil
	case queryir.OpGt:
		return store.GuardGt, nil
	case queryir.OpGe:
		return store.GuardGe, nil
	default:
		return "", &Error{Code: ErrCodeUnsupportedPredicate, Table: tbl.Name, Field: field, Message: fmt.Sprintf("unsupported operator %q", op)}
	}
}

// varAt returns the head variable for a field position.
func varAt(pos int) store.Var {
	return store.Var(pos + 1)
}
