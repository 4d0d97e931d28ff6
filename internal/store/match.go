package store

import (
	"fmt"
	"strings"

	"github.com/roach88/termstore/internal/term"
)

// Pattern is one element of a match specification head or guard operand.
//
// This is a sealed interface: Wildcard, Var and Const implement it.
type Pattern interface {
	patternNode()
}

// Wildcard matches any value without binding it. Only valid in a head.
type Wildcard struct{}

func (Wildcard) patternNode() {}

// Var binds the value at its head position. Variables are numbered from 1.
// A variable used at several head positions requires equal values there.
type Var int

func (Var) patternNode() {}

// Const matches (in a head) or evaluates to (in a guard) a fixed value.
type Const struct {
	Value term.Value
}

func (Const) patternNode() {}

// GuardOp is a native comparison operator.
type GuardOp string

const (
	GuardEq GuardOp = "=="
	GuardNe GuardOp = "/="
	GuardLt GuardOp = "<"
	GuardLe GuardOp = "=<"
	GuardGt GuardOp = ">"
	GuardGe GuardOp = ">="
)

// Guard is a comparison between two operands, each a Var bound by the head
// or a Const. Comparisons use the term order.
type Guard struct {
	Op    GuardOp
	Left  Pattern
	Right Pattern
}

// MatchSpec is the native selection primitive: a tuple pattern, a
// conjunction of guards and a projection.
//
// Head has one Pattern per record field. A record matches when every Const
// position equals the record value, repeated variables agree, and every
// guard holds. Result lists the variables to return, in order; an empty
// Result returns every field of the matched record.
type MatchSpec struct {
	Head   []Pattern
	Guards []Guard
	Result []Var
}

// MatchAll returns a specification matching every record of the given
// arity and returning whole records.
func MatchAll(arity int) MatchSpec {
	head := make([]Pattern, arity)
	for i := range head {
		head[i] = Wildcard{}
	}
	return MatchSpec{Head: head}
}

// String renders the specification in the store's native notation, e.g.
//
//	[{{'$1', '_', 36}, [{'>', '$1', 10}], ['$1']}]
func (m MatchSpec) String() string {
	var b strings.Builder
	b.WriteString("[{{")
	for i, p := range m.Head {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatPattern(p))
	}
	b.WriteString("}, [")
	for i, g := range m.Guards {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "{'%s', %s, %s}", g.Op, formatPattern(g.Left), formatPattern(g.Right))
	}
	b.WriteString("], [")
	if len(m.Result) == 0 {
		b.WriteString("'$_'")
	}
	for i, v := range m.Result {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatPattern(v))
	}
	b.WriteString("]}]")
	return b.String()
}

func formatPattern(p Pattern) string {
	switch pt := p.(type) {
	case Wildcard:
		return "'_'"
	case Var:
		return fmt.Sprintf("'$%d'", int(pt))
	case Const:
		return term.Format(pt.Value)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%T>", p)
	}
}

// matcher is a MatchSpec checked against a table definition.
type matcher struct {
	spec    MatchSpec
	maxVar  int
	keyPos  int
	keyEq   term.Value // non-nil when the head fixes the key
	scratch []term.Value
}

// compileMatch validates spec for def, aborting with BadArg when the head
// arity differs or a guard or result uses a variable the head never binds.
func compileMatch(def TableDef, spec MatchSpec) *matcher {
	bad := func(format string, args ...any) {
		abort(BadArg{Op: "select", Table: def.Name, Detail: fmt.Sprintf(format, args...)})
	}

	if len(spec.Head) != def.Arity {
		bad("head has %d elements, table arity is %d", len(spec.Head), def.Arity)
	}

	m := &matcher{spec: spec, keyPos: def.KeyPos}
	bound := make(map[Var]bool)
	for i, p := range spec.Head {
		switch pt := p.(type) {
		case Wildcard:
		case Var:
			if pt < 1 {
				bad("invalid variable '$%d'", int(pt))
			}
			bound[pt] = true
			m.maxVar = max(m.maxVar, int(pt))
		case Const:
			if i == def.KeyPos {
				m.keyEq = pt.Value
				if m.keyEq == nil {
					m.keyEq = term.Null{}
				}
			}
		default:
			bad("invalid head element %T at %d", p, i)
		}
	}

	operand := func(p Pattern) {
		switch pt := p.(type) {
		case Var:
			if !bound[pt] {
				bad("unbound variable '$%d' in guard", int(pt))
			}
		case Const:
		default:
			bad("invalid guard operand %T", p)
		}
	}
	for _, g := range spec.Guards {
		switch g.Op {
		case GuardEq, GuardNe, GuardLt, GuardLe, GuardGt, GuardGe:
		default:
			bad("unknown guard operator %q", g.Op)
		}
		operand(g.Left)
		operand(g.Right)
	}
	for _, v := range spec.Result {
		if !bound[v] {
			bad("unbound variable '$%d' in result", int(v))
		}
	}

	m.scratch = make([]term.Value, m.maxVar+1)
	return m
}

// match tests rec and returns its projection.
func (m *matcher) match(rec term.Record) (term.Tuple, bool) {
	vars := m.scratch
	clear(vars)

	for i, p := range m.spec.Head {
		v := rec.Fields[i]
		switch pt := p.(type) {
		case Var:
			if prev := vars[pt]; prev != nil {
				if !term.Equal(prev, v) {
					return nil, false
				}
				continue
			}
			if v == nil {
				v = term.Null{}
			}
			vars[pt] = v
		case Const:
			if !term.Equal(pt.Value, v) {
				return nil, false
			}
		}
	}

	for _, g := range m.spec.Guards {
		if !evalGuard(g.Op, m.operand(g.Left), m.operand(g.Right)) {
			return nil, false
		}
	}

	if len(m.spec.Result) == 0 {
		return term.Tuple(rec.Clone().Fields), true
	}
	out := make(term.Tuple, len(m.spec.Result))
	for i, v := range m.spec.Result {
		out[i] = vars[v]
	}
	return out, true
}

func (m *matcher) operand(p Pattern) term.Value {
	if v, ok := p.(Var); ok {
		return m.scratch[v]
	}
	return p.(Const).Value
}

func evalGuard(op GuardOp, a, b term.Value) bool {
	c := term.Compare(a, b)
	switch op {
	case GuardEq:
		return c == 0
	case GuardNe:
		return c != 0
	case GuardLt:
		return c < 0
	case GuardLe:
		return c <= 0
	case GuardGt:
		return c > 0
	case GuardGe:
		return c >= 0
	}
	return false
}
