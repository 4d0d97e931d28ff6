package queryir

import (
	"fmt"
)

// ValidationResult describes how much of a query the native store can
// evaluate.
type ValidationResult struct {
	// IsNative is true when the filter compiles to a match specification.
	IsNative bool

	// Warnings lists the parts of the query that are rejected or that
	// force in-memory work. Empty when the whole query runs natively.
	Warnings []string
}

// Validate inspects a query without translating it.
//
// Or and Not anywhere in the filter make the query non-native (the
// translator rejects them). Ordering and limit never make a query
// non-native, but ordering combined with a limit is reported because the
// full matching set is fetched before truncation.
//
// Validate is a pure function with no side effects.
func Validate(sel Select) ValidationResult {
	v := &validator{warnings: []string{}}
	native := v.validatePredicate(sel.Where, "where")

	ordering := sel.Ordering()
	if len(ordering) > 0 {
		v.warn("ordering by %v is applied in memory", ordering.Fields())
		if sel.Limit > 0 {
			v.warn("limit %d is applied after sorting the full matching set", sel.Limit)
		}
	}

	return ValidationResult{IsNative: native, Warnings: v.warnings}
}

type validator struct {
	warnings []string
}

func (v *validator) warn(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate, path string) bool {
	switch pred := p.(type) {
	case nil, Compare, *Compare, BoundCompare, *BoundCompare, FieldCompare, *FieldCompare:
		return true
	case And:
		return v.validateAll(pred.Predicates, path)
	case *And:
		return v.validateAll(pred.Predicates, path)
	case Or, *Or:
		v.warn("%s: disjunction is not supported by the native store", path)
		return false
	case Not, *Not:
		v.warn("%s: negation is not supported by the native store", path)
		return false
	default:
		v.warn("%s: unknown predicate type %T", path, p)
		return false
	}
}

func (v *validator) validateAll(preds []Predicate, path string) bool {
	ok := true
	for i, p := range preds {
		if !v.validatePredicate(p, fmt.Sprintf("%s.and[%d]", path, i)) {
			ok = false
		}
	}
	return ok
}
