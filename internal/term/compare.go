package term

import (
	"cmp"
	"math"
	"strings"
)

// rank orders the kinds relative to each other:
// Null < Bool < numbers < String < List.
//
// Unspecified ranks below everything. It never reaches a stored record,
// but giving it a place keeps Compare total.
func rank(v Value) int {
	switch v.(type) {
	case Unspecified:
		return -1
	case nil, Null:
		return 0
	case Bool:
		return 1
	case Int, Float:
		return 2
	case String:
		return 3
	case List:
		return 4
	default:
		panic("term: unknown value type")
	}
}

// Compare returns -1, 0 or +1 as a sorts before, equal to or after b in
// the term order.
//
// Int and Float are compared numerically, so Int(1) and Float(1.0) are
// equal. Strings compare by bytes. Lists compare element by element, a
// shorter list sorting first when it is a prefix of the longer one.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch av := a.(type) {
	case nil, Null, Unspecified:
		return 0
	case Bool:
		bv := b.(Bool)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case Int:
		switch bv := b.(type) {
		case Int:
			return cmp.Compare(av, bv)
		case Float:
			return compareIntFloat(int64(av), float64(bv))
		}
	case Float:
		switch bv := b.(type) {
		case Int:
			return -compareIntFloat(int64(bv), float64(av))
		case Float:
			return cmp.Compare(float64(av), float64(bv))
		}
	case String:
		return strings.Compare(string(av), string(b.(String)))
	case List:
		bv := b.(List)
		for i := 0; i < len(av) && i < len(bv); i++ {
			if c := Compare(av[i], bv[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(av), len(bv))
	}
	panic("term: unreachable comparison")
}

// compareIntFloat compares without converting the integer to float64
// blindly, which would lose precision beyond 2^53.
func compareIntFloat(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case f >= math.MaxInt64:
		return -1
	case f < math.MinInt64:
		return 1
	}
	t := math.Trunc(f)
	if c := cmp.Compare(i, int64(t)); c != 0 {
		return c
	}
	// Same integral part: the fraction decides.
	return cmp.Compare(0, f-t)
}

// Equal reports whether a and b are equal in the term order.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}
