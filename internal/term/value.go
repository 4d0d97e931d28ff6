package term

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface over the term types the store can hold.
// Only Null, Bool, Int, Float, String, List and Unspecified implement it.
type Value interface {
	termValue() // Sealed - only types in this package implement it
}

// Null is the explicit absence of a value. Writing Null to a field
// overwrites whatever was stored there.
type Null struct{}

func (Null) termValue() {}

// Bool is a boolean term.
type Bool bool

func (Bool) termValue() {}

// Int is a 64-bit integer term.
type Int int64

func (Int) termValue() {}

// Float is a 64-bit floating point term. NaN and infinities cannot be stored.
type Float float64

func (Float) termValue() {}

// String is a text term.
type String string

func (String) termValue() {}

// List is an ordered sequence of terms.
type List []Value

func (List) termValue() {}

// Unspecified marks a field of a partial record that an update must leave
// untouched. It is not a storable value: writes containing it are rejected.
type Unspecified struct{}

func (Unspecified) termValue() {}

// Kind names the type of a term.
type Kind string

const (
	KindNull        Kind = "null"
	KindBool        Kind = "bool"
	KindInt         Kind = "int"
	KindFloat       Kind = "float"
	KindString      Kind = "string"
	KindList        Kind = "list"
	KindUnspecified Kind = "unspecified"
)

// KindOf returns the kind of v. A nil Value is reported as KindNull.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil, Null:
		return KindNull
	case Bool:
		return KindBool
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case String:
		return KindString
	case List:
		return KindList
	case Unspecified:
		return KindUnspecified
	default:
		panic(fmt.Sprintf("term: unknown value type %T", v))
	}
}

// IsNull reports whether v is Null (or a nil Value).
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

// IsUnspecified reports whether v is the Unspecified sentinel.
func IsUnspecified(v Value) bool {
	_, ok := v.(Unspecified)
	return ok
}

// FromGo converts a native Go value into a term.
//
// Supported inputs: nil, bool, signed and unsigned integers, float32/64,
// string, json.Number, []any, and Values (returned as is). Unsigned values
// above math.MaxInt64 and unsupported types return an error.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val)
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return fromNumber(string(val))
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			tv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = tv
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// fromNumber keeps the int/float distinction of a JSON number literal:
// literals with a fraction or exponent become Float.
func fromNumber(s string) (Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Float(f), nil
}

// ToGo converts a term into a plain Go value suitable for encoding/json.
// Null and Unspecified both become nil.
func ToGo(v Value) any {
	switch val := v.(type) {
	case nil, Null, Unspecified:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	default:
		panic(fmt.Sprintf("term: unknown value type %T", v))
	}
}

// Format renders v in the textual form used by match specifications and
// CLI output. Strings are quoted, floats always carry a fraction or exponent.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case Unspecified:
		return "_unspecified"
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return formatFloat(float64(val))
	case String:
		return strconv.Quote(string(val))
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Format(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		panic(fmt.Sprintf("term: unknown value type %T", v))
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { // NaN and Inf contain n/N
		s += ".0"
	}
	return s
}
