package term

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// ErrUnstorable is returned for values that cannot be written to the store.
var ErrUnstorable = errors.New("unstorable value")

// Canonical returns the form of v that the store persists.
//
// Strings (including those nested in lists) are NFC normalized so that
// visually identical keys compare equal. Unspecified, NaN and infinities
// are rejected with ErrUnstorable.
func Canonical(v Value) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Unspecified:
		return nil, fmt.Errorf("%w: unspecified", ErrUnstorable)
	case Float:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("%w: non-finite float %v", ErrUnstorable, float64(val))
		}
		return val, nil
	case String:
		return String(norm.NFC.String(string(val))), nil
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			c, err := Canonical(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

// Encode serializes v as JSON in a form Decode reads back with the same
// kinds: floats always carry a fraction or exponent, integers never do.
// HTML characters are not escaped.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite float %v", ErrUnstorable, f)
		}
		buf.WriteString(formatFloat(f))
	case String:
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(string(val)); err != nil {
			return err
		}
		// json.Encoder adds a trailing newline
		buf.Truncate(buf.Len() - 1)
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Unspecified:
		return fmt.Errorf("%w: unspecified", ErrUnstorable)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

// Decode parses JSON produced by Encode.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode term: %w", err)
	}
	if _, ok := raw.(map[string]any); ok {
		return nil, fmt.Errorf("decode term: objects are not terms")
	}
	return FromGo(raw)
}

// EncodeFields serializes a record's fields as a JSON array.
func EncodeFields(fields []Value) ([]byte, error) {
	return Encode(List(fields))
}

// DecodeFields parses a JSON array produced by EncodeFields.
func DecodeFields(data []byte) ([]Value, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	list, ok := v.(List)
	if !ok {
		return nil, fmt.Errorf("decode fields: expected array, got %s", KindOf(v))
	}
	return []Value(list), nil
}

// KeyString returns a stable encoding of a key term, suitable as a
// database column. Keys that compare equal encode identically: an
// integral Float encodes like the equivalent Int, at any list depth.
func KeyString(v Value) (string, error) {
	b, err := Encode(foldIntegral(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func foldIntegral(v Value) Value {
	switch val := v.(type) {
	case Float:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return Int(int64(f))
		}
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = foldIntegral(elem)
		}
		return out
	}
	return v
}
