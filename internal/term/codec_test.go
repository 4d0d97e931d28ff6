package term

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePreservesKinds(t *testing.T) {
	fields := []Value{Int(3), Float(3), String("a<b>&c"), Null{}, Bool(false), List{Float(0.25), Int(-1)}}

	data, err := EncodeFields(fields)
	require.NoError(t, err)
	assert.Equal(t, `[3,3.0,"a<b>&c",null,false,[0.25,-1]]`, string(data))

	decoded, err := DecodeFields(data)
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)
}

func TestEncodeRejectsUnstorable(t *testing.T) {
	_, err := Encode(Unspecified{})
	assert.ErrorIs(t, err, ErrUnstorable)

	_, err = Encode(Float(math.NaN()))
	assert.ErrorIs(t, err, ErrUnstorable)
}

func TestDecodeRejectsObjects(t *testing.T) {
	_, err := Decode([]byte(`{"a":1}`))
	assert.Error(t, err)
}

func TestCanonicalNormalizesStrings(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9 under NFC.
	v, err := Canonical(List{String("e\u0301")})
	require.NoError(t, err)

	assert.Equal(t, List{String("\u00e9")}, v)
}

func TestCanonicalRejectsUnspecifiedAndInfinity(t *testing.T) {
	_, err := Canonical(Unspecified{})
	assert.ErrorIs(t, err, ErrUnstorable)

	_, err = Canonical(Float(math.Inf(1)))
	assert.ErrorIs(t, err, ErrUnstorable)
}

func TestKeyStringFoldsIntegralFloats(t *testing.T) {
	a, err := KeyString(Int(42))
	require.NoError(t, err)
	b, err := KeyString(Float(42))
	require.NoError(t, err)
	c, err := KeyString(Float(42.5))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	nested, err := KeyString(List{Int(1), List{Float(2), String("x")}})
	require.NoError(t, err)
	folded, err := KeyString(List{Float(1), List{Int(2), String("x")}})
	require.NoError(t, err)
	assert.Equal(t, nested, folded)
	assert.Equal(t, `[1,[2,"x"]]`, folded)
}
