package property

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{name: "nil", in: nil, want: Null()},
		{name: "bool", in: true, want: Bool(true)},
		{name: "positive int", in: 123, want: Uint(123)},
		{name: "zero int", in: 0, want: Uint(0)},
		{name: "negative int", in: -123, want: Int(-123)},
		{name: "uint64", in: uint64(math.MaxUint64), want: Uint(math.MaxUint64)},
		{name: "float", in: 1.23, want: Float(1.23)},
		{name: "float32", in: float32(0.5), want: Float(0.5)},
		{name: "string", in: "abc", want: String("abc")},
		{name: "any slice", in: []any{1, "x"}, want: Array(Uint(1), String("x"))},
		{name: "typed slice", in: []string{"a", "b"}, want: Array(String("a"), String("b"))},
		{name: "empty slice", in: []any{}, want: Array()},
		{name: "any map", in: map[string]any{"k": -1}, want: Object(map[string]Value{"k": Int(-1)})},
		{name: "typed map", in: map[string]int{"k": 2}, want: Object(map[string]Value{"k": Uint(2)})},
		{name: "value passthrough", in: Int(5), want: Int(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestFrom_Unsupported(t *testing.T) {
	_, err := From(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = From(map[int]string{1: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = From([]any{make(chan int)})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Panics(t, func() { MustFrom(func() {}) })
}

func TestValue_AccessorsAreExclusive(t *testing.T) {
	values := []Value{
		Bool(true),
		Uint(1),
		Int(-1),
		Float(1),
		String("1"),
		Array(),
		Object(nil),
		Null(),
	}

	for _, v := range values {
		t.Run(v.Kind().String(), func(t *testing.T) {
			_, isBool := v.AsBool()
			_, isUint := v.AsUint()
			_, isInt := v.AsInt()
			_, isFloat := v.AsFloat()
			_, isString := v.AsString()
			_, isArray := v.AsArray()
			_, isObject := v.AsObject()

			assert.Equal(t, v.Kind() == KindBool, isBool)
			assert.Equal(t, v.Kind() == KindUint, isUint)
			assert.Equal(t, v.Kind() == KindInt, isInt)
			assert.Equal(t, v.Kind() == KindFloat, isFloat)
			assert.Equal(t, v.Kind() == KindString, isString)
			assert.Equal(t, v.Kind() == KindArray, isArray)
			assert.Equal(t, v.Kind() == KindObject, isObject)
			assert.Equal(t, v.Kind() == KindNull, v.IsNull())
		})
	}
}

func TestValue_IntIsNotWidened(t *testing.T) {
	v := Int(5)

	_, ok := v.AsUint()
	assert.False(t, ok)
	_, ok = v.AsFloat()
	assert.False(t, ok)

	i, ok := v.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(5), i)
}

func TestValue_Interface(t *testing.T) {
	v := Object(map[string]Value{
		"list": Array(Uint(1), Int(-2), Float(0.5), Bool(false), Null()),
		"name": String("n"),
	})

	assert.Equal(t, map[string]any{
		"list": []any{uint64(1), int64(-2), 0.5, false, nil},
		"name": "n",
	}, v.Interface())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
	assert.False(t, Uint(1).Equal(Int(1)))
	assert.False(t, Array(Uint(1)).Equal(Array(Uint(1), Uint(2))))
	assert.False(t, Object(map[string]Value{"a": Null()}).Equal(Object(map[string]Value{"b": Null()})))
	assert.True(t, Object(map[string]Value{"a": Array(String("x"))}).Equal(Object(map[string]Value{"a": Array(String("x"))})))
}

func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		encoded string
	}{
		{name: "null", value: Null(), encoded: `null`},
		{name: "bool", value: Bool(true), encoded: `true`},
		{name: "uint", value: Uint(math.MaxUint64), encoded: `18446744073709551615`},
		{name: "int", value: Int(-123), encoded: `-123`},
		{name: "float with fraction", value: Float(1.23), encoded: `1.23`},
		{name: "whole float", value: Float(1), encoded: `1.0`},
		{name: "large float", value: Float(1e21), encoded: `1e+21`},
		{name: "string", value: String("a\"b"), encoded: `"a\"b"`},
		{name: "array", value: Array(Uint(1), String("x")), encoded: `[1,"x"]`},
		{name: "object", value: Object(map[string]Value{"b": Uint(2), "a": Int(-1)}), encoded: `{"a":-1,"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.encoded, string(data))

			decoded, err := ParseJSON(data)
			require.NoError(t, err)
			assert.True(t, tt.value.Equal(decoded), "want %#v, got %#v", tt.value, decoded)
		})
	}
}

func TestValue_JSONNumberKinds(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{in: `0`, kind: KindUint},
		{in: `123`, kind: KindUint},
		{in: `-123`, kind: KindInt},
		{in: `1.5`, kind: KindFloat},
		{in: `1e3`, kind: KindFloat},
		{in: `-1E3`, kind: KindFloat},
		{in: `18446744073709551616`, kind: KindFloat},
		{in: `-9223372036854775809`, kind: KindFloat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseJSON([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestValue_JSONNonFinite(t *testing.T) {
	data, err := json.Marshal(Float(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestValue_JSONInvalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestTagged_JSON(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		encoded string
	}{
		{name: "null", value: Null(), encoded: `{"kind":"null"}`},
		{name: "bool", value: Bool(false), encoded: `{"kind":"bool","value":false}`},
		{name: "non-negative int", value: Int(5), encoded: `{"kind":"int","value":5}`},
		{name: "negative int", value: Int(-3), encoded: `{"kind":"int","value":-3}`},
		{name: "uint", value: Uint(5), encoded: `{"kind":"uint","value":5}`},
		{name: "whole float", value: Float(2), encoded: `{"kind":"float","value":2.0}`},
		{name: "nan", value: Float(math.NaN()), encoded: `{"kind":"float","value":"NaN"}`},
		{name: "infinity", value: Float(math.Inf(-1)), encoded: `{"kind":"float","value":"-Inf"}`},
		{name: "string", value: String("5"), encoded: `{"kind":"string","value":"5"}`},
		{
			name:    "nested",
			value:   Array(Int(0), Object(map[string]Value{"n": Int(7)})),
			encoded: `{"kind":"array","value":[{"kind":"int","value":0},{"kind":"object","value":{"n":{"kind":"int","value":7}}}]}`,
		},
		{name: "empty object", value: Object(nil), encoded: `{"kind":"object","value":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(Tagged{Value: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.encoded, string(data))

			var decoded Tagged
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.value.Kind(), decoded.Value.Kind())
			assert.True(t, tt.value.Equal(decoded.Value), "want %#v, got %#v", tt.value, decoded.Value)
		})
	}
}

func TestTagged_KeepsIntKind(t *testing.T) {
	data, err := json.Marshal(Tagged{Value: Int(5)})
	require.NoError(t, err)

	var decoded Tagged
	require.NoError(t, json.Unmarshal(data, &decoded))
	i, ok := decoded.Value.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(5), i)
	_, ok = decoded.Value.AsUint()
	assert.False(t, ok)
}

func TestTagged_Invalid(t *testing.T) {
	tests := []string{
		`{"kind":"decimal","value":1}`,
		`{"kind":"int","value":"5"}`,
		`{"kind":"uint","value":-1}`,
		`{"kind":"bool"}`,
		`[1]`,
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			var decoded Tagged
			assert.Error(t, json.Unmarshal([]byte(in), &decoded))
		})
	}
}
