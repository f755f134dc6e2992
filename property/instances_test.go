package property

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInstances_GetSet(t *testing.T) {
	props := NewInstances()
	props.Set("weight", Float(0.5))

	v, ok := props.Get("weight")
	require.True(t, ok)
	assert.True(t, Float(0.5).Equal(v))

	_, ok = props.Get("missing")
	assert.False(t, ok)
}

func TestInstances_SetOnZeroValue(t *testing.T) {
	var props Instances
	require.NotPanics(t, func() { props.Set("n", Int(5)) })

	n, ok := props.AsInt("n")
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 1, props.Len())
}

func TestInstances_SetPreservesOtherEntries(t *testing.T) {
	props := Instances{"a": Uint(1), "b": Uint(2)}
	props.Set("a", String("x"))

	assert.Equal(t, 2, props.Len())
	b, ok := props.AsUint("b")
	assert.True(t, ok)
	assert.Equal(t, uint64(2), b)
}

func TestInstances_NullIsNotAbsent(t *testing.T) {
	props := NewInstances()
	props.Set("n", Null())

	v, ok := props.Get("n")
	assert.True(t, ok)
	assert.True(t, v.IsNull())
	assert.True(t, props.Has("n"))

	props.Delete("n")
	assert.False(t, props.Has("n"))
}

func TestInstances_TypedAccessors(t *testing.T) {
	props := NewInstances()
	name := "value"

	props.Set(name, Bool(true))
	b, ok := props.AsBool(name)
	assert.True(t, ok)
	assert.True(t, b)

	props.Set(name, Bool(false))
	b, ok = props.AsBool(name)
	assert.True(t, ok)
	assert.False(t, b)

	props.Set(name, MustFrom(123))
	u, ok := props.AsUint(name)
	assert.True(t, ok)
	assert.Equal(t, uint64(123), u)
	_, ok = props.AsBool(name)
	assert.False(t, ok)

	props.Set(name, MustFrom(-123))
	i, ok := props.AsInt(name)
	assert.True(t, ok)
	assert.Equal(t, int64(-123), i)

	props.Set(name, Float(1.23))
	f, ok := props.AsFloat(name)
	assert.True(t, ok)
	assert.Equal(t, 1.23, f)

	props.Set(name, String("abc"))
	s, ok := props.AsString(name)
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	props.Set(name, Array())
	a, ok := props.AsArray(name)
	assert.True(t, ok)
	assert.Len(t, a, 0)

	props.Set(name, Object(nil))
	o, ok := props.AsObject(name)
	assert.True(t, ok)
	assert.Len(t, o, 0)
}

func TestInstances_MissingPropertyAccessors(t *testing.T) {
	var props Instances

	_, ok := props.AsBool("x")
	assert.False(t, ok)
	_, ok = props.AsString("x")
	assert.False(t, ok)
	_, ok = props.Get("x")
	assert.False(t, ok)
}

func TestInstances_Require(t *testing.T) {
	props := Instances{"n": Uint(1)}

	v, err := props.Require("n", KindUint)
	require.NoError(t, err)
	assert.True(t, Uint(1).Equal(v))

	_, err = props.Require("missing", KindUint)
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	_, err = props.Require("n", KindString)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, KindString, mismatch.Expected)
	assert.Equal(t, KindUint, mismatch.Actual)
	assert.Contains(t, mismatch.Error(), `"n"`)
}

func TestInstances_NamesAndClone(t *testing.T) {
	props := Instances{"b": Null(), "a": Null(), "c": Null()}
	assert.Equal(t, []string{"a", "b", "c"}, props.Names())

	clone := props.Clone()
	clone.Set("d", Null())
	assert.Equal(t, 3, props.Len())
	assert.Equal(t, 4, clone.Len())

	var empty Instances
	assert.NotNil(t, empty.Clone())
}

func TestInstancesFrom(t *testing.T) {
	props, err := InstancesFrom(map[string]any{"weight": 0.5, "count": 3})
	require.NoError(t, err)

	w, ok := props.AsFloat("weight")
	assert.True(t, ok)
	assert.Equal(t, 0.5, w)
	c, ok := props.AsUint("count")
	assert.True(t, ok)
	assert.Equal(t, uint64(3), c)

	_, err = InstancesFrom(map[string]any{"bad": struct{}{}})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestInstances_JSON(t *testing.T) {
	props := Instances{"weight": Float(0.5), "tags": Array(String("a"))}

	data, err := json.Marshal(props)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weight":0.5,"tags":["a"]}`, string(data))

	var decoded Instances
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, Object(props).Equal(Object(decoded)))
}

func genValue() *rapid.Generator[Value] {
	return rapid.OneOf(
		rapid.Just(Null()),
		rapid.Map(rapid.Bool(), Bool),
		rapid.Map(rapid.Uint64(), Uint),
		rapid.Map(rapid.Int64(), Int),
		rapid.Map(rapid.Float64(), Float),
		rapid.Map(rapid.String(), String),
	)
}

func TestInstances_SetThenMatchingAccessor(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		props := NewInstances()
		name := rapid.String().Draw(r, "name")
		v := genValue().Draw(r, "value")

		props.Set(name, v)

		got, ok := props.Get(name)
		if !ok || !got.Equal(v) {
			r.Fatalf("Get(%q) = %#v, %v; want %#v", name, got, ok, v)
		}

		kinds := 0
		if _, ok := props.AsBool(name); ok {
			kinds++
		}
		if _, ok := props.AsUint(name); ok {
			kinds++
		}
		if _, ok := props.AsInt(name); ok {
			kinds++
		}
		if _, ok := props.AsFloat(name); ok {
			kinds++
		}
		if _, ok := props.AsString(name); ok {
			kinds++
		}
		want := 1
		if v.IsNull() {
			want = 0
		}
		if kinds != want {
			r.Fatalf("%d accessors matched %#v, want %d", kinds, v, want)
		}
	})
}
