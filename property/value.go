package property

import (
	"fmt"
	"math"
	"reflect"
)

// Kind is the dynamic kind of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindUint
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON-like dynamically typed value. The zero Value is null.
//
// Values are treated as immutable: the slices and maps returned by AsArray and
// AsObject are shared with the Value and must not be modified.
type Value struct {
	kind Kind
	b    bool
	u    uint64
	i    int64
	f    float64
	s    string
	a    []Value
	o    map[string]Value
}

// Null returns the explicit null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Uint returns an unsigned integer value.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// Int returns a signed integer value. The kind is KindInt even for non-negative v.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an ordered sequence value.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, a: items}
}

// Object returns a mapping value.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, o: fields}
}

// From converts a Go value into a Value the way a JSON decoder would see it:
// non-negative integers become KindUint, negative integers KindInt.
// Slices, arrays and string-keyed maps are converted recursively.
func From(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return fromInt64(int64(x)), nil
	case int8:
		return fromInt64(int64(x)), nil
	case int16:
		return fromInt64(int64(x)), nil
	case int32:
		return fromInt64(int64(x)), nil
	case int64:
		return fromInt64(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case []Value:
		return Array(x...), nil
	case map[string]Value:
		return Object(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			converted, err := From(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = converted
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			converted, err := From(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = converted
		}
		return Object(fields), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			converted, err := From(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = converted
		}
		return Array(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			converted, err := From(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = converted
		}
		return Object(fields), nil
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// MustFrom is like From but panics on unsupported types.
func MustFrom(v any) Value {
	value, err := From(v)
	if err != nil {
		panic(err)
	}
	return value
}

func fromInt64(i int64) Value {
	if i < 0 {
		return Int(i)
	}
	return Uint(uint64(i))
}

// Kind returns the dynamic kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the explicit null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload if v is a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsUint returns the payload if v is an unsigned integer.
func (v Value) AsUint() (uint64, bool) {
	if v.kind != KindUint {
		return 0, false
	}
	return v.u, true
}

// AsInt returns the payload if v is a signed integer.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the payload if v is a float.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsString returns the payload if v is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsArray returns the items if v is an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.a, true
}

// AsObject returns the fields if v is an object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.o, true
}

// Interface converts v into plain Go values: nil, bool, uint64, int64, float64,
// string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindUint:
		return v.u
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		items := make([]any, len(v.a))
		for i, item := range v.a {
			items[i] = item.Interface()
		}
		return items
	case KindObject:
		fields := make(map[string]any, len(v.o))
		for k, item := range v.o {
			fields[k] = item.Interface()
		}
		return fields
	default:
		return nil
	}
}

// Equal reports whether v and other have the same kind and payload.
// NaN floats are equal to each other.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindUint:
		return v.u == other.u
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(other.a[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.o) != len(other.o) {
			return false
		}
		for k, item := range v.o {
			o, ok := other.o[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// GoString renders v for %#v and test failure output.
func (v Value) GoString() string {
	return fmt.Sprintf("property.%s(%v)", v.kind, v.Interface())
}
