package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MarshalJSON encodes v as plain JSON. Floats always carry a fraction or an exponent so
// that they decode back as floats; NaN and infinities encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindUint:
		return strconv.AppendUint(nil, v.u, 10), nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		out := strconv.AppendFloat(nil, v.f, 'g', -1, 64)
		if !bytes.ContainsAny(out, ".eE") {
			out = append(out, '.', '0')
		}
		return out, nil
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.a)
	case KindObject:
		return json.Marshal(v.o)
	default:
		return nil, fmt.Errorf("cannot marshal %s", v.kind)
	}
}

// UnmarshalJSON decodes any JSON document. Integers without fraction or exponent decode
// as KindUint when non-negative and KindInt when negative; other numbers, and integers
// outside the 64-bit ranges, decode as KindFloat.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	decoded, err := fromDecoded(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ParseJSON decodes a JSON document into a Value.
func ParseJSON(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, err
	}
	return v, nil
}

func fromDecoded(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		return fromNumber(x)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			decoded, err := fromDecoded(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = decoded
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			decoded, err := fromDecoded(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = decoded
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, raw)
	}
}

func fromNumber(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if strings.HasPrefix(s, "-") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int(i), nil
			}
		} else if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Uint(u), nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Float(f), nil
}

// Tagged wraps a Value for a JSON form that records the kind of the value and of
// every nested value, so decoding returns exactly the encoded kinds:
//
//	{"kind":"int","value":5}
//	{"kind":"array","value":[{"kind":"uint","value":1},{"kind":"null"}]}
//
// Non-finite floats are stored as the strings "NaN", "+Inf" and "-Inf".
type Tagged struct {
	Value Value
}

type taggedRecord struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes t in its kind-tagged form.
func (t Tagged) MarshalJSON() ([]byte, error) {
	v := t.Value
	rec := taggedRecord{Kind: v.kind.String()}

	var err error
	switch v.kind {
	case KindNull:
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			rec.Value, err = json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		} else {
			rec.Value, err = v.MarshalJSON()
		}
	case KindArray:
		items := make([]Tagged, len(v.a))
		for i, item := range v.a {
			items[i] = Tagged{Value: item}
		}
		rec.Value, err = json.Marshal(items)
	case KindObject:
		fields := make(map[string]Tagged, len(v.o))
		for k, item := range v.o {
			fields[k] = Tagged{Value: item}
		}
		rec.Value, err = json.Marshal(fields)
	default:
		rec.Value, err = v.MarshalJSON()
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes the kind-tagged form written by MarshalJSON.
func (t *Tagged) UnmarshalJSON(data []byte) error {
	var rec taggedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	kind, err := parseKind(rec.Kind)
	if err != nil {
		return err
	}

	var v Value
	switch kind {
	case KindNull:
		v = Null()
	case KindBool:
		var b bool
		err = json.Unmarshal(rec.Value, &b)
		v = Bool(b)
	case KindUint:
		var u uint64
		err = json.Unmarshal(rec.Value, &u)
		v = Uint(u)
	case KindInt:
		var i int64
		err = json.Unmarshal(rec.Value, &i)
		v = Int(i)
	case KindFloat:
		var f float64
		f, err = decodeTaggedFloat(rec.Value)
		v = Float(f)
	case KindString:
		var s string
		err = json.Unmarshal(rec.Value, &s)
		v = String(s)
	case KindArray:
		var items []Tagged
		err = json.Unmarshal(rec.Value, &items)
		values := make([]Value, len(items))
		for i, item := range items {
			values[i] = item.Value
		}
		v = Array(values...)
	case KindObject:
		var fields map[string]Tagged
		err = json.Unmarshal(rec.Value, &fields)
		values := make(map[string]Value, len(fields))
		for k, item := range fields {
			values[k] = item.Value
		}
		v = Object(values)
	}
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", kind, err)
	}
	t.Value = v
	return nil
}

func decodeTaggedFloat(data json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	err := json.Unmarshal(data, &f)
	return f, err
}

func parseKind(s string) (Kind, error) {
	for k := KindNull; k <= KindObject; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindNull, fmt.Errorf("unknown property kind %q", s)
}
