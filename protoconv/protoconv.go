package protoconv

import (
	"encoding/base64"
	"fmt"
	"math"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zero-day-ai/flowgraph/property"
)

// maxExactInteger is the largest magnitude a float64 holds without rounding.
const maxExactInteger = 1 << 53

// ToStruct converts a property store into a protobuf Struct.
func ToStruct(props property.Instances) *structpb.Struct {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(props))}
	for name, value := range props {
		s.Fields[name] = ToValue(value)
	}
	return s
}

// FromStruct converts a protobuf Struct into a property store. A nil Struct yields
// an empty store.
func FromStruct(s *structpb.Struct) property.Instances {
	props := property.NewInstances()
	for name, value := range s.GetFields() {
		props.Set(name, FromValue(value))
	}
	return props
}

// ToValue converts a property value into a protobuf Value. All numbers become
// doubles; integers beyond 2^53 lose precision.
func ToValue(v property.Value) *structpb.Value {
	switch v.Kind() {
	case property.KindBool:
		b, _ := v.AsBool()
		return structpb.NewBoolValue(b)
	case property.KindUint:
		u, _ := v.AsUint()
		return structpb.NewNumberValue(float64(u))
	case property.KindInt:
		i, _ := v.AsInt()
		return structpb.NewNumberValue(float64(i))
	case property.KindFloat:
		f, _ := v.AsFloat()
		return structpb.NewNumberValue(f)
	case property.KindString:
		s, _ := v.AsString()
		return structpb.NewStringValue(s)
	case property.KindArray:
		items, _ := v.AsArray()
		list := &structpb.ListValue{Values: make([]*structpb.Value, len(items))}
		for i, item := range items {
			list.Values[i] = ToValue(item)
		}
		return structpb.NewListValue(list)
	case property.KindObject:
		fields, _ := v.AsObject()
		s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
		for name, item := range fields {
			s.Fields[name] = ToValue(item)
		}
		return structpb.NewStructValue(s)
	default:
		return structpb.NewNullValue()
	}
}

// FromValue converts a protobuf Value into a property value.
//
// Numbers that are integral and within ±2^53 decode as integers with the same rule
// as JSON: non-negative values are unsigned, negative values signed. Other numbers
// decode as floats. A nil Value or unset kind decodes as null.
func FromValue(v *structpb.Value) property.Value {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return property.Bool(kind.BoolValue)
	case *structpb.Value_NumberValue:
		return fromNumber(kind.NumberValue)
	case *structpb.Value_StringValue:
		return property.String(kind.StringValue)
	case *structpb.Value_ListValue:
		values := kind.ListValue.GetValues()
		items := make([]property.Value, len(values))
		for i, item := range values {
			items[i] = FromValue(item)
		}
		return property.Array(items...)
	case *structpb.Value_StructValue:
		fields := make(map[string]property.Value, len(kind.StructValue.GetFields()))
		for name, item := range kind.StructValue.GetFields() {
			fields[name] = FromValue(item)
		}
		return property.Object(fields)
	default:
		return property.Null()
	}
}

func fromNumber(n float64) property.Value {
	if n != math.Trunc(n) || math.Abs(n) > maxExactInteger {
		return property.Float(n)
	}
	if n < 0 {
		return property.Int(int64(n))
	}
	return property.Uint(uint64(n))
}

// FromMessage converts the populated fields of a protobuf message into a property
// store keyed by field name. Fields named in skip are left out.
//
// Scalars map onto the matching value kinds, enums onto their value names, bytes
// onto base64 strings, repeated fields onto arrays and maps with string keys and
// nested messages onto objects.
func FromMessage(msg proto.Message, skip ...string) (property.Instances, error) {
	if msg == nil {
		return nil, fmt.Errorf("proto message is nil")
	}

	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	fields, err := messageFields(msg.ProtoReflect(), skipped)
	if err != nil {
		return nil, err
	}
	return property.Instances(fields), nil
}

func messageFields(refl protoreflect.Message, skipped map[string]bool) (map[string]property.Value, error) {
	fields := make(map[string]property.Value)
	var rangeErr error
	refl.Range(func(field protoreflect.FieldDescriptor, value protoreflect.Value) bool {
		name := string(field.Name())
		if skipped[name] {
			return true
		}

		converted, err := convertField(field, value)
		if err != nil {
			rangeErr = fmt.Errorf("failed to convert field %s: %w", name, err)
			return false
		}
		fields[name] = converted
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return fields, nil
}

func convertField(field protoreflect.FieldDescriptor, value protoreflect.Value) (property.Value, error) {
	switch {
	case field.IsMap():
		if field.MapKey().Kind() != protoreflect.StringKind {
			return property.Value{}, fmt.Errorf("only string map keys are supported, got %v", field.MapKey().Kind())
		}
		fields := make(map[string]property.Value, value.Map().Len())
		var err error
		value.Map().Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			var converted property.Value
			converted, err = convertScalar(field.MapValue(), v)
			if err != nil {
				return false
			}
			fields[k.String()] = converted
			return true
		})
		if err != nil {
			return property.Value{}, err
		}
		return property.Object(fields), nil

	case field.IsList():
		list := value.List()
		items := make([]property.Value, list.Len())
		for i := 0; i < list.Len(); i++ {
			converted, err := convertScalar(field, list.Get(i))
			if err != nil {
				return property.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = converted
		}
		return property.Array(items...), nil

	default:
		return convertScalar(field, value)
	}
}

// convertScalar converts a single element; field describes the element type.
func convertScalar(field protoreflect.FieldDescriptor, value protoreflect.Value) (property.Value, error) {
	switch field.Kind() {
	case protoreflect.StringKind:
		return property.String(value.String()), nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return property.From(value.Int())

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return property.Uint(value.Uint()), nil

	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return property.Float(value.Float()), nil

	case protoreflect.BoolKind:
		return property.Bool(value.Bool()), nil

	case protoreflect.BytesKind:
		return property.String(base64.StdEncoding.EncodeToString(value.Bytes())), nil

	case protoreflect.EnumKind:
		enumVal := value.Enum()
		enumDesc := field.Enum().Values().ByNumber(enumVal)
		if enumDesc == nil {
			return property.Value{}, fmt.Errorf("unknown enum value %d for field %s", enumVal, field.Name())
		}
		return property.String(string(enumDesc.Name())), nil

	case protoreflect.MessageKind, protoreflect.GroupKind:
		if s, ok := value.Message().Interface().(*structpb.Struct); ok {
			return property.Object(FromStruct(s)), nil
		}
		if v, ok := value.Message().Interface().(*structpb.Value); ok {
			return FromValue(v), nil
		}
		fields, err := messageFields(value.Message(), nil)
		if err != nil {
			return property.Value{}, err
		}
		return property.Object(fields), nil

	default:
		return property.Value{}, fmt.Errorf("unsupported field kind: %v", field.Kind())
	}
}
