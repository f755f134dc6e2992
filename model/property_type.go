package model

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/property"
)

// DataType is the declared value kind of a property.
type DataType string

const (
	DataTypeNull   DataType = "null"
	DataTypeBool   DataType = "bool"
	DataTypeNumber DataType = "number"
	DataTypeString DataType = "string"
	DataTypeArray  DataType = "array"
	DataTypeObject DataType = "object"
	DataTypeAny    DataType = "any"
)

// Accepts reports whether a value of the given kind conforms to the data type.
// Number accepts unsigned, signed and floating point values.
func (d DataType) Accepts(kind property.Kind) bool {
	switch d {
	case DataTypeAny:
		return true
	case DataTypeNull:
		return kind == property.KindNull
	case DataTypeBool:
		return kind == property.KindBool
	case DataTypeNumber:
		return kind == property.KindUint || kind == property.KindInt || kind == property.KindFloat
	case DataTypeString:
		return kind == property.KindString
	case DataTypeArray:
		return kind == property.KindArray
	case DataTypeObject:
		return kind == property.KindObject
	default:
		return false
	}
}

// SocketType declares whether a property is an input, an output or neither.
type SocketType string

const (
	SocketTypeNone   SocketType = "none"
	SocketTypeInput  SocketType = "input"
	SocketTypeOutput SocketType = "output"
)

// Mutability declares whether a property may change after creation.
type Mutability string

const (
	Mutable   Mutability = "mutable"
	Immutable Mutability = "immutable"
)

// PropertyType declares a property expected on instances of a component, entity type
// or relation type. Declarations are informational; instances are not checked
// against them.
type PropertyType struct {
	// Name is the property name.
	Name string `json:"name" yaml:"name"`

	// Description is a textual description of the property.
	Description string `json:"description" yaml:"description"`

	// DataType is the declared value kind. Defaults to any.
	DataType DataType `json:"data_type" yaml:"data_type"`

	// SocketType defaults to none.
	SocketType SocketType `json:"socket_type" yaml:"socket_type"`

	// Mutability defaults to mutable.
	Mutability Mutability `json:"mutability" yaml:"mutability"`

	// Extensions holds property specific extensions.
	Extensions []Extension `json:"extensions" yaml:"extensions"`
}

// NewPropertyType creates a mutable, non-socket property type.
func NewPropertyType(name string, dataType DataType) PropertyType {
	return PropertyType{
		Name:       name,
		DataType:   dataType,
		SocketType: SocketTypeNone,
		Mutability: Mutable,
		Extensions: []Extension{},
	}
}

// Accepts reports whether v conforms to the declared data type.
func (p PropertyType) Accepts(v property.Value) bool {
	return p.DataType.Accepts(v.Kind())
}

// HasExtension reports whether the property type carries an extension with the given name.
func (p PropertyType) HasExtension(name string) bool {
	return hasExtension(p.Extensions, name)
}

type plainPropertyType PropertyType

func defaultPropertyType() plainPropertyType {
	return plainPropertyType{
		DataType:   DataTypeAny,
		SocketType: SocketTypeNone,
		Mutability: Mutable,
	}
}

func (p *plainPropertyType) fillDefaults() {
	if p.Extensions == nil {
		p.Extensions = []Extension{}
	}
}

// UnmarshalJSON decodes a property type, filling defaults for missing fields.
func (p *PropertyType) UnmarshalJSON(data []byte) error {
	decoded := defaultPropertyType()
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	decoded.fillDefaults()
	*p = PropertyType(decoded)
	return nil
}

// UnmarshalYAML decodes a property type, filling defaults for missing fields.
func (p *PropertyType) UnmarshalYAML(node *yaml.Node) error {
	decoded := defaultPropertyType()
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	decoded.fillDefaults()
	*p = PropertyType(decoded)
	return nil
}

func hasProperty(properties []PropertyType, name string) bool {
	_, ok := findProperty(properties, name)
	return ok
}

func findProperty(properties []PropertyType, name string) (PropertyType, bool) {
	for _, p := range properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyType{}, false
}
