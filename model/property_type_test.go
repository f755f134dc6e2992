package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/property"
)

func TestPropertyTypeDefaults(t *testing.T) {
	expected := PropertyType{
		Name:       "value",
		DataType:   DataTypeAny,
		SocketType: SocketTypeNone,
		Mutability: Mutable,
		Extensions: []Extension{},
	}

	var fromJSON PropertyType
	require.NoError(t, json.Unmarshal([]byte(`{"name":"value"}`), &fromJSON))
	assert.Equal(t, expected, fromJSON)

	var fromYAML PropertyType
	require.NoError(t, yaml.Unmarshal([]byte("name: value\n"), &fromYAML))
	assert.Equal(t, expected, fromYAML)
}

func TestDataTypeAccepts(t *testing.T) {
	values := map[string]property.Value{
		"null":   property.Null(),
		"bool":   property.Bool(true),
		"uint":   property.Uint(1),
		"int":    property.Int(-1),
		"float":  property.Float(1.5),
		"string": property.String("s"),
		"array":  property.Array(),
		"object": property.Object(nil),
	}

	tests := []struct {
		dataType DataType
		accepted []string
	}{
		{DataTypeNull, []string{"null"}},
		{DataTypeBool, []string{"bool"}},
		{DataTypeNumber, []string{"uint", "int", "float"}},
		{DataTypeString, []string{"string"}},
		{DataTypeArray, []string{"array"}},
		{DataTypeObject, []string{"object"}},
		{DataTypeAny, []string{"null", "bool", "uint", "int", "float", "string", "array", "object"}},
		{DataType("unknown"), nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.dataType), func(t *testing.T) {
			for name, v := range values {
				assert.Equal(t, contains(tt.accepted, name), tt.dataType.Accepts(v.Kind()), name)
			}
		})
	}

	assert.True(t, NewPropertyType("x", DataTypeNumber).Accepts(property.Float(2)))
	assert.False(t, NewPropertyType("x", DataTypeNumber).Accepts(property.String("2")))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
