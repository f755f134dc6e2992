package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/flowgraph/typeid"
)

func TestNewComponent(t *testing.T) {
	namespace, typeName, description := rString(), rString(), rString()
	ty := typeid.NewComponentTypeID(namespace, typeName)
	properties := []PropertyType{NewPropertyType("value", DataTypeNumber)}
	extensions := []Extension{NewExtension("dublin_core", map[string]any{"creator": "me"})}

	c := NewComponent(ty, description, properties, extensions)
	assert.Equal(t, ty, c.Ty)
	assert.Equal(t, ty, c.TypeID())
	assert.Equal(t, namespace, c.Namespace())
	assert.Equal(t, typeName, c.TypeName())
	assert.Equal(t, description, c.Description)
	assert.Equal(t, properties, c.Properties)
	assert.Equal(t, extensions, c.Extensions)

	fromType := NewComponentFromType(namespace, typeName, description, properties, extensions)
	assert.Equal(t, c, fromType)

	withoutExtensions := NewComponentWithoutExtensions(ty, description, properties)
	assert.Equal(t, properties, withoutExtensions.Properties)
	assert.Empty(t, withoutExtensions.Extensions)

	withoutProperties := NewComponentWithoutProperties(ty, description, extensions)
	assert.Empty(t, withoutProperties.Properties)
	assert.Equal(t, extensions, withoutProperties.Extensions)
}

func TestComponentHasProperty(t *testing.T) {
	c := NewComponentWithoutExtensions(
		typeid.NewComponentTypeID("ns", "labeled"),
		"",
		[]PropertyType{NewPropertyType("label", DataTypeString), NewPropertyType("x", DataTypeAny)},
	)

	tests := []struct {
		name     string
		property string
		expected bool
	}{
		{name: "declared", property: "label", expected: true},
		{name: "single character", property: "x", expected: true},
		{name: "case sensitive", property: "Label", expected: false},
		{name: "no trimming", property: " label", expected: false},
		{name: "empty string", property: "", expected: false},
		{name: "undeclared", property: "value", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.HasProperty(tt.property))
		})
	}

	p, ok := c.GetProperty("label")
	require.True(t, ok)
	assert.Equal(t, DataTypeString, p.DataType)

	_, ok = c.GetProperty("missing")
	assert.False(t, ok)
}

func TestComponentHasExtension(t *testing.T) {
	c := NewComponentWithoutProperties(
		typeid.NewComponentTypeID("ns", "labeled"),
		"",
		[]Extension{NewExtension("flow_editor_palette", nil)},
	)

	assert.True(t, c.HasExtension("flow_editor_palette"))
	assert.False(t, c.HasExtension("FLOW_EDITOR_PALETTE"))
	assert.False(t, c.HasExtension(""))

	_, ok := c.GetExtension("flow_editor_palette")
	assert.True(t, ok)
	_, ok = c.GetExtension("other")
	assert.False(t, ok)
}

func TestEntityType(t *testing.T) {
	labeled := typeid.NewComponentTypeID("core", "labeled")
	et := NewEntityTypeFromType("ns", "sensor", "a sensor",
		[]typeid.TypeID{labeled},
		[]PropertyType{NewPropertyType("value", DataTypeNumber)},
		[]Extension{NewExtension("meta", nil)},
	)

	assert.Equal(t, typeid.NewEntityTypeID("ns", "sensor"), et.TypeID())
	assert.Equal(t, "ns", et.Namespace())
	assert.Equal(t, "sensor", et.TypeName())
	assert.True(t, et.HasComponent(labeled))
	assert.False(t, et.HasComponent(typeid.NewComponentTypeID("core", "other")))
	assert.False(t, et.HasComponent(typeid.NewEntityTypeID("core", "labeled")), "component kind is part of the identity")
	assert.True(t, et.HasProperty("value"))
	assert.False(t, et.HasProperty("Value"))
	assert.True(t, et.HasExtension("meta"))

	assert.Empty(t, NewEntityTypeWithoutExtensions(et.Ty, "", nil, et.Properties).Extensions)
	assert.Empty(t, NewEntityTypeWithoutProperties(et.Ty, "", nil, et.Extensions).Properties)
}

func TestRelationType(t *testing.T) {
	sensor := typeid.NewEntityTypeID("ns", "sensor")
	gateway := typeid.NewEntityTypeID("ns", "gateway")
	rt := NewRelationTypeFromType(sensor, "ns", "reports_to", gateway, "",
		nil,
		[]PropertyType{NewPropertyType("interval", DataTypeNumber)},
		nil,
	)

	assert.Equal(t, typeid.NewRelationTypeID("ns", "reports_to"), rt.TypeID())
	assert.Equal(t, sensor, rt.OutboundType)
	assert.Equal(t, gateway, rt.InboundType)
	assert.True(t, rt.HasProperty("interval"))
	assert.False(t, rt.HasExtension("interval"))

	p, ok := rt.GetProperty("interval")
	require.True(t, ok)
	assert.Equal(t, "interval", p.Name)

	assert.Empty(t, NewRelationTypeWithoutExtensions(sensor, rt.Ty, gateway, "", nil, nil).Extensions)
	assert.Empty(t, NewRelationTypeWithoutProperties(sensor, rt.Ty, gateway, "", nil, nil).Properties)
}
