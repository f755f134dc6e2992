package model

import (
	"github.com/google/uuid"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/property"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// EntityInstance is a typed vertex. Its storage identity is the vertex
// (ID, FQI(entity type)).
type EntityInstance struct {
	// Namespace of the entity type.
	Namespace string `json:"namespace"`

	// TypeName of the entity type.
	TypeName string `json:"type_name"`

	// ID is the unique id of the instance.
	ID uuid.UUID `json:"id"`

	// Description is a textual description of the entity instance.
	Description string `json:"description"`

	// Properties holds the property values of the instance.
	Properties property.Instances `json:"properties"`

	// Extensions holds instance specific extensions.
	Extensions []Extension `json:"extensions"`
}

// NewEntityInstance creates an entity instance. A nil property map is replaced by
// an empty one.
func NewEntityInstance(namespace, typeName string, id uuid.UUID, properties property.Instances) EntityInstance {
	if properties == nil {
		properties = property.NewInstances()
	}
	return EntityInstance{
		Namespace:  namespace,
		TypeName:   typeName,
		ID:         id,
		Properties: properties,
		Extensions: []Extension{},
	}
}

// NewEntityInstanceWithoutProperties creates an entity instance with an empty property store.
func NewEntityInstanceWithoutProperties(namespace, typeName string, id uuid.UUID) EntityInstance {
	return NewEntityInstance(namespace, typeName, id, nil)
}

// EntityInstanceFromVertexProperties rebuilds an entity instance from a stored vertex.
func EntityInstanceFromVertexProperties(vp graph.VertexProperties) EntityInstance {
	return EntityInstance{
		Namespace:  vp.Label.Namespace,
		TypeName:   vp.Label.TypeName,
		ID:         vp.Vertex.ID,
		Properties: graph.PropertyInstances(vp.Props),
		Extensions: []Extension{},
	}
}

// TypeID returns the entity type of the instance.
func (e EntityInstance) TypeID() typeid.TypeID {
	return typeid.NewEntityTypeID(e.Namespace, e.TypeName)
}

// GetKey returns the vertex of the instance.
func (e EntityInstance) GetKey() graph.Vertex {
	return graph.Vertex{
		ID: e.ID,
		T:  typeid.FullyQualifiedIdentifier(e.Namespace, e.TypeName, typeid.NamespaceEntityType),
	}
}

// VertexProperties projects the instance onto a storable vertex record.
func (e EntityInstance) VertexProperties() graph.VertexProperties {
	return graph.NewVertexProperties(
		e.GetKey(),
		graph.TypeLabel{Namespace: e.Namespace, TypeName: e.TypeName},
		graph.NamedProperties(e.Properties),
	)
}

// Get returns the raw value of a property.
func (e EntityInstance) Get(name string) (property.Value, bool) {
	return e.Properties.Get(name)
}

// Set inserts or overwrites a property.
func (e *EntityInstance) Set(name string, value property.Value) {
	e.Properties.Set(name, value)
}

// AsBool returns the property if it is set to a bool. The As* accessors below
// report a missing property and one of another kind alike, as false.
func (e EntityInstance) AsBool(name string) (bool, bool) { return e.Properties.AsBool(name) }

// AsUint returns the property if it is set to an unsigned integer.
func (e EntityInstance) AsUint(name string) (uint64, bool) { return e.Properties.AsUint(name) }

// AsInt returns the property if it is set to a signed integer.
func (e EntityInstance) AsInt(name string) (int64, bool) { return e.Properties.AsInt(name) }

// AsFloat returns the property if it is set to a float.
func (e EntityInstance) AsFloat(name string) (float64, bool) { return e.Properties.AsFloat(name) }

// AsString returns the property if it is set to a string.
func (e EntityInstance) AsString(name string) (string, bool) { return e.Properties.AsString(name) }

// AsArray returns the property if it is set to an array.
func (e EntityInstance) AsArray(name string) ([]property.Value, bool) {
	return e.Properties.AsArray(name)
}

// AsObject returns the property if it is set to an object.
func (e EntityInstance) AsObject(name string) (map[string]property.Value, bool) {
	return e.Properties.AsObject(name)
}

// HasExtension reports whether an extension with this name is attached.
func (e EntityInstance) HasExtension(name string) bool {
	return hasExtension(e.Extensions, name)
}

// GetExtension returns the extension with this name.
func (e EntityInstance) GetExtension(name string) (Extension, bool) {
	return findExtension(e.Extensions, name)
}
