package model

import (
	"github.com/google/uuid"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/property"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// RelationInstance is a typed edge between two entity instances.
//
// Its storage identity is the edge key (OutboundID, FQI(relation type), InboundID).
// Description, properties and extensions are not part of the identity.
type RelationInstance struct {
	// Namespace of the relation type.
	Namespace string `json:"namespace"`

	// OutboundID is the id of the outbound entity instance.
	OutboundID uuid.UUID `json:"outbound_id"`

	// TypeName of the relation type.
	TypeName string `json:"type_name"`

	// InboundID is the id of the inbound entity instance.
	InboundID uuid.UUID `json:"inbound_id"`

	// Description is a textual description of the relation instance.
	Description string `json:"description"`

	// Properties holds the property values of the instance. They are not checked
	// against the relation type.
	Properties property.Instances `json:"properties"`

	// Extensions holds instance specific extensions.
	Extensions []Extension `json:"extensions"`
}

// NewRelationInstance creates a relation instance with an empty description and no
// extensions. A nil property map is replaced by an empty one.
func NewRelationInstance(namespace string, outboundID uuid.UUID, typeName string, inboundID uuid.UUID, properties property.Instances) RelationInstance {
	if properties == nil {
		properties = property.NewInstances()
	}
	return RelationInstance{
		Namespace:  namespace,
		OutboundID: outboundID,
		TypeName:   typeName,
		InboundID:  inboundID,
		Properties: properties,
		Extensions: []Extension{},
	}
}

// NewRelationInstanceWithoutProperties creates a relation instance with an empty
// property store.
func NewRelationInstanceWithoutProperties(namespace string, outboundID uuid.UUID, typeName string, inboundID uuid.UUID) RelationInstance {
	return NewRelationInstance(namespace, outboundID, typeName, inboundID, nil)
}

// RelationInstanceFromEdgeProperties rebuilds a relation instance from a stored edge.
// Namespace and type name come from the edge's type label; the type identifier in the
// key is not decoded.
func RelationInstanceFromEdgeProperties(ep graph.EdgeProperties) RelationInstance {
	return RelationInstance{
		Namespace:  ep.Edge.Label.Namespace,
		OutboundID: ep.Edge.Key.OutboundID,
		TypeName:   ep.Edge.Label.TypeName,
		InboundID:  ep.Edge.Key.InboundID,
		Properties: graph.PropertyInstances(ep.Props),
		Extensions: []Extension{},
	}
}

// TypeID returns the relation type identifier of the instance.
func (r RelationInstance) TypeID() typeid.TypeID {
	return typeid.NewRelationTypeID(r.Namespace, r.TypeName)
}

// GetKey returns the edge key of the instance.
func (r RelationInstance) GetKey() graph.EdgeKey {
	t := typeid.FullyQualifiedIdentifier(r.Namespace, r.TypeName, typeid.NamespaceRelationType)
	return graph.NewEdgeKey(r.OutboundID, t, r.InboundID)
}

// EdgeProperties projects the instance onto a storable edge record.
func (r RelationInstance) EdgeProperties() graph.EdgeProperties {
	edge := graph.NewEdgeWithCurrentDatetime(r.GetKey(), graph.TypeLabel{
		Namespace: r.Namespace,
		TypeName:  r.TypeName,
	})
	return graph.NewEdgeProperties(edge, graph.NamedProperties(r.Properties))
}

// Get returns the raw value of a property.
func (r RelationInstance) Get(name string) (property.Value, bool) {
	return r.Properties.Get(name)
}

// Set inserts or overwrites a property.
func (r *RelationInstance) Set(name string, value property.Value) {
	r.Properties.Set(name, value)
}

// AsBool returns the property if it is set to a bool. The As* accessors below
// report a missing property and one of another kind alike, as false.
func (r RelationInstance) AsBool(name string) (bool, bool) { return r.Properties.AsBool(name) }

// AsUint returns the property if it is set to an unsigned integer.
func (r RelationInstance) AsUint(name string) (uint64, bool) { return r.Properties.AsUint(name) }

// AsInt returns the property if it is set to a signed integer.
func (r RelationInstance) AsInt(name string) (int64, bool) { return r.Properties.AsInt(name) }

// AsFloat returns the property if it is set to a float.
func (r RelationInstance) AsFloat(name string) (float64, bool) { return r.Properties.AsFloat(name) }

// AsString returns the property if it is set to a string.
func (r RelationInstance) AsString(name string) (string, bool) { return r.Properties.AsString(name) }

// AsArray returns the property if it is set to an array.
func (r RelationInstance) AsArray(name string) ([]property.Value, bool) {
	return r.Properties.AsArray(name)
}

// AsObject returns the property if it is set to an object.
func (r RelationInstance) AsObject(name string) (map[string]property.Value, bool) {
	return r.Properties.AsObject(name)
}

// HasExtension reports whether an extension with this name is attached.
func (r RelationInstance) HasExtension(name string) bool {
	return hasExtension(r.Extensions, name)
}

// GetExtension returns the extension with this name.
func (r RelationInstance) GetExtension(name string) (Extension, bool) {
	return findExtension(r.Extensions, name)
}
