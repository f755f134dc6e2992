package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zero-day-ai/flowgraph/property"
)

// EdgeKey identifies an edge: outbound vertex, type identifier, inbound vertex.
// It is comparable and usable as a map key.
type EdgeKey struct {
	OutboundID uuid.UUID `json:"outbound_id"`
	T          uuid.UUID `json:"t"`
	InboundID  uuid.UUID `json:"inbound_id"`
}

// NewEdgeKey creates an edge key.
func NewEdgeKey(outboundID, t, inboundID uuid.UUID) EdgeKey {
	return EdgeKey{OutboundID: outboundID, T: t, InboundID: inboundID}
}

// Reversed swaps the outbound and inbound vertices.
func (k EdgeKey) Reversed() EdgeKey {
	return EdgeKey{OutboundID: k.InboundID, T: k.T, InboundID: k.OutboundID}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%s-[%s]->%s", k.OutboundID, k.T, k.InboundID)
}

// TypeLabel carries the namespace and type name of a record next to its opaque type
// identifier. The identifier itself is never decoded.
type TypeLabel struct {
	Namespace string `json:"namespace"`
	TypeName  string `json:"type_name"`
}

// Edge is a stored edge.
type Edge struct {
	Key       EdgeKey   `json:"key"`
	Label     TypeLabel `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEdgeWithCurrentDatetime creates an edge stamped with the current time.
func NewEdgeWithCurrentDatetime(key EdgeKey, label TypeLabel) Edge {
	return Edge{Key: key, Label: label, CreatedAt: time.Now().UTC()}
}

// Vertex is a stored vertex.
type Vertex struct {
	ID uuid.UUID `json:"id"`
	T  uuid.UUID `json:"t"`
}

// NamedProperty is a property as stored on an edge or vertex. Name is the encoded
// property name, see PropertyIdentifier.
type NamedProperty struct {
	Name  string         `json:"name"`
	Value property.Value `json:"value"`
}

// EdgeProperties is an edge together with its properties.
type EdgeProperties struct {
	Edge  Edge            `json:"edge"`
	Props []NamedProperty `json:"props"`
}

// NewEdgeProperties creates an edge-properties record.
func NewEdgeProperties(edge Edge, props []NamedProperty) EdgeProperties {
	return EdgeProperties{Edge: edge, Props: props}
}

// VertexProperties is a vertex together with its label and properties.
type VertexProperties struct {
	Vertex Vertex          `json:"vertex"`
	Label  TypeLabel       `json:"label"`
	Props  []NamedProperty `json:"props"`
}

// NewVertexProperties creates a vertex-properties record.
func NewVertexProperties(vertex Vertex, label TypeLabel, props []NamedProperty) VertexProperties {
	return VertexProperties{Vertex: vertex, Label: label, Props: props}
}

// PropertyIdentifier encodes a property name for storage. Names are stored verbatim.
func PropertyIdentifier(name string) string {
	return name
}

// PropertyName decodes a stored property name. Any encoding is accepted as-is.
func PropertyName(identifier string) string {
	return identifier
}

// NamedProperties encodes a property store as a list sorted by name.
func NamedProperties(props property.Instances) []NamedProperty {
	names := props.Names()
	out := make([]NamedProperty, 0, len(names))
	for _, name := range names {
		out = append(out, NamedProperty{Name: PropertyIdentifier(name), Value: props[name]})
	}
	return out
}

// PropertyInstances decodes a list of stored properties into a property store.
// Later entries win when a name repeats.
func PropertyInstances(named []NamedProperty) property.Instances {
	props := make(property.Instances, len(named))
	for _, np := range named {
		props.Set(PropertyName(np.Name), np.Value)
	}
	return props
}
