package typeid

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the category a type identifier belongs to.
type Kind int

const (
	// Component identifies component types.
	Component Kind = iota + 1
	// EntityType identifies entity types.
	EntityType
	// RelationType identifies relation types.
	RelationType
	// FlowType identifies flow types.
	FlowType
)

// Category namespaces seed the identifier derivation so that identically named
// types in different categories never share an identifier.
var (
	NamespaceComponent    = uuid.MustParse("2e5a0c63-ce7c-4a57-8e36-3c1d7a2a1f01")
	NamespaceEntityType   = uuid.MustParse("4b9f7d02-15e3-4c4b-9a0e-55d6c0b8a402")
	NamespaceRelationType = uuid.MustParse("71c3e8a9-6d04-4f7a-b2c5-0e9d4f3b7c03")
	NamespaceFlowType     = uuid.MustParse("a8d1f6b4-3e27-4d9c-8f61-2b7e5c0d9e04")
)

// String returns the lowercase category name.
func (k Kind) String() string {
	switch k {
	case Component:
		return "component"
	case EntityType:
		return "entity_type"
	case RelationType:
		return "relation_type"
	case FlowType:
		return "flow_type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Namespace returns the category namespace constant of the kind.
// Unknown kinds map to uuid.Nil.
func (k Kind) Namespace() uuid.UUID {
	switch k {
	case Component:
		return NamespaceComponent
	case EntityType:
		return NamespaceEntityType
	case RelationType:
		return NamespaceRelationType
	case FlowType:
		return NamespaceFlowType
	default:
		return uuid.Nil
	}
}

// ParseKind parses the output of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "component":
		return Component, nil
	case "entity_type":
		return EntityType, nil
	case "relation_type":
		return RelationType, nil
	case "flow_type":
		return FlowType, nil
	default:
		return 0, fmt.Errorf("unknown type kind %q", s)
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k.Namespace() == uuid.Nil {
		return nil, fmt.Errorf("unknown type kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// TypeID is a namespaced type identifier. Two TypeIDs are equal iff kind,
// namespace and type name are all equal.
type TypeID struct {
	Kind      Kind   `json:"kind"`
	Namespace string `json:"namespace"`
	TypeName  string `json:"type_name"`
}

// New creates a TypeID of the given kind.
func New(kind Kind, namespace, typeName string) TypeID {
	return TypeID{Kind: kind, Namespace: namespace, TypeName: typeName}
}

// NewComponentTypeID creates a component type identifier.
func NewComponentTypeID(namespace, typeName string) TypeID {
	return New(Component, namespace, typeName)
}

// NewEntityTypeID creates an entity type identifier.
func NewEntityTypeID(namespace, typeName string) TypeID {
	return New(EntityType, namespace, typeName)
}

// NewRelationTypeID creates a relation type identifier.
func NewRelationTypeID(namespace, typeName string) TypeID {
	return New(RelationType, namespace, typeName)
}

// NewFlowTypeID creates a flow type identifier.
func NewFlowTypeID(namespace, typeName string) TypeID {
	return New(FlowType, namespace, typeName)
}

// FullyQualifiedIdentifier derives the fixed-size graph store identifier of t.
func (t TypeID) FullyQualifiedIdentifier() uuid.UUID {
	return FullyQualifiedIdentifier(t.Namespace, t.TypeName, t.Kind.Namespace())
}

// String renders the identifier for logs. The output is not meant to be parsed.
func (t TypeID) String() string {
	return fmt.Sprintf("%s(%s__%s)", t.Kind, t.Namespace, t.TypeName)
}
