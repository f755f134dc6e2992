package model

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/typeid"
)

// RelationType declares a relation between an outbound and an inbound entity type.
type RelationType struct {
	// OutboundType is the entity type of the outbound end.
	OutboundType typeid.TypeID

	// Ty identifies the relation type. Its kind is typeid.RelationType.
	Ty typeid.TypeID

	// InboundType is the entity type of the inbound end.
	InboundType typeid.TypeID

	// Description is a textual description of the relation type.
	Description string

	// Components lists the components applied to the relation type.
	Components []typeid.TypeID

	// Properties are the properties declared by the relation type itself.
	Properties []PropertyType

	// Extensions holds relation type specific extensions.
	Extensions []Extension
}

// NewRelationType creates a relation type from outbound entity type to inbound entity type.
func NewRelationType(outboundType, ty, inboundType typeid.TypeID, description string, components []typeid.TypeID, properties []PropertyType, extensions []Extension) RelationType {
	return RelationType{
		OutboundType: outboundType,
		Ty:           ty,
		InboundType:  inboundType,
		Description:  description,
		Components:   components,
		Properties:   properties,
		Extensions:   extensions,
	}
}

// NewRelationTypeFromType creates a relation type from a namespace and type name.
func NewRelationTypeFromType(outboundType typeid.TypeID, namespace, typeName string, inboundType typeid.TypeID, description string, components []typeid.TypeID, properties []PropertyType, extensions []Extension) RelationType {
	return NewRelationType(outboundType, typeid.NewRelationTypeID(namespace, typeName), inboundType, description, components, properties, extensions)
}

// NewRelationTypeWithoutExtensions creates a relation type with no extensions.
func NewRelationTypeWithoutExtensions(outboundType, ty, inboundType typeid.TypeID, description string, components []typeid.TypeID, properties []PropertyType) RelationType {
	return NewRelationType(outboundType, ty, inboundType, description, components, properties, []Extension{})
}

// NewRelationTypeWithoutProperties creates a relation type that declares no properties of its own.
func NewRelationTypeWithoutProperties(outboundType, ty, inboundType typeid.TypeID, description string, components []typeid.TypeID, extensions []Extension) RelationType {
	return NewRelationType(outboundType, ty, inboundType, description, components, []PropertyType{}, extensions)
}

// TypeID returns the type id of the relation type.
func (t RelationType) TypeID() typeid.TypeID { return t.Ty }

// Namespace returns the namespace of the relation type.
func (t RelationType) Namespace() string { return t.Ty.Namespace }

// TypeName returns the type name of the relation type.
func (t RelationType) TypeName() string { return t.Ty.TypeName }

// HasComponent reports whether the relation type applies the given component.
func (t RelationType) HasComponent(component typeid.TypeID) bool {
	return slices.Contains(t.Components, component)
}

// HasProperty reports whether the relation type declares a property with this name.
func (t RelationType) HasProperty(name string) bool {
	return hasProperty(t.Properties, name)
}

// GetProperty returns the declared property with this name.
func (t RelationType) GetProperty(name string) (PropertyType, bool) {
	return findProperty(t.Properties, name)
}

// HasExtension reports whether an extension with this name is attached.
func (t RelationType) HasExtension(name string) bool {
	return hasExtension(t.Extensions, name)
}

// GetExtension returns the extension with this name.
func (t RelationType) GetExtension(name string) (Extension, bool) {
	return findExtension(t.Extensions, name)
}

// ToDAO converts the relation type to its persisted form.
func (t RelationType) ToDAO() RelationTypeDAO {
	return RelationTypeDAO{
		OutboundType: TypeRefFrom(t.OutboundType),
		Namespace:    t.Ty.Namespace,
		TypeName:     t.Ty.TypeName,
		InboundType:  TypeRefFrom(t.InboundType),
		Description:  t.Description,
		Components:   typeRefs(t.Components),
		Properties:   orEmpty(slices.Clone(t.Properties)),
		Extensions:   orEmpty(slices.Clone(t.Extensions)),
	}
}

// RelationTypeFromDAO converts a persisted relation type.
func RelationTypeFromDAO(dao RelationTypeDAO) RelationType {
	return RelationType{
		OutboundType: dao.OutboundType.TypeID(typeid.EntityType),
		Ty:           typeid.NewRelationTypeID(dao.Namespace, dao.TypeName),
		InboundType:  dao.InboundType.TypeID(typeid.EntityType),
		Description:  dao.Description,
		Components:   typeIDs(dao.Components, typeid.Component),
		Properties:   slices.Clone(dao.Properties),
		Extensions:   slices.Clone(dao.Extensions),
	}
}

func (t RelationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToDAO())
}

func (t *RelationType) UnmarshalJSON(data []byte) error {
	var dao RelationTypeDAO
	if err := json.Unmarshal(data, &dao); err != nil {
		return err
	}
	*t = RelationTypeFromDAO(dao)
	return nil
}

// RelationTypeDAO is the persisted form of a RelationType. It decodes with the same
// alias and defaults as ComponentDAO.
type RelationTypeDAO struct {
	OutboundType TypeRef        `json:"outbound_type" yaml:"outbound_type"`
	Namespace    string         `json:"namespace" yaml:"namespace"`
	TypeName     string         `json:"type_name" yaml:"type_name"`
	InboundType  TypeRef        `json:"inbound_type" yaml:"inbound_type"`
	Description  string         `json:"description" yaml:"description"`
	Components   []TypeRef      `json:"components" yaml:"components"`
	Properties   []PropertyType `json:"properties" yaml:"properties"`
	Extensions   []Extension    `json:"extensions" yaml:"extensions"`
}

func (d *RelationTypeDAO) fillDefaults(name string) {
	d.TypeName = aliased(d.TypeName, name)
	d.Components = orEmpty(d.Components)
	d.Properties = orEmpty(d.Properties)
	d.Extensions = orEmpty(d.Extensions)
}

func (d *RelationTypeDAO) UnmarshalJSON(data []byte) error {
	type plain RelationTypeDAO
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = RelationTypeDAO(raw.plain)
	d.fillDefaults(raw.Name)
	return nil
}

func (d *RelationTypeDAO) UnmarshalYAML(node *yaml.Node) error {
	type plain RelationTypeDAO
	var raw struct {
		plain `yaml:",inline"`
		Name  string `yaml:"name"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = RelationTypeDAO(raw.plain)
	d.fillDefaults(raw.Name)
	return nil
}
