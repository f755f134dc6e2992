package model

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/typeid"
)

// EntityType declares the components, properties and extensions expected on entity
// instances of a type.
type EntityType struct {
	// Ty identifies the entity type. Its kind is typeid.EntityType.
	Ty typeid.TypeID

	// Description is a textual description of the entity type.
	Description string

	// Components lists the components applied to the entity type.
	Components []typeid.TypeID

	// Properties are the properties declared by the entity type itself.
	Properties []PropertyType

	// Extensions holds entity type specific extensions.
	Extensions []Extension
}

// NewEntityType creates an entity type.
func NewEntityType(ty typeid.TypeID, description string, components []typeid.TypeID, properties []PropertyType, extensions []Extension) EntityType {
	return EntityType{
		Ty:          ty,
		Description: description,
		Components:  components,
		Properties:  properties,
		Extensions:  extensions,
	}
}

// NewEntityTypeFromType creates an entity type from a namespace and type name.
func NewEntityTypeFromType(namespace, typeName, description string, components []typeid.TypeID, properties []PropertyType, extensions []Extension) EntityType {
	return NewEntityType(typeid.NewEntityTypeID(namespace, typeName), description, components, properties, extensions)
}

// NewEntityTypeWithoutExtensions creates an entity type with no extensions.
func NewEntityTypeWithoutExtensions(ty typeid.TypeID, description string, components []typeid.TypeID, properties []PropertyType) EntityType {
	return NewEntityType(ty, description, components, properties, []Extension{})
}

// NewEntityTypeWithoutProperties creates an entity type that declares no properties of its own.
func NewEntityTypeWithoutProperties(ty typeid.TypeID, description string, components []typeid.TypeID, extensions []Extension) EntityType {
	return NewEntityType(ty, description, components, []PropertyType{}, extensions)
}

// TypeID returns the type id of the entity type.
func (t EntityType) TypeID() typeid.TypeID { return t.Ty }

// Namespace returns the namespace of the entity type.
func (t EntityType) Namespace() string { return t.Ty.Namespace }

// TypeName returns the type name of the entity type.
func (t EntityType) TypeName() string { return t.Ty.TypeName }

// HasComponent reports whether the entity type applies the given component.
func (t EntityType) HasComponent(component typeid.TypeID) bool {
	return slices.Contains(t.Components, component)
}

// HasProperty reports whether the entity type declares a property with this name.
func (t EntityType) HasProperty(name string) bool {
	return hasProperty(t.Properties, name)
}

// GetProperty returns the declared property with this name.
func (t EntityType) GetProperty(name string) (PropertyType, bool) {
	return findProperty(t.Properties, name)
}

// HasExtension reports whether an extension with this name is attached.
func (t EntityType) HasExtension(name string) bool {
	return hasExtension(t.Extensions, name)
}

// GetExtension returns the extension with this name.
func (t EntityType) GetExtension(name string) (Extension, bool) {
	return findExtension(t.Extensions, name)
}

// ToDAO converts the entity type to its persisted form.
func (t EntityType) ToDAO() EntityTypeDAO {
	return EntityTypeDAO{
		Namespace:   t.Ty.Namespace,
		TypeName:    t.Ty.TypeName,
		Description: t.Description,
		Components:  typeRefs(t.Components),
		Properties:  orEmpty(slices.Clone(t.Properties)),
		Extensions:  orEmpty(slices.Clone(t.Extensions)),
	}
}

// EntityTypeFromDAO converts a persisted entity type.
func EntityTypeFromDAO(dao EntityTypeDAO) EntityType {
	return EntityType{
		Ty:          typeid.NewEntityTypeID(dao.Namespace, dao.TypeName),
		Description: dao.Description,
		Components:  typeIDs(dao.Components, typeid.Component),
		Properties:  slices.Clone(dao.Properties),
		Extensions:  slices.Clone(dao.Extensions),
	}
}

func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToDAO())
}

func (t *EntityType) UnmarshalJSON(data []byte) error {
	var dao EntityTypeDAO
	if err := json.Unmarshal(data, &dao); err != nil {
		return err
	}
	*t = EntityTypeFromDAO(dao)
	return nil
}

// EntityTypeDAO is the persisted form of an EntityType. It decodes with the same
// alias and defaults as ComponentDAO.
type EntityTypeDAO struct {
	Namespace   string         `json:"namespace" yaml:"namespace"`
	TypeName    string         `json:"type_name" yaml:"type_name"`
	Description string         `json:"description" yaml:"description"`
	Components  []TypeRef      `json:"components" yaml:"components"`
	Properties  []PropertyType `json:"properties" yaml:"properties"`
	Extensions  []Extension    `json:"extensions" yaml:"extensions"`
}

func (d *EntityTypeDAO) fillDefaults(name string) {
	d.TypeName = aliased(d.TypeName, name)
	d.Components = orEmpty(d.Components)
	d.Properties = orEmpty(d.Properties)
	d.Extensions = orEmpty(d.Extensions)
}

func (d *EntityTypeDAO) UnmarshalJSON(data []byte) error {
	type plain EntityTypeDAO
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = EntityTypeDAO(raw.plain)
	d.fillDefaults(raw.Name)
	return nil
}

func (d *EntityTypeDAO) UnmarshalYAML(node *yaml.Node) error {
	type plain EntityTypeDAO
	var raw struct {
		plain `yaml:",inline"`
		Name  string `yaml:"name"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = EntityTypeDAO(raw.plain)
	d.fillDefaults(raw.Name)
	return nil
}
