package model

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/typeid"
)

// Component declares a set of properties that is applied to entity types and
// relation types.
type Component struct {
	// Ty identifies the component. Its kind is typeid.Component.
	Ty typeid.TypeID

	// Description is a textual description of the component.
	Description string

	// Properties are the properties applied to instances of types using the component.
	Properties []PropertyType

	// Extensions holds component specific extensions.
	Extensions []Extension
}

// NewComponent creates a component.
func NewComponent(ty typeid.TypeID, description string, properties []PropertyType, extensions []Extension) Component {
	return Component{
		Ty:          ty,
		Description: description,
		Properties:  properties,
		Extensions:  extensions,
	}
}

// NewComponentFromType creates a component from a namespace and type name.
func NewComponentFromType(namespace, typeName, description string, properties []PropertyType, extensions []Extension) Component {
	return NewComponent(typeid.NewComponentTypeID(namespace, typeName), description, properties, extensions)
}

// NewComponentWithoutExtensions creates a component with no extensions.
func NewComponentWithoutExtensions(ty typeid.TypeID, description string, properties []PropertyType) Component {
	return NewComponent(ty, description, properties, []Extension{})
}

// NewComponentWithoutProperties creates a component that declares no properties.
func NewComponentWithoutProperties(ty typeid.TypeID, description string, extensions []Extension) Component {
	return NewComponent(ty, description, []PropertyType{}, extensions)
}

// TypeID returns the type id of the component.
func (c Component) TypeID() typeid.TypeID { return c.Ty }

// Namespace returns the namespace of the component.
func (c Component) Namespace() string { return c.Ty.Namespace }

// TypeName returns the type name of the component.
func (c Component) TypeName() string { return c.Ty.TypeName }

// HasProperty reports whether the component declares a property with exactly this name.
func (c Component) HasProperty(name string) bool {
	return hasProperty(c.Properties, name)
}

// GetProperty returns the declared property with the given name.
func (c Component) GetProperty(name string) (PropertyType, bool) {
	return findProperty(c.Properties, name)
}

// HasExtension reports whether the component carries an extension with exactly this name.
func (c Component) HasExtension(name string) bool {
	return hasExtension(c.Extensions, name)
}

// GetExtension returns the extension with the given name.
func (c Component) GetExtension(name string) (Extension, bool) {
	return findExtension(c.Extensions, name)
}

// ToDAO converts the component to its persisted form.
func (c Component) ToDAO() ComponentDAO {
	return ComponentDAO{
		Namespace:   c.Ty.Namespace,
		TypeName:    c.Ty.TypeName,
		Description: c.Description,
		Properties:  orEmpty(slices.Clone(c.Properties)),
		Extensions:  orEmpty(slices.Clone(c.Extensions)),
	}
}

// ComponentFromDAO converts a persisted component.
func ComponentFromDAO(dao ComponentDAO) Component {
	return Component{
		Ty:          typeid.NewComponentTypeID(dao.Namespace, dao.TypeName),
		Description: dao.Description,
		Properties:  slices.Clone(dao.Properties),
		Extensions:  slices.Clone(dao.Extensions),
	}
}

func (c Component) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToDAO())
}

func (c *Component) UnmarshalJSON(data []byte) error {
	var dao ComponentDAO
	if err := json.Unmarshal(data, &dao); err != nil {
		return err
	}
	*c = ComponentFromDAO(dao)
	return nil
}

// ComponentDAO is the persisted form of a Component.
//
// Decoding accepts "name" in place of "type_name" and defaults missing namespace,
// description, properties and extensions to empty values.
type ComponentDAO struct {
	Namespace   string         `json:"namespace" yaml:"namespace"`
	TypeName    string         `json:"type_name" yaml:"type_name"`
	Description string         `json:"description" yaml:"description"`
	Properties  []PropertyType `json:"properties" yaml:"properties"`
	Extensions  []Extension    `json:"extensions" yaml:"extensions"`
}

func (d *ComponentDAO) fillDefaults(name string) {
	d.TypeName = aliased(d.TypeName, name)
	d.Properties = orEmpty(d.Properties)
	d.Extensions = orEmpty(d.Extensions)
}

func (d *ComponentDAO) UnmarshalJSON(data []byte) error {
	type plain ComponentDAO
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ComponentDAO(raw.plain)
	d.fillDefaults(raw.Name)
	return nil
}

func (d *ComponentDAO) UnmarshalYAML(node *yaml.Node) error {
	type plain ComponentDAO
	var raw struct {
		plain `yaml:",inline"`
		Name  string `yaml:"name"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = ComponentDAO(raw.plain)
	d.fillDefaults(raw.Name)
	return nil
}
