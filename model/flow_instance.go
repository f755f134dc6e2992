package model

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/property"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// PropertyName is the wrapper entity property holding a flow's name.
const PropertyName = "name"

// FlowInstance is a set of entity and relation instances represented in the store by
// a wrapper entity whose id is the flow id.
type FlowInstance struct {
	// ID is the id of the flow and of its wrapper entity.
	ID uuid.UUID `json:"id"`

	// Namespace of the flow type.
	Namespace string `json:"namespace"`

	// TypeName of the flow type. It is also the type of the wrapper entity.
	TypeName string `json:"type_name"`

	// Name is the display name of the flow.
	Name string `json:"name"`

	// Description is a textual description of the flow.
	Description string `json:"description"`

	// EntityInstances are the entities contained in the flow.
	EntityInstances []EntityInstance `json:"entity_instances"`

	// RelationInstances are the relations contained in the flow.
	RelationInstances []RelationInstance `json:"relation_instances"`
}

// FlowInstanceFromEntity creates an empty flow from its wrapper entity. The name is
// taken from the wrapper's string "name" property and is empty otherwise.
func FlowInstanceFromEntity(wrapper EntityInstance) FlowInstance {
	name, _ := wrapper.AsString(PropertyName)
	return FlowInstanceFromEntityWithName(wrapper, name)
}

// FlowInstanceFromEntityWithName creates an empty flow from its wrapper entity with
// an explicit name.
func FlowInstanceFromEntityWithName(wrapper EntityInstance, name string) FlowInstance {
	return FlowInstance{
		ID:                wrapper.ID,
		Namespace:         wrapper.Namespace,
		TypeName:          wrapper.TypeName,
		Name:              name,
		Description:       wrapper.Description,
		EntityInstances:   []EntityInstance{},
		RelationInstances: []RelationInstance{},
	}
}

// TypeID returns the entity type of the wrapper entity.
func (f FlowInstance) TypeID() typeid.TypeID {
	return typeid.NewFlowTypeID(f.Namespace, f.TypeName)
}

// Wrapper returns the wrapper entity with the flow name written to its "name"
// property. If the flow contains an entity with the flow id it is used as the base.
func (f FlowInstance) Wrapper() EntityInstance {
	var wrapper EntityInstance
	if i := f.indexOfEntity(f.ID); i >= 0 {
		wrapper = f.EntityInstances[i]
		wrapper.Properties = wrapper.Properties.Clone()
		wrapper.Extensions = slices.Clone(wrapper.Extensions)
	} else {
		wrapper = NewEntityInstanceWithoutProperties(f.Namespace, f.TypeName, f.ID)
		wrapper.Description = f.Description
	}
	wrapper.Set(PropertyName, property.String(f.Name))
	return wrapper
}

// HasEntity reports whether the flow contains an entity with the given id.
func (f FlowInstance) HasEntity(id uuid.UUID) bool {
	return f.indexOfEntity(id) >= 0
}

// HasRelation reports whether the flow contains a relation with the given key.
func (f FlowInstance) HasRelation(key graph.EdgeKey) bool {
	return f.indexOfRelation(key) >= 0
}

// AddEntity adds an entity, replacing any entity with the same id.
func (f *FlowInstance) AddEntity(e EntityInstance) {
	if i := f.indexOfEntity(e.ID); i >= 0 {
		f.EntityInstances[i] = e
		return
	}
	f.EntityInstances = append(f.EntityInstances, e)
}

// AddRelation adds a relation, replacing any relation with the same key.
func (f *FlowInstance) AddRelation(r RelationInstance) {
	if i := f.indexOfRelation(r.GetKey()); i >= 0 {
		f.RelationInstances[i] = r
		return
	}
	f.RelationInstances = append(f.RelationInstances, r)
}

func (f FlowInstance) indexOfEntity(id uuid.UUID) int {
	return slices.IndexFunc(f.EntityInstances, func(e EntityInstance) bool {
		return e.ID == id
	})
}

func (f FlowInstance) indexOfRelation(key graph.EdgeKey) int {
	return slices.IndexFunc(f.RelationInstances, func(r RelationInstance) bool {
		return r.GetKey() == key
	})
}
