package model

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/typeid"
)

// TypeRef is the persisted form of a reference to another type, as used for the
// components of a type and the endpoints of a relation type. Like the DAOs it
// accepts "name" as an alias of "type_name".
type TypeRef struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	TypeName  string `json:"type_name" yaml:"type_name"`
}

// TypeRefFrom creates a reference to ty.
func TypeRefFrom(ty typeid.TypeID) TypeRef {
	return TypeRef{Namespace: ty.Namespace, TypeName: ty.TypeName}
}

// TypeID resolves the reference within the given category.
func (r TypeRef) TypeID(kind typeid.Kind) typeid.TypeID {
	return typeid.New(kind, r.Namespace, r.TypeName)
}

func (r *TypeRef) UnmarshalJSON(data []byte) error {
	type plain TypeRef
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = TypeRef(raw.plain)
	r.TypeName = aliased(r.TypeName, raw.Name)
	return nil
}

func (r *TypeRef) UnmarshalYAML(node *yaml.Node) error {
	type plain TypeRef
	var raw struct {
		plain `yaml:",inline"`
		Name  string `yaml:"name"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = TypeRef(raw.plain)
	r.TypeName = aliased(r.TypeName, raw.Name)
	return nil
}

// aliased returns primary unless it is empty, in which case the legacy alias is used.
func aliased(primary, alias string) string {
	if primary != "" {
		return primary
	}
	return alias
}

func typeRefs(ids []typeid.TypeID) []TypeRef {
	refs := make([]TypeRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, TypeRefFrom(id))
	}
	return refs
}

func typeIDs(refs []TypeRef, kind typeid.Kind) []typeid.TypeID {
	ids := make([]typeid.TypeID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.TypeID(kind))
	}
	return ids
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
