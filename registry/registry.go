// Package registry stores type definitions (components, entity types and relation
// types) keyed by their namespaced type identifier.
//
// Three implementations share the Registry interface:
//
//   - MemoryRegistry: in process, guarded by a mutex
//   - Cached: a go-cache read-through layer over another registry
//   - etcdregistry.Registry: definitions persisted in etcd as JSON DAOs
//
// Registries are replaced by full re-registration; there is no partial update.
package registry

import (
	"context"
	"errors"
	"slices"

	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/typeid"
)

var (
	// ErrNotFound indicates that no definition is registered for the identifier.
	ErrNotFound = errors.New("registry: type not found")

	// ErrClosed is returned by registries after Close.
	ErrClosed = errors.New("registry: closed")
)

// Definition is a type definition addressable by its type identifier.
type Definition interface {
	TypeID() typeid.TypeID
}

// Registry stores definitions of one category.
//
// Implementations must be safe for concurrent use.
type Registry[T Definition] interface {
	// Register stores def under def.TypeID(), replacing any previous definition.
	Register(ctx context.Context, def T) error

	// Get returns ErrNotFound if no definition is registered for ty.
	Get(ctx context.Context, ty typeid.TypeID) (T, error)

	// Has reports whether a definition is registered for ty.
	Has(ctx context.Context, ty typeid.TypeID) (bool, error)

	// List returns all definitions ordered by namespace and type name.
	List(ctx context.Context) ([]T, error)

	// Delete removes the definition. Deleting a missing definition is not an error.
	Delete(ctx context.Context, ty typeid.TypeID) error
}

// Registries groups the registries of every definition category.
type Registries struct {
	Components    Registry[model.Component]
	EntityTypes   Registry[model.EntityType]
	RelationTypes Registry[model.RelationType]
}

// NewMemoryRegistries creates a set of empty in-memory registries.
func NewMemoryRegistries() Registries {
	return Registries{
		Components:    NewMemoryRegistry[model.Component](),
		EntityTypes:   NewMemoryRegistry[model.EntityType](),
		RelationTypes: NewMemoryRegistry[model.RelationType](),
	}
}

// cacheKey identifies a definition independently of the category it is looked up in.
func cacheKey(ty typeid.TypeID) string {
	return ty.FullyQualifiedIdentifier().String()
}

// SortDefinitions orders definitions by namespace, then type name.
func SortDefinitions[T Definition](defs []T) {
	slices.SortFunc(defs, func(a, b T) int {
		return compareTypeIDs(a.TypeID(), b.TypeID())
	})
}

func compareTypeIDs(a, b typeid.TypeID) int {
	switch {
	case a.Namespace < b.Namespace:
		return -1
	case a.Namespace > b.Namespace:
		return 1
	case a.TypeName < b.TypeName:
		return -1
	case a.TypeName > b.TypeName:
		return 1
	default:
		return 0
	}
}
