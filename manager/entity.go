package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zero-day-ai/flowgraph/filter"
	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/property"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/typeid"
)

const kindEntity = "entity"

// EntityManager stores entity instances as vertices.
//
// Thread-safety: safe for concurrent use if the store is. Create and Update are
// check-then-write and are not atomic against concurrent writers of the same id.
type EntityManager struct {
	store      graph.Store
	registries *registry.Registries
	tel        *telemetry
}

// NewEntityManager creates an entity manager over store.
func NewEntityManager(store graph.Store, opts ...Option) (*EntityManager, error) {
	o, tel, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &EntityManager{store: store, registries: o.registries, tel: tel}, nil
}

// Create stores a new entity. A nil id is replaced by a random one; the stored
// instance is returned. Returns ErrAlreadyExists if the id is taken.
func (m *EntityManager) Create(ctx context.Context, entity model.EntityInstance) (model.EntityInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.entity.create", entityAttrs(entity)...)
	entity, err := m.create(ctx, entity)
	span.SetAttributes(attribute.String("vertex", entity.ID.String()))
	end(span, err)
	return entity, err
}

func (m *EntityManager) create(ctx context.Context, entity model.EntityInstance) (model.EntityInstance, error) {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if entity.Properties == nil {
		entity.Properties = property.NewInstances()
	}

	if err := m.checkType(ctx, entity.TypeID()); err != nil {
		return entity, err
	}

	if _, err := m.store.GetVertex(ctx, entity.ID); err == nil {
		return entity, fmt.Errorf("entity %s: %w", entity.ID, ErrAlreadyExists)
	} else if !errors.Is(err, graph.ErrNotFound) {
		return entity, fmt.Errorf("failed to check entity %s: %w", entity.ID, err)
	}

	if err := m.store.PutVertex(ctx, entity.VertexProperties()); err != nil {
		return entity, fmt.Errorf("failed to store entity %s: %w", entity.ID, err)
	}

	m.tel.countCreated(ctx, kindEntity, entity.Namespace, entity.TypeName)
	m.tel.logger.DebugContext(ctx, "entity created",
		"vertex", entity.ID,
		"namespace", entity.Namespace,
		"type_name", entity.TypeName,
	)
	return entity, nil
}

// Update replaces the stored entity with the same id. Returns an error wrapping
// graph.ErrNotFound if it does not exist. With registries configured the entity
// type must be registered.
func (m *EntityManager) Update(ctx context.Context, entity model.EntityInstance) error {
	ctx, span := m.tel.start(ctx, "flowgraph.entity.update", entityAttrs(entity)...)
	err := m.update(ctx, entity)
	end(span, err)
	return err
}

func (m *EntityManager) update(ctx context.Context, entity model.EntityInstance) error {
	if err := m.checkType(ctx, entity.TypeID()); err != nil {
		return err
	}
	if _, err := m.store.GetVertex(ctx, entity.ID); err != nil {
		return fmt.Errorf("entity %s: %w", entity.ID, err)
	}
	if err := m.store.PutVertex(ctx, entity.VertexProperties()); err != nil {
		return fmt.Errorf("failed to store entity %s: %w", entity.ID, err)
	}
	return nil
}

// Get returns the entity with the given id. Returns an error wrapping
// graph.ErrNotFound if it does not exist.
func (m *EntityManager) Get(ctx context.Context, id uuid.UUID) (model.EntityInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.entity.get", attribute.String("vertex", id.String()))
	entity, err := m.get(ctx, id)
	end(span, err)
	return entity, err
}

func (m *EntityManager) get(ctx context.Context, id uuid.UUID) (model.EntityInstance, error) {
	vp, err := m.store.GetVertex(ctx, id)
	if err != nil {
		return model.EntityInstance{}, fmt.Errorf("entity %s: %w", id, err)
	}
	return model.EntityInstanceFromVertexProperties(*vp), nil
}

// SetProperty sets a single property on a stored entity.
func (m *EntityManager) SetProperty(ctx context.Context, id uuid.UUID, name string, value property.Value) error {
	ctx, span := m.tel.start(ctx, "flowgraph.entity.set_property",
		attribute.String("vertex", id.String()),
		attribute.String("property", name),
	)
	err := m.setProperty(ctx, id, name, value)
	end(span, err)
	return err
}

func (m *EntityManager) setProperty(ctx context.Context, id uuid.UUID, name string, value property.Value) error {
	entity, err := m.get(ctx, id)
	if err != nil {
		return err
	}
	entity.Set(name, value)
	if err := m.store.PutVertex(ctx, entity.VertexProperties()); err != nil {
		return fmt.Errorf("failed to store entity %s: %w", id, err)
	}
	return nil
}

// Delete removes the entity and every relation touching it. It reports whether an
// entity was removed.
func (m *EntityManager) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.entity.delete", attribute.String("vertex", id.String()))
	deleted, err := m.delete(ctx, id)
	end(span, err)
	return deleted, err
}

func (m *EntityManager) delete(ctx context.Context, id uuid.UUID) (bool, error) {
	vp, err := m.store.GetVertex(ctx, id)
	if errors.Is(err, graph.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("entity %s: %w", id, err)
	}

	if err := m.store.DeleteVertex(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete entity %s: %w", id, err)
	}

	m.tel.countDeleted(ctx, kindEntity, vp.Label.Namespace, vp.Label.TypeName)
	m.tel.logger.DebugContext(ctx, "entity deleted",
		"vertex", id,
		"namespace", vp.Label.Namespace,
		"type_name", vp.Label.TypeName,
	)
	return true, nil
}

// ListByType returns all entities of an entity type ordered by id.
func (m *EntityManager) ListByType(ctx context.Context, ty typeid.TypeID) ([]model.EntityInstance, error) {
	return m.Find(ctx, ty, nil)
}

// Find returns the entities of an entity type matching f, ordered by id. A nil
// filter matches every entity.
func (m *EntityManager) Find(ctx context.Context, ty typeid.TypeID, f *filter.Filter) ([]model.EntityInstance, error) {
	attrs := typeAttrs(ty)
	if f != nil {
		attrs = append(attrs, attribute.String("filter", f.String()))
	}
	ctx, span := m.tel.start(ctx, "flowgraph.entity.find", attrs...)
	entities, err := m.find(ctx, ty, f)
	if err == nil {
		span.SetAttributes(attribute.Int("result_count", len(entities)))
	}
	end(span, err)
	return entities, err
}

func (m *EntityManager) find(ctx context.Context, ty typeid.TypeID, f *filter.Filter) ([]model.EntityInstance, error) {
	if ty.Kind != typeid.EntityType {
		return nil, fmt.Errorf("%w: expected an entity type, got %s", ErrUnknownType, ty)
	}

	vertices, err := m.store.VerticesByType(ctx, ty.FullyQualifiedIdentifier())
	if err != nil {
		return nil, fmt.Errorf("failed to list entities of %s: %w", ty, err)
	}

	entities := make([]model.EntityInstance, 0, len(vertices))
	for _, vp := range vertices {
		entity := model.EntityInstanceFromVertexProperties(vp)
		if f != nil {
			ok, err := f.MatchEntity(entity)
			if err != nil {
				m.tel.logger.WarnContext(ctx, "skipping entity the filter cannot evaluate",
					"vertex", entity.ID,
					"filter", f.String(),
					"error", err,
				)
				continue
			}
			if !ok {
				continue
			}
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (m *EntityManager) checkType(ctx context.Context, ty typeid.TypeID) error {
	if m.registries == nil {
		return nil
	}
	ok, err := m.registries.EntityTypes.Has(ctx, ty)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", ty, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, ty)
	}
	return nil
}

func entityAttrs(entity model.EntityInstance) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("vertex", entity.ID.String()),
		attribute.String("namespace", entity.Namespace),
		attribute.String("type_name", entity.TypeName),
	}
}

func typeAttrs(ty typeid.TypeID) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("kind", ty.Kind.String()),
		attribute.String("namespace", ty.Namespace),
		attribute.String("type_name", ty.TypeName),
	}
}
