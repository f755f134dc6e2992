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

const kindRelation = "relation"

// RelationManager stores relation instances as edges between entity vertices.
//
// Thread-safety: safe for concurrent use if the store is.
type RelationManager struct {
	store      graph.Store
	registries *registry.Registries
	tel        *telemetry
}

// NewRelationManager creates a relation manager over store.
func NewRelationManager(store graph.Store, opts ...Option) (*RelationManager, error) {
	o, tel, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &RelationManager{store: store, registries: o.registries, tel: tel}, nil
}

// Create stores a new relation. Both endpoint entities must exist. Returns
// ErrAlreadyExists if an edge with the same key is stored.
func (m *RelationManager) Create(ctx context.Context, relation model.RelationInstance) error {
	ctx, span := m.tel.start(ctx, "flowgraph.relation.create", relationAttrs(relation)...)
	err := m.create(ctx, relation)
	end(span, err)
	return err
}

func (m *RelationManager) create(ctx context.Context, relation model.RelationInstance) error {
	if relation.Properties == nil {
		relation.Properties = property.NewInstances()
	}
	if err := m.checkType(ctx, relation); err != nil {
		return err
	}

	key := relation.GetKey()
	if _, err := m.store.GetEdge(ctx, key); err == nil {
		return fmt.Errorf("relation %s: %w", key, ErrAlreadyExists)
	} else if !errors.Is(err, graph.ErrNotFound) {
		return fmt.Errorf("failed to check relation %s: %w", key, err)
	}

	if err := m.store.PutEdge(ctx, relation.EdgeProperties()); err != nil {
		return fmt.Errorf("failed to store relation %s: %w", key, err)
	}

	m.tel.countCreated(ctx, kindRelation, relation.Namespace, relation.TypeName)
	m.tel.logger.DebugContext(ctx, "relation created",
		"edge", key,
		"namespace", relation.Namespace,
		"type_name", relation.TypeName,
	)
	return nil
}

// Update replaces the stored relation with the same key. Returns an error wrapping
// graph.ErrNotFound if it does not exist. With registries configured the relation
// is checked the same way as on Create.
func (m *RelationManager) Update(ctx context.Context, relation model.RelationInstance) error {
	ctx, span := m.tel.start(ctx, "flowgraph.relation.update", relationAttrs(relation)...)
	err := m.update(ctx, relation)
	end(span, err)
	return err
}

func (m *RelationManager) update(ctx context.Context, relation model.RelationInstance) error {
	if err := m.checkType(ctx, relation); err != nil {
		return err
	}

	key := relation.GetKey()
	if _, err := m.store.GetEdge(ctx, key); err != nil {
		return fmt.Errorf("relation %s: %w", key, err)
	}
	if err := m.store.PutEdge(ctx, relation.EdgeProperties()); err != nil {
		return fmt.Errorf("failed to store relation %s: %w", key, err)
	}
	return nil
}

// Get returns the relation with the given key. Returns an error wrapping
// graph.ErrNotFound if it does not exist.
func (m *RelationManager) Get(ctx context.Context, key graph.EdgeKey) (model.RelationInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.relation.get", attribute.String("edge", key.String()))
	relation, err := m.get(ctx, key)
	end(span, err)
	return relation, err
}

func (m *RelationManager) get(ctx context.Context, key graph.EdgeKey) (model.RelationInstance, error) {
	ep, err := m.store.GetEdge(ctx, key)
	if err != nil {
		return model.RelationInstance{}, fmt.Errorf("relation %s: %w", key, err)
	}
	return model.RelationInstanceFromEdgeProperties(*ep), nil
}

// Delete removes the relation. It reports whether a relation was removed.
func (m *RelationManager) Delete(ctx context.Context, key graph.EdgeKey) (bool, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.relation.delete", attribute.String("edge", key.String()))
	deleted, err := m.delete(ctx, key)
	end(span, err)
	return deleted, err
}

func (m *RelationManager) delete(ctx context.Context, key graph.EdgeKey) (bool, error) {
	ep, err := m.store.GetEdge(ctx, key)
	if errors.Is(err, graph.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("relation %s: %w", key, err)
	}

	if err := m.store.DeleteEdge(ctx, key); err != nil {
		return false, fmt.Errorf("failed to delete relation %s: %w", key, err)
	}

	m.tel.countDeleted(ctx, kindRelation, ep.Edge.Label.Namespace, ep.Edge.Label.TypeName)
	m.tel.logger.DebugContext(ctx, "relation deleted",
		"edge", key,
		"namespace", ep.Edge.Label.Namespace,
		"type_name", ep.Edge.Label.TypeName,
	)
	return true, nil
}

// Outbound returns the relations leaving an entity that match f. A nil filter
// matches every relation.
func (m *RelationManager) Outbound(ctx context.Context, id uuid.UUID, f *filter.Filter) ([]model.RelationInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.relation.outbound", attribute.String("vertex", id.String()))
	relations, err := m.adjacent(ctx, id, f, m.store.OutboundEdges)
	end(span, err)
	return relations, err
}

// Inbound returns the relations entering an entity that match f. A nil filter
// matches every relation.
func (m *RelationManager) Inbound(ctx context.Context, id uuid.UUID, f *filter.Filter) ([]model.RelationInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.relation.inbound", attribute.String("vertex", id.String()))
	relations, err := m.adjacent(ctx, id, f, m.store.InboundEdges)
	end(span, err)
	return relations, err
}

func (m *RelationManager) adjacent(
	ctx context.Context,
	id uuid.UUID,
	f *filter.Filter,
	edges func(context.Context, uuid.UUID) ([]graph.EdgeKey, error),
) ([]model.RelationInstance, error) {
	keys, err := edges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations of %s: %w", id, err)
	}

	relations := make([]model.RelationInstance, 0, len(keys))
	for _, key := range keys {
		if key.T == membershipType {
			continue
		}
		relation, err := m.get(ctx, key)
		if errors.Is(err, graph.ErrNotFound) {
			// removed since the listing
			continue
		}
		if err != nil {
			return nil, err
		}
		if f != nil {
			ok, err := f.MatchRelation(relation)
			if err != nil {
				m.tel.logger.WarnContext(ctx, "skipping relation the filter cannot evaluate",
					"edge", key,
					"filter", f.String(),
					"error", err,
				)
				continue
			}
			if !ok {
				continue
			}
		}
		relations = append(relations, relation)
	}
	return relations, nil
}

// checkType verifies that the relation type is registered and that the endpoint
// entities have the entity types it connects.
func (m *RelationManager) checkType(ctx context.Context, relation model.RelationInstance) error {
	if m.registries == nil {
		return nil
	}

	ty := relation.TypeID()
	relationType, err := m.registries.RelationTypes.Get(ctx, ty)
	if errors.Is(err, registry.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownType, ty)
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", ty, err)
	}

	endpoints := []struct {
		id   uuid.UUID
		want typeid.TypeID
	}{
		{id: relation.OutboundID, want: relationType.OutboundType},
		{id: relation.InboundID, want: relationType.InboundType},
	}
	for _, endpoint := range endpoints {
		vp, err := m.store.GetVertex(ctx, endpoint.id)
		if errors.Is(err, graph.ErrNotFound) {
			return fmt.Errorf("entity %s: %w", endpoint.id, graph.ErrVertexNotFound)
		}
		if err != nil {
			return fmt.Errorf("entity %s: %w", endpoint.id, err)
		}
		got := typeid.NewEntityTypeID(vp.Label.Namespace, vp.Label.TypeName)
		if got != endpoint.want {
			return fmt.Errorf("%w: %s connects %s, entity %s is %s",
				ErrEndpointMismatch, ty, endpoint.want, endpoint.id, got)
		}
	}
	return nil
}

func relationAttrs(relation model.RelationInstance) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("edge", relation.GetKey().String()),
		attribute.String("namespace", relation.Namespace),
		attribute.String("type_name", relation.TypeName),
	}
}
