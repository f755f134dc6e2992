package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/property"
	"github.com/zero-day-ai/flowgraph/typeid"
)

const kindFlow = "flow"

// Flow membership is stored as an edge from the wrapper vertex to every member
// entity. A wrapper that is itself a member has a membership self-loop.
const (
	MembershipNamespace = "flowgraph"
	MembershipTypeName  = "flow_member"
)

var membershipType = typeid.NewRelationTypeID(MembershipNamespace, MembershipTypeName).FullyQualifiedIdentifier()

func membershipKey(flowID, entityID uuid.UUID) graph.EdgeKey {
	return graph.NewEdgeKey(flowID, membershipType, entityID)
}

func membershipEdge(flowID, entityID uuid.UUID) graph.EdgeProperties {
	edge := graph.NewEdgeWithCurrentDatetime(membershipKey(flowID, entityID), graph.TypeLabel{
		Namespace: MembershipNamespace,
		TypeName:  MembershipTypeName,
	})
	return graph.NewEdgeProperties(edge, nil)
}

// FlowManager stores flows as a wrapper entity, membership edges to the member
// entities and the relations between members.
//
// Thread-safety: safe for concurrent use if the store is. Operations on one flow
// are not atomic; a failed Create may leave a partially written flow behind.
type FlowManager struct {
	store     graph.Store
	entities  *EntityManager
	relations *RelationManager
	tel       *telemetry
}

// NewFlowManager creates a flow manager over store.
func NewFlowManager(store graph.Store, opts ...Option) (*FlowManager, error) {
	o, tel, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &FlowManager{
		store:     store,
		entities:  &EntityManager{store: store, registries: o.registries, tel: tel},
		relations: &RelationManager{store: store, registries: o.registries, tel: tel},
		tel:       tel,
	}, nil
}

// Create stores a new flow: the wrapper entity, every member entity and every
// relation. Member entities that already exist are replaced. A nil flow id is
// replaced by a random one; the stored flow is returned.
func (m *FlowManager) Create(ctx context.Context, flow model.FlowInstance) (model.FlowInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.create", flowAttrs(flow)...)
	flow, err := m.create(ctx, flow)
	span.SetAttributes(attribute.String("vertex", flow.ID.String()))
	end(span, err)
	return flow, err
}

func (m *FlowManager) create(ctx context.Context, flow model.FlowInstance) (model.FlowInstance, error) {
	if flow.ID == uuid.Nil {
		flow.ID = uuid.New()
	}

	for _, relation := range flow.RelationInstances {
		if !flow.HasEntity(relation.OutboundID) || !flow.HasEntity(relation.InboundID) {
			return flow, fmt.Errorf("relation %s: %w", relation.GetKey(), ErrNotMember)
		}
	}

	wrapper := flow.Wrapper()
	if err := m.entities.checkType(ctx, wrapper.TypeID()); err != nil {
		return flow, err
	}
	if _, err := m.store.GetVertex(ctx, flow.ID); err == nil {
		return flow, fmt.Errorf("flow %s: %w", flow.ID, ErrAlreadyExists)
	} else if !errors.Is(err, graph.ErrNotFound) {
		return flow, fmt.Errorf("failed to check flow %s: %w", flow.ID, err)
	}

	if err := m.store.PutVertex(ctx, wrapper.VertexProperties()); err != nil {
		return flow, fmt.Errorf("failed to store flow %s: %w", flow.ID, err)
	}

	for _, entity := range flow.EntityInstances {
		if err := m.addEntity(ctx, flow.ID, entity); err != nil {
			return flow, err
		}
	}
	for _, relation := range flow.RelationInstances {
		if err := m.putRelation(ctx, relation); err != nil {
			return flow, err
		}
	}

	m.tel.countCreated(ctx, kindFlow, flow.Namespace, flow.TypeName)
	m.tel.logger.InfoContext(ctx, "flow created",
		"vertex", flow.ID,
		"namespace", flow.Namespace,
		"type_name", flow.TypeName,
		"entities", len(flow.EntityInstances),
		"relations", len(flow.RelationInstances),
	)
	return flow, nil
}

// Get rebuilds a flow from its wrapper, its members and the relations between
// members. Entities are ordered by id. Returns an error wrapping graph.ErrNotFound
// if the wrapper does not exist.
func (m *FlowManager) Get(ctx context.Context, id uuid.UUID) (model.FlowInstance, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.get", attribute.String("vertex", id.String()))
	flow, err := m.get(ctx, id)
	end(span, err)
	return flow, err
}

func (m *FlowManager) get(ctx context.Context, id uuid.UUID) (model.FlowInstance, error) {
	wrapper, err := m.entities.get(ctx, id)
	if err != nil {
		return model.FlowInstance{}, fmt.Errorf("flow %s: %w", id, unwrapEntity(err))
	}
	flow := model.FlowInstanceFromEntity(wrapper)

	members, err := m.members(ctx, id)
	if err != nil {
		return model.FlowInstance{}, err
	}

	memberSet := make(map[uuid.UUID]bool, len(members))
	for _, memberID := range members {
		memberSet[memberID] = true
		entity, err := m.entities.get(ctx, memberID)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.FlowInstance{}, err
		}
		flow.AddEntity(entity)
	}

	for _, memberID := range members {
		keys, err := m.store.OutboundEdges(ctx, memberID)
		if err != nil {
			return model.FlowInstance{}, fmt.Errorf("failed to list relations of %s: %w", memberID, err)
		}
		for _, key := range keys {
			if key.T == membershipType || !memberSet[key.InboundID] {
				continue
			}
			relation, err := m.relations.get(ctx, key)
			if errors.Is(err, graph.ErrNotFound) {
				continue
			}
			if err != nil {
				return model.FlowInstance{}, err
			}
			flow.AddRelation(relation)
		}
	}
	return flow, nil
}

// members returns the ids of the member entities in edge key order.
func (m *FlowManager) members(ctx context.Context, flowID uuid.UUID) ([]uuid.UUID, error) {
	keys, err := m.store.OutboundEdges(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of flow %s: %w", flowID, err)
	}
	var ids []uuid.UUID
	for _, key := range keys {
		if key.T == membershipType {
			ids = append(ids, key.InboundID)
		}
	}
	return ids, nil
}

// Delete removes the flow, its member entities and every relation touching them.
// It reports whether a flow was removed.
func (m *FlowManager) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.delete", attribute.String("vertex", id.String()))
	deleted, err := m.delete(ctx, id)
	end(span, err)
	return deleted, err
}

func (m *FlowManager) delete(ctx context.Context, id uuid.UUID) (bool, error) {
	wrapper, err := m.store.GetVertex(ctx, id)
	if errors.Is(err, graph.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("flow %s: %w", id, err)
	}

	members, err := m.members(ctx, id)
	if err != nil {
		return false, err
	}
	for _, memberID := range members {
		if memberID == id {
			continue
		}
		if err := m.store.DeleteVertex(ctx, memberID); err != nil {
			return false, fmt.Errorf("failed to delete member %s of flow %s: %w", memberID, id, err)
		}
	}
	if err := m.store.DeleteVertex(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete flow %s: %w", id, err)
	}

	m.tel.countDeleted(ctx, kindFlow, wrapper.Label.Namespace, wrapper.Label.TypeName)
	m.tel.logger.InfoContext(ctx, "flow deleted",
		"vertex", id,
		"namespace", wrapper.Label.Namespace,
		"type_name", wrapper.Label.TypeName,
		"entities", len(members),
	)
	return true, nil
}

// Rename sets the flow name on the wrapper entity.
func (m *FlowManager) Rename(ctx context.Context, id uuid.UUID, name string) error {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.rename", attribute.String("vertex", id.String()))
	err := m.entities.setProperty(ctx, id, model.PropertyName, property.String(name))
	end(span, err)
	return err
}

// AddEntity stores an entity and makes it a member of the flow. An existing entity
// with the same id is replaced.
func (m *FlowManager) AddEntity(ctx context.Context, flowID uuid.UUID, entity model.EntityInstance) error {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.add_entity",
		attribute.String("vertex", flowID.String()),
		attribute.String("entity", entity.ID.String()),
	)
	err := m.requireFlow(ctx, flowID)
	if err == nil {
		err = m.addEntity(ctx, flowID, entity)
	}
	end(span, err)
	return err
}

func (m *FlowManager) addEntity(ctx context.Context, flowID uuid.UUID, entity model.EntityInstance) error {
	if entity.ID != flowID {
		if entity.Properties == nil {
			entity.Properties = property.NewInstances()
		}
		if err := m.entities.checkType(ctx, entity.TypeID()); err != nil {
			return err
		}
		if err := m.store.PutVertex(ctx, entity.VertexProperties()); err != nil {
			return fmt.Errorf("failed to store entity %s: %w", entity.ID, err)
		}
	}
	if err := m.store.PutEdge(ctx, membershipEdge(flowID, entity.ID)); err != nil {
		return fmt.Errorf("failed to add entity %s to flow %s: %w", entity.ID, flowID, err)
	}
	return nil
}

// RemoveEntity deletes a member entity and every relation touching it. Removing
// the wrapper only ends its membership.
func (m *FlowManager) RemoveEntity(ctx context.Context, flowID, entityID uuid.UUID) error {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.remove_entity",
		attribute.String("vertex", flowID.String()),
		attribute.String("entity", entityID.String()),
	)
	err := m.removeEntity(ctx, flowID, entityID)
	end(span, err)
	return err
}

func (m *FlowManager) removeEntity(ctx context.Context, flowID, entityID uuid.UUID) error {
	if err := m.requireMember(ctx, flowID, entityID); err != nil {
		return err
	}
	if entityID == flowID {
		if err := m.store.DeleteEdge(ctx, membershipKey(flowID, entityID)); err != nil {
			return fmt.Errorf("failed to remove entity %s from flow %s: %w", entityID, flowID, err)
		}
		return nil
	}
	if err := m.store.DeleteVertex(ctx, entityID); err != nil {
		return fmt.Errorf("failed to delete entity %s: %w", entityID, err)
	}
	return nil
}

// AddRelation stores a relation between two members of the flow, replacing any
// relation with the same key.
func (m *FlowManager) AddRelation(ctx context.Context, flowID uuid.UUID, relation model.RelationInstance) error {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.add_relation",
		attribute.String("vertex", flowID.String()),
		attribute.String("edge", relation.GetKey().String()),
	)
	err := m.addRelation(ctx, flowID, relation)
	end(span, err)
	return err
}

func (m *FlowManager) addRelation(ctx context.Context, flowID uuid.UUID, relation model.RelationInstance) error {
	if err := m.requireMember(ctx, flowID, relation.OutboundID); err != nil {
		return err
	}
	if err := m.requireMember(ctx, flowID, relation.InboundID); err != nil {
		return err
	}
	return m.putRelation(ctx, relation)
}

func (m *FlowManager) putRelation(ctx context.Context, relation model.RelationInstance) error {
	if relation.Properties == nil {
		relation.Properties = property.NewInstances()
	}
	if err := m.relations.checkType(ctx, relation); err != nil {
		return err
	}
	if err := m.store.PutEdge(ctx, relation.EdgeProperties()); err != nil {
		return fmt.Errorf("failed to store relation %s: %w", relation.GetKey(), err)
	}
	return nil
}

// RemoveRelation deletes a relation between two members of the flow.
func (m *FlowManager) RemoveRelation(ctx context.Context, flowID uuid.UUID, key graph.EdgeKey) error {
	ctx, span := m.tel.start(ctx, "flowgraph.flow.remove_relation",
		attribute.String("vertex", flowID.String()),
		attribute.String("edge", key.String()),
	)
	err := m.removeRelation(ctx, flowID, key)
	end(span, err)
	return err
}

func (m *FlowManager) removeRelation(ctx context.Context, flowID uuid.UUID, key graph.EdgeKey) error {
	if key.T == membershipType {
		return fmt.Errorf("relation %s: %w", key, ErrNotMember)
	}
	if err := m.requireMember(ctx, flowID, key.OutboundID); err != nil {
		return err
	}
	if err := m.store.DeleteEdge(ctx, key); err != nil {
		return fmt.Errorf("failed to delete relation %s: %w", key, err)
	}
	return nil
}

func (m *FlowManager) requireFlow(ctx context.Context, flowID uuid.UUID) error {
	if _, err := m.store.GetVertex(ctx, flowID); err != nil {
		return fmt.Errorf("flow %s: %w", flowID, err)
	}
	return nil
}

func (m *FlowManager) requireMember(ctx context.Context, flowID, entityID uuid.UUID) error {
	_, err := m.store.GetEdge(ctx, membershipKey(flowID, entityID))
	if errors.Is(err, graph.ErrNotFound) {
		return fmt.Errorf("entity %s in flow %s: %w", entityID, flowID, ErrNotMember)
	}
	if err != nil {
		return fmt.Errorf("failed to check membership of %s: %w", entityID, err)
	}
	return nil
}

// unwrapEntity strips the "entity <id>:" prefix added by EntityManager.get so flow
// errors name the flow instead.
func unwrapEntity(err error) error {
	if errors.Is(err, graph.ErrNotFound) {
		return graph.ErrNotFound
	}
	return err
}

func flowAttrs(flow model.FlowInstance) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("namespace", flow.Namespace),
		attribute.String("type_name", flow.TypeName),
		attribute.Int("entities", len(flow.EntityInstances)),
		attribute.Int("relations", len(flow.RelationInstances)),
	}
}
