// Package model contains the typed domain objects of the flow graph: type
// definitions (Component, EntityType, RelationType) and instances (EntityInstance,
// RelationInstance, FlowInstance).
//
// Instances project onto graph store records and are rebuilt from them:
//
//	r := model.NewRelationInstance("social", alice, "likes", bob, props)
//	key := r.GetKey() // (alice, FQI(relation type, "social", "likes"), bob)
//	ep := r.EdgeProperties()
//	back := model.RelationInstanceFromEdgeProperties(ep)
//
// Type definitions are persisted through their DAO types. DAOs decode from JSON and
// YAML, accept the legacy "name" key for "type_name", and default missing lists to
// empty ones.
//
// Instances are never checked against their type definitions.
package model
