// Package manager persists entity, relation and flow instances in a graph.Store.
//
// Entities are stored as vertices, relations as edges between them. A flow is its
// wrapper entity plus membership edges of type flowgraph/flow_member from the
// wrapper to every member entity; relations between members belong to the flow
// implicitly and are never duplicated.
//
// Every operation runs in its own span named flowgraph.<kind>.<operation>. Failed
// operations record the error and set the span status to codes.Error. Creations
// and deletions increment the flowgraph.instances.created and
// flowgraph.instances.deleted counters with kind, namespace and type_name
// attributes.
//
// Basic usage:
//
//	store := graph.NewMemoryStore()
//	entities, err := manager.NewEntityManager(store,
//		manager.WithLogger(logger),
//		manager.WithTracer(tp.Tracer("flowgraph")),
//	)
//	sensor, err := entities.Create(ctx, model.NewEntityInstanceWithoutProperties("iot", "sensor", uuid.Nil))
//
// Type checking is opt-in with WithRegistries. Without it any namespace and type
// name are accepted, and properties are never checked against the type's property
// definitions.
package manager
