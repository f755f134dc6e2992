// Package flowgraph is the data-model layer of a reactive graph-flow platform.
//
// Typed domain objects (components, entity types, relation types, and entity,
// relation and flow instances) are projected onto a generic property graph and
// rebuilt from it. The graph addresses type slots with a fixed-size identifier
// derived from a namespaced type name, see package typeid.
//
// # Packages
//
//   - typeid: namespaced type identifiers and fully qualified identifier derivation
//   - property: dynamic property values and the property instance store
//   - model: type definitions, their persisted DAO form, and instances
//   - graph: store records and the Store contract, with an in-memory store
//   - graph/redisstore: Redis-backed Store
//   - registry, registry/etcdregistry: type definition registries
//   - definition: YAML/JSON definition bundles
//   - filter: CEL predicates over instance properties
//   - protoconv: property stores as protobuf Structs
//   - manager: entity, relation and flow instance managers
//
// # Getting Started
//
// Open wires a store, registries and managers from a Config:
//
//	cfg, err := flowgraph.LoadConfig("flowgraph.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	platform, err := flowgraph.Open(ctx, cfg, flowgraph.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer platform.Close()
//
//	sensor := model.NewEntityInstanceWithoutProperties("iot", "sensor", uuid.Nil)
//	sensor, err = platform.Entities.Create(ctx, sensor)
//
// # Configuration
//
// Config is read from YAML and overridden by FLOWGRAPH_* environment variables.
// The memory backends are used unless a Redis URL or etcd endpoints are configured.
//
// # Error Handling
//
// Setup failures are returned as *Error values categorized by Kind:
//
//	if errors.Is(err, &flowgraph.Error{Kind: flowgraph.KindNetwork}) {
//		// retry later
//	}
//
// Instance operations return the errors of package manager and graph, for example
// graph.ErrNotFound, unchanged.
//
// # Thread Safety
//
// Platform and the managers are safe for concurrent use. Instances and their
// property stores are plain values and are not synchronized.
package flowgraph
