// Package typeid provides namespaced type identifiers and the derivation of fully
// qualified identifiers used as the type slot of graph store edges and vertices.
//
// A TypeID pairs a namespace with a type name inside one of four categories
// (component, entity type, relation type, flow type). Neither string has a length
// limit, but the graph store only accepts a fixed-size type identifier, so every
// TypeID is mapped onto a 16-byte name-based UUID:
//
//	ty := typeid.NewRelationTypeID("social", "likes")
//	t := ty.FullyQualifiedIdentifier()
//
// The derivation is deterministic and one-way. Code that needs the namespace and
// type name back carries them alongside the identifier instead of decoding it.
package typeid
