// Package graph describes the property-graph store that instances are projected onto.
//
// Edges are addressed by an EdgeKey of (outbound vertex, type identifier, inbound vertex)
// and vertices by their id; the type identifier is the fixed-size value derived by
// package typeid. Records also carry a TypeLabel holding the namespace and type name
// so that instances can be rebuilt without decoding the identifier.
//
// Store is the storage contract. MemoryStore implements it in process; package
// redisstore implements it on Redis. Package graphtest holds a contract suite that
// every implementation runs in its tests.
package graph
