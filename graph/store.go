package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates that the requested vertex or edge does not exist.
	ErrNotFound = errors.New("graph: record not found")

	// ErrVertexNotFound indicates that an edge references a vertex that does not exist.
	ErrVertexNotFound = errors.New("graph: endpoint vertex not found")

	// ErrClosed is returned by stores after Close.
	ErrClosed = errors.New("graph: store closed")
)

// Store is the property-graph store the data model is projected onto.
//
// Implementations must be safe for concurrent use. Returned records are copies and
// may be modified by the caller.
type Store interface {
	// PutVertex creates or replaces a vertex and its properties.
	PutVertex(ctx context.Context, vp VertexProperties) error

	// GetVertex returns ErrNotFound if the vertex does not exist.
	GetVertex(ctx context.Context, id uuid.UUID) (*VertexProperties, error)

	// DeleteVertex removes a vertex and every edge touching it.
	// Deleting a missing vertex is not an error.
	DeleteVertex(ctx context.Context, id uuid.UUID) error

	// VerticesByType lists vertices with the given type identifier.
	VerticesByType(ctx context.Context, t uuid.UUID) ([]VertexProperties, error)

	// PutEdge creates or replaces an edge and its properties.
	// Returns ErrVertexNotFound if either endpoint is missing.
	PutEdge(ctx context.Context, ep EdgeProperties) error

	// GetEdge returns ErrNotFound if the edge does not exist.
	GetEdge(ctx context.Context, key EdgeKey) (*EdgeProperties, error)

	// DeleteEdge removes an edge. Deleting a missing edge is not an error.
	DeleteEdge(ctx context.Context, key EdgeKey) error

	// OutboundEdges lists the keys of edges leaving the vertex.
	OutboundEdges(ctx context.Context, id uuid.UUID) ([]EdgeKey, error)

	// InboundEdges lists the keys of edges entering the vertex.
	InboundEdges(ctx context.Context, id uuid.UUID) ([]EdgeKey, error)

	// Close releases resources held by the store.
	Close() error
}
