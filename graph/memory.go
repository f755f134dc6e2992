package graph

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store backed by maps.
//
// This implementation is thread-safe and can be used concurrently.
type MemoryStore struct {
	mu       sync.RWMutex
	vertices map[uuid.UUID]VertexProperties
	edges    map[EdgeKey]EdgeProperties
	outbound map[uuid.UUID]map[EdgeKey]struct{}
	inbound  map[uuid.UUID]map[EdgeKey]struct{}
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vertices: make(map[uuid.UUID]VertexProperties),
		edges:    make(map[EdgeKey]EdgeProperties),
		outbound: make(map[uuid.UUID]map[EdgeKey]struct{}),
		inbound:  make(map[uuid.UUID]map[EdgeKey]struct{}),
	}
}

func (s *MemoryStore) PutVertex(ctx context.Context, vp VertexProperties) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	vp.Props = slices.Clone(vp.Props)
	s.vertices[vp.Vertex.ID] = vp
	return nil
}

func (s *MemoryStore) GetVertex(ctx context.Context, id uuid.UUID) (*VertexProperties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	vp, ok := s.vertices[id]
	if !ok {
		return nil, ErrNotFound
	}
	vp.Props = slices.Clone(vp.Props)
	return &vp, nil
}

func (s *MemoryStore) DeleteVertex(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for key := range s.outbound[id] {
		s.removeEdge(key)
	}
	for key := range s.inbound[id] {
		s.removeEdge(key)
	}
	delete(s.outbound, id)
	delete(s.inbound, id)
	delete(s.vertices, id)
	return nil
}

func (s *MemoryStore) VerticesByType(ctx context.Context, t uuid.UUID) ([]VertexProperties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []VertexProperties
	for _, vp := range s.vertices {
		if vp.Vertex.T != t {
			continue
		}
		vp.Props = slices.Clone(vp.Props)
		out = append(out, vp)
	}
	slices.SortFunc(out, func(a, b VertexProperties) int {
		return strings.Compare(a.Vertex.ID.String(), b.Vertex.ID.String())
	})
	return out, nil
}

func (s *MemoryStore) PutEdge(ctx context.Context, ep EdgeProperties) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	key := ep.Edge.Key
	if _, ok := s.vertices[key.OutboundID]; !ok {
		return ErrVertexNotFound
	}
	if _, ok := s.vertices[key.InboundID]; !ok {
		return ErrVertexNotFound
	}

	ep.Props = slices.Clone(ep.Props)
	s.edges[key] = ep
	index(s.outbound, key.OutboundID, key)
	index(s.inbound, key.InboundID, key)
	return nil
}

func (s *MemoryStore) GetEdge(ctx context.Context, key EdgeKey) (*EdgeProperties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ep, ok := s.edges[key]
	if !ok {
		return nil, ErrNotFound
	}
	ep.Props = slices.Clone(ep.Props)
	return &ep, nil
}

func (s *MemoryStore) DeleteEdge(ctx context.Context, key EdgeKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.removeEdge(key)
	return nil
}

func (s *MemoryStore) OutboundEdges(ctx context.Context, id uuid.UUID) ([]EdgeKey, error) {
	return s.adjacent(ctx, s.outbound, id)
}

func (s *MemoryStore) InboundEdges(ctx context.Context, id uuid.UUID) ([]EdgeKey, error) {
	return s.adjacent(ctx, s.inbound, id)
}

// Close marks the store closed. Subsequent calls return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) adjacent(ctx context.Context, idx map[uuid.UUID]map[EdgeKey]struct{}, id uuid.UUID) ([]EdgeKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	keys := make([]EdgeKey, 0, len(idx[id]))
	for key := range idx[id] {
		keys = append(keys, key)
	}
	SortEdgeKeys(keys)
	return keys, nil
}

// removeEdge must be called with the write lock held.
func (s *MemoryStore) removeEdge(key EdgeKey) {
	delete(s.edges, key)
	if set, ok := s.outbound[key.OutboundID]; ok {
		delete(set, key)
	}
	if set, ok := s.inbound[key.InboundID]; ok {
		delete(set, key)
	}
}

func index(idx map[uuid.UUID]map[EdgeKey]struct{}, id uuid.UUID, key EdgeKey) {
	set, ok := idx[id]
	if !ok {
		set = make(map[EdgeKey]struct{})
		idx[id] = set
	}
	set[key] = struct{}{}
}

// SortEdgeKeys orders keys by their string form so listings are stable.
func SortEdgeKeys(keys []EdgeKey) {
	slices.SortFunc(keys, func(a, b EdgeKey) int {
		return strings.Compare(a.String(), b.String())
	})
}

var _ Store = (*MemoryStore)(nil)
