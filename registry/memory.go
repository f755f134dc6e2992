package registry

import (
	"context"
	"sync"

	"github.com/zero-day-ai/flowgraph/typeid"
)

// MemoryRegistry is an in-process Registry.
//
// Thread-safety: All methods are safe for concurrent use.
type MemoryRegistry[T Definition] struct {
	mu    sync.RWMutex
	types map[typeid.TypeID]T
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry[T Definition]() *MemoryRegistry[T] {
	return &MemoryRegistry[T]{
		types: make(map[typeid.TypeID]T),
	}
}

func (r *MemoryRegistry[T]) Register(ctx context.Context, def T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[def.TypeID()] = def
	return nil
}

func (r *MemoryRegistry[T]) Get(ctx context.Context, ty typeid.TypeID) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[ty]
	if !ok {
		return zero, ErrNotFound
	}
	return def, nil
}

func (r *MemoryRegistry[T]) Has(ctx context.Context, ty typeid.TypeID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[ty]
	return ok, nil
}

func (r *MemoryRegistry[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]T, 0, len(r.types))
	for _, def := range r.types {
		defs = append(defs, def)
	}
	SortDefinitions(defs)
	return defs, nil
}

func (r *MemoryRegistry[T]) Delete(ctx context.Context, ty typeid.TypeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, ty)
	return nil
}

var _ Registry[Definition] = (*MemoryRegistry[Definition])(nil)
