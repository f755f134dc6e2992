package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// countingRegistry counts backend reads and can be made to fail.
type countingRegistry struct {
	*MemoryRegistry[model.Component]
	gets int
	err  error
}

func (r *countingRegistry) Get(ctx context.Context, ty typeid.TypeID) (model.Component, error) {
	r.gets++
	if r.err != nil {
		return model.Component{}, r.err
	}
	return r.MemoryRegistry.Get(ctx, ty)
}

func (r *countingRegistry) Register(ctx context.Context, def model.Component) error {
	if r.err != nil {
		return r.err
	}
	return r.MemoryRegistry.Register(ctx, def)
}

func newCountingRegistry() *countingRegistry {
	return &countingRegistry{MemoryRegistry: NewMemoryRegistry[model.Component]()}
}

func TestCachedGetReadsThrough(t *testing.T) {
	ctx := context.Background()
	backend := newCountingRegistry()
	labeled := testComponent("core", "labeled")
	require.NoError(t, backend.MemoryRegistry.Register(ctx, labeled))

	cached := NewCached[model.Component](backend)

	for i := 0; i < 3; i++ {
		got, err := cached.Get(ctx, labeled.Ty)
		require.NoError(t, err)
		assert.Equal(t, labeled, got)
	}
	assert.Equal(t, 1, backend.gets, "only the first read reaches the backend")

	cached.Flush()
	_, err := cached.Get(ctx, labeled.Ty)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.gets)
}

func TestCachedMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	backend := newCountingRegistry()
	cached := NewCached[model.Component](backend)

	ty := typeid.NewComponentTypeID("core", "missing")
	_, err := cached.Get(ctx, ty)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cached.Get(ctx, ty)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, backend.gets)
}

func TestCachedRegisterUpdatesCache(t *testing.T) {
	ctx := context.Background()
	backend := newCountingRegistry()
	cached := NewCached[model.Component](backend)

	labeled := testComponent("core", "labeled")
	require.NoError(t, cached.Register(ctx, labeled))

	got, err := cached.Get(ctx, labeled.Ty)
	require.NoError(t, err)
	assert.Equal(t, labeled, got)
	assert.Equal(t, 0, backend.gets, "registered definitions are served from the cache")

	ok, err := cached.Has(ctx, labeled.Ty)
	require.NoError(t, err)
	assert.True(t, ok)

	defs, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestCachedRegisterFailureEvicts(t *testing.T) {
	ctx := context.Background()
	backend := newCountingRegistry()
	cached := NewCached[model.Component](backend)

	labeled := testComponent("core", "labeled")
	require.NoError(t, cached.Register(ctx, labeled))

	backend.err = errors.New("backend down")
	updated := labeled
	updated.Description = "updated"
	assert.Error(t, cached.Register(ctx, updated))

	_, err := cached.Get(ctx, labeled.Ty)
	assert.Error(t, err, "the stale entry was evicted so the read reaches the failing backend")
}

func TestCachedDelete(t *testing.T) {
	ctx := context.Background()
	backend := newCountingRegistry()
	cached := NewCached[model.Component](backend)

	labeled := testComponent("core", "labeled")
	require.NoError(t, cached.Register(ctx, labeled))
	require.NoError(t, cached.Delete(ctx, labeled.Ty))

	_, err := cached.Get(ctx, labeled.Ty)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedExpiration(t *testing.T) {
	ctx := context.Background()
	backend := newCountingRegistry()
	labeled := testComponent("core", "labeled")
	require.NoError(t, backend.MemoryRegistry.Register(ctx, labeled))

	cached := NewCached[model.Component](backend,
		WithExpiration(10*time.Millisecond),
		WithCleanupInterval(time.Minute),
	)

	_, err := cached.Get(ctx, labeled.Ty)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = cached.Get(ctx, labeled.Ty)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.gets)
}
