package graph_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/graph/graphtest"
	"github.com/zero-day-ai/flowgraph/property"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := graph.NewMemoryStore()
	defer store.Close()

	graphtest.RunStoreContract(t, store)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()

	vp := graph.NewVertexProperties(
		graph.Vertex{ID: uuid.New(), T: uuid.New()},
		graph.TypeLabel{},
		[]graph.NamedProperty{{Name: "a", Value: property.Uint(1)}},
	)
	require.NoError(t, store.PutVertex(ctx, vp))

	vp.Props[0].Value = property.Uint(2)
	loaded, err := store.GetVertex(ctx, vp.Vertex.ID)
	require.NoError(t, err)
	loaded.Props[0].Value = property.Uint(3)

	again, err := store.GetVertex(ctx, vp.Vertex.ID)
	require.NoError(t, err)
	assert.True(t, property.Uint(1).Equal(again.Props[0].Value))
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := store.GetVertex(ctx, uuid.New())
	assert.ErrorIs(t, err, graph.ErrClosed)
	assert.ErrorIs(t, store.PutVertex(ctx, graph.VertexProperties{}), graph.ErrClosed)
	_, err = store.OutboundEdges(ctx, uuid.New())
	assert.ErrorIs(t, err, graph.ErrClosed)
}

func TestPropertyEncodingRoundTrip(t *testing.T) {
	props := property.Instances{"b": property.String("x"), "a": property.Null()}

	named := graph.NamedProperties(props)
	require.Len(t, named, 2)
	assert.Equal(t, "a", named[0].Name)
	assert.Equal(t, "b", named[1].Name)

	decoded := graph.PropertyInstances(named)
	assert.True(t, property.Object(props).Equal(property.Object(decoded)))
}

func TestPropertyName_AcceptsAnyEncoding(t *testing.T) {
	decoded := graph.PropertyInstances([]graph.NamedProperty{
		{Name: "ns::weird name/with:chars", Value: property.Bool(true)},
		{Name: "", Value: property.Bool(false)},
	})

	v, ok := decoded.AsBool("ns::weird name/with:chars")
	assert.True(t, ok)
	assert.True(t, v)
	assert.True(t, decoded.Has(""))
}

func TestEdgeKey_Reversed(t *testing.T) {
	key := graph.NewEdgeKey(uuid.New(), uuid.New(), uuid.New())
	rev := key.Reversed()

	assert.Equal(t, key.OutboundID, rev.InboundID)
	assert.Equal(t, key.InboundID, rev.OutboundID)
	assert.Equal(t, key.T, rev.T)
	assert.Equal(t, key, rev.Reversed())
}
