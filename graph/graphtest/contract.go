// Package graphtest provides a contract suite for graph.Store implementations.
package graphtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/property"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// RunStoreContract runs a suite of tests to verify that a Store implementation
// adheres to the interface contract. The store must be empty and open.
func RunStoreContract(t *testing.T, store graph.Store) {
	ctx := context.Background()
	entityT := typeid.NewEntityTypeID("contract", "node").FullyQualifiedIdentifier()
	relationT := typeid.NewRelationTypeID("contract", "links").FullyQualifiedIdentifier()

	newVertex := func(t *testing.T) graph.VertexProperties {
		t.Helper()
		vp := graph.NewVertexProperties(
			graph.Vertex{ID: uuid.New(), T: entityT},
			graph.TypeLabel{Namespace: "contract", TypeName: "node"},
			[]graph.NamedProperty{{Name: "name", Value: property.String("v")}},
		)
		require.NoError(t, store.PutVertex(ctx, vp))
		return vp
	}

	newEdge := func(t *testing.T, out, in uuid.UUID) graph.EdgeProperties {
		t.Helper()
		ep := graph.NewEdgeProperties(
			graph.NewEdgeWithCurrentDatetime(
				graph.NewEdgeKey(out, relationT, in),
				graph.TypeLabel{Namespace: "contract", TypeName: "links"},
			),
			[]graph.NamedProperty{
				{Name: "weight", Value: property.Float(0.5)},
				{Name: "count", Value: property.Uint(3)},
				{Name: "delta", Value: property.Int(-3)},
				{Name: "pos", Value: property.Int(5)},
			},
		)
		require.NoError(t, store.PutEdge(ctx, ep))
		return ep
	}

	t.Run("Put and Get Vertex", func(t *testing.T) {
		vp := newVertex(t)

		loaded, err := store.GetVertex(ctx, vp.Vertex.ID)
		require.NoError(t, err)
		assert.Equal(t, vp.Vertex, loaded.Vertex)
		assert.Equal(t, vp.Label, loaded.Label)
		require.Len(t, loaded.Props, 1)
		assert.Equal(t, "name", loaded.Props[0].Name)
		assert.True(t, property.String("v").Equal(loaded.Props[0].Value))
	})

	t.Run("Get Missing Vertex", func(t *testing.T) {
		_, err := store.GetVertex(ctx, uuid.New())
		assert.ErrorIs(t, err, graph.ErrNotFound)
	})

	t.Run("Put Vertex Replaces", func(t *testing.T) {
		vp := newVertex(t)
		vp.Props = nil
		require.NoError(t, store.PutVertex(ctx, vp))

		loaded, err := store.GetVertex(ctx, vp.Vertex.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Props)
	})

	t.Run("Vertices By Type", func(t *testing.T) {
		otherT := typeid.NewEntityTypeID("contract", "other").FullyQualifiedIdentifier()
		vp := graph.NewVertexProperties(graph.Vertex{ID: uuid.New(), T: otherT}, graph.TypeLabel{Namespace: "contract", TypeName: "other"}, nil)
		require.NoError(t, store.PutVertex(ctx, vp))

		found, err := store.VerticesByType(ctx, otherT)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, vp.Vertex.ID, found[0].Vertex.ID)

		none, err := store.VerticesByType(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Put and Get Edge", func(t *testing.T) {
		a, b := newVertex(t), newVertex(t)
		ep := newEdge(t, a.Vertex.ID, b.Vertex.ID)

		loaded, err := store.GetEdge(ctx, ep.Edge.Key)
		require.NoError(t, err)
		assert.Equal(t, ep.Edge.Key, loaded.Edge.Key)
		assert.Equal(t, ep.Edge.Label, loaded.Edge.Label)
		assert.WithinDuration(t, ep.Edge.CreatedAt, loaded.Edge.CreatedAt, 0)

		props := graph.PropertyInstances(loaded.Props)
		w, ok := props.AsFloat("weight")
		assert.True(t, ok)
		assert.Equal(t, 0.5, w)
		c, ok := props.AsUint("count")
		assert.True(t, ok)
		assert.Equal(t, uint64(3), c)
		d, ok := props.AsInt("delta")
		assert.True(t, ok)
		assert.Equal(t, int64(-3), d)
		pos, ok := props.AsInt("pos")
		assert.True(t, ok, "a non-negative signed integer stays signed")
		assert.Equal(t, int64(5), pos)
	})

	t.Run("Vertex Property Kinds Survive Reload", func(t *testing.T) {
		stored := []graph.NamedProperty{
			{Name: "int", Value: property.Int(5)},
			{Name: "zero", Value: property.Int(0)},
			{Name: "uint", Value: property.Uint(5)},
			{Name: "float", Value: property.Float(2)},
			{Name: "null", Value: property.Null()},
			{Name: "nested", Value: property.Array(property.Int(1), property.Object(map[string]property.Value{"n": property.Int(7)}))},
		}
		vp := graph.NewVertexProperties(
			graph.Vertex{ID: uuid.New(), T: entityT},
			graph.TypeLabel{Namespace: "contract", TypeName: "node"},
			stored,
		)
		require.NoError(t, store.PutVertex(ctx, vp))

		loaded, err := store.GetVertex(ctx, vp.Vertex.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Props, len(stored))
		for i, want := range stored {
			got := loaded.Props[i]
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.Value.Kind(), got.Value.Kind(), want.Name)
			assert.True(t, want.Value.Equal(got.Value), want.Name)
		}

		props := graph.PropertyInstances(loaded.Props)
		n, ok := props.AsInt("int")
		assert.True(t, ok)
		assert.Equal(t, int64(5), n)
		_, ok = props.AsUint("int")
		assert.False(t, ok)
	})

	t.Run("Put Edge Without Vertices", func(t *testing.T) {
		a := newVertex(t)
		ep := graph.NewEdgeProperties(
			graph.NewEdgeWithCurrentDatetime(graph.NewEdgeKey(a.Vertex.ID, relationT, uuid.New()), graph.TypeLabel{}),
			nil,
		)
		assert.ErrorIs(t, store.PutEdge(ctx, ep), graph.ErrVertexNotFound)

		ep.Edge.Key = graph.NewEdgeKey(uuid.New(), relationT, a.Vertex.ID)
		assert.ErrorIs(t, store.PutEdge(ctx, ep), graph.ErrVertexNotFound)
	})

	t.Run("Adjacency", func(t *testing.T) {
		a, b, c := newVertex(t), newVertex(t), newVertex(t)
		ab := newEdge(t, a.Vertex.ID, b.Vertex.ID)
		ac := newEdge(t, a.Vertex.ID, c.Vertex.ID)
		cb := newEdge(t, c.Vertex.ID, b.Vertex.ID)

		out, err := store.OutboundEdges(ctx, a.Vertex.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []graph.EdgeKey{ab.Edge.Key, ac.Edge.Key}, out)

		in, err := store.InboundEdges(ctx, b.Vertex.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []graph.EdgeKey{ab.Edge.Key, cb.Edge.Key}, in)

		none, err := store.OutboundEdges(ctx, b.Vertex.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Delete Edge", func(t *testing.T) {
		a, b := newVertex(t), newVertex(t)
		ep := newEdge(t, a.Vertex.ID, b.Vertex.ID)

		require.NoError(t, store.DeleteEdge(ctx, ep.Edge.Key))
		_, err := store.GetEdge(ctx, ep.Edge.Key)
		assert.ErrorIs(t, err, graph.ErrNotFound)

		out, err := store.OutboundEdges(ctx, a.Vertex.ID)
		require.NoError(t, err)
		assert.Empty(t, out)

		assert.NoError(t, store.DeleteEdge(ctx, ep.Edge.Key), "deleting a missing edge is not an error")
	})

	t.Run("Delete Vertex Removes Incident Edges", func(t *testing.T) {
		a, b, c := newVertex(t), newVertex(t), newVertex(t)
		ab := newEdge(t, a.Vertex.ID, b.Vertex.ID)
		cb := newEdge(t, c.Vertex.ID, b.Vertex.ID)
		ca := newEdge(t, c.Vertex.ID, a.Vertex.ID)

		require.NoError(t, store.DeleteVertex(ctx, a.Vertex.ID))

		_, err := store.GetVertex(ctx, a.Vertex.ID)
		assert.ErrorIs(t, err, graph.ErrNotFound)
		_, err = store.GetEdge(ctx, ab.Edge.Key)
		assert.ErrorIs(t, err, graph.ErrNotFound)
		_, err = store.GetEdge(ctx, ca.Edge.Key)
		assert.ErrorIs(t, err, graph.ErrNotFound)

		remaining, err := store.GetEdge(ctx, cb.Edge.Key)
		require.NoError(t, err)
		assert.Equal(t, cb.Edge.Key, remaining.Edge.Key)

		out, err := store.OutboundEdges(ctx, c.Vertex.ID)
		require.NoError(t, err)
		assert.Equal(t, []graph.EdgeKey{cb.Edge.Key}, out)

		assert.NoError(t, store.DeleteVertex(ctx, a.Vertex.ID))
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.GetVertex(cancelled, uuid.New())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
