package redisstore

import (
	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/property"
)

// storedProperty is the stored form of a graph.NamedProperty. The value keeps its
// kind so that Int(5) does not come back as Uint(5).
type storedProperty struct {
	Name  string          `json:"name"`
	Value property.Tagged `json:"value"`
}

type vertexRecord struct {
	Vertex graph.Vertex     `json:"vertex"`
	Label  graph.TypeLabel  `json:"label"`
	Props  []storedProperty `json:"props"`
}

type edgeRecord struct {
	Edge  graph.Edge       `json:"edge"`
	Props []storedProperty `json:"props"`
}

func newVertexRecord(vp graph.VertexProperties) vertexRecord {
	return vertexRecord{Vertex: vp.Vertex, Label: vp.Label, Props: storeProps(vp.Props)}
}

func (r vertexRecord) properties() graph.VertexProperties {
	return graph.NewVertexProperties(r.Vertex, r.Label, loadProps(r.Props))
}

func newEdgeRecord(ep graph.EdgeProperties) edgeRecord {
	return edgeRecord{Edge: ep.Edge, Props: storeProps(ep.Props)}
}

func (r edgeRecord) properties() graph.EdgeProperties {
	return graph.NewEdgeProperties(r.Edge, loadProps(r.Props))
}

func storeProps(props []graph.NamedProperty) []storedProperty {
	if props == nil {
		return nil
	}
	out := make([]storedProperty, len(props))
	for i, np := range props {
		out[i] = storedProperty{Name: np.Name, Value: property.Tagged{Value: np.Value}}
	}
	return out
}

func loadProps(stored []storedProperty) []graph.NamedProperty {
	if stored == nil {
		return nil
	}
	out := make([]graph.NamedProperty, len(stored))
	for i, sp := range stored {
		out[i] = graph.NamedProperty{Name: sp.Name, Value: sp.Value.Value}
	}
	return out
}
