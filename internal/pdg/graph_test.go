package pdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_LookupLastWins(t *testing.T) {
	g := Graph{Nodes: []GraphNode{
		{ID: "a", Label: "first"},
		{ID: "b", Label: "b"},
		{ID: "a", Label: "second"},
	}}

	n, ok := g.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "second", n.Label)
	assert.Equal(t, "second", g.Index()["a"].Label)

	_, ok = g.Lookup("missing")
	assert.False(t, ok)
}

func TestGraph_ResolveEdges(t *testing.T) {
	g := Graph{
		Nodes: []GraphNode{{ID: "A", X: 1, Y: 2}},
		Edges: []GraphEdge{
			{Source: "A", Target: "Z"},
			{Source: "A", Target: "A"},
			{Source: "", Target: "A"},
		},
	}

	resolved, dangling := g.ResolveEdges()
	require.Len(t, resolved, 1)
	assert.Equal(t, "A", resolved[0].Source.ID)
	assert.Equal(t, "A", resolved[0].Target.ID)
	assert.Equal(t, []GraphEdge{{Source: "A", Target: "Z"}, {Source: "", Target: "A"}}, dangling)
}

func TestGraph_Upstream(t *testing.T) {
	g := Fallback()

	assert.Equal(t, []string{"buffer", "input", "main"}, g.Upstream("strcpy"))
	assert.Equal(t, []string{"buffer", "input", "main", "strcpy"}, g.Upstream("printf"))
	assert.Empty(t, g.Upstream("main"))
}

func TestGraph_UpstreamCycle(t *testing.T) {
	g := Graph{Edges: []GraphEdge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}}}
	assert.Equal(t, []string{"a", "b"}, g.Upstream("a"))
}
