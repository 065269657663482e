package pdg

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPayload(t *testing.T, body string) *Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func TestNormalize_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		payload *Payload
	}{
		{name: "nil payload", payload: nil},
		{name: "empty payload", payload: &Payload{}},
		{name: "null pdg_data", payload: &Payload{PDGData: json.RawMessage("null")}},
		{name: "numeric pdg_data", payload: &Payload{PDGData: json.RawMessage("42")}},
		{name: "array pdg_data", payload: &Payload{PDGData: json.RawMessage("[1,2]")}},
		{name: "malformed json string", payload: PayloadFromText("{not valid json")},
		{name: "plain text", payload: PayloadFromText("strcpy(buf, input)")},
		{name: "object without nodes", payload: PayloadFromValue(map[string]any{"edges": []any{}})},
		{name: "nodes of wrong type", payload: PayloadFromValue(map[string]any{"nodes": 3})},
		{name: "null node descriptor", payload: rawPayload(t, `{"pdg_data":{"nodes":{"A":null}}}`)},
		{name: "edge is not an object", payload: rawPayload(t, `{"pdg_data":{"nodes":{"A":{}},"edges":["A"]}}`)},
		{name: "array node without id", payload: rawPayload(t, `{"pdg_data":{"nodes":[{"label":"x"}]}}`)},
	}

	want := Fallback()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.payload)
			require.NotNil(t, res)
			assert.True(t, res.IsFallback())
			assert.Equal(t, want, res.Graph)
		})
	}
}

func TestFallback_Stable(t *testing.T) {
	first := Normalize(nil)
	second := Normalize(nil)
	assert.Equal(t, first.Graph, second.Graph)

	require.Len(t, first.Graph.Nodes, 6)
	require.Len(t, first.Graph.Edges, 8)

	vulnerable := first.Graph.Vulnerable()
	require.Len(t, vulnerable, 1)
	assert.Equal(t, "strcpy", vulnerable[0].ID)

	// Mutating a result must not leak into later fallbacks.
	first.Graph.Nodes[0].Label = "changed"
	assert.Equal(t, "main()", Normalize(nil).Graph.Nodes[0].Label)
}

func TestNormalize_StructuredRoundTrip(t *testing.T) {
	p := rawPayload(t, `{"pdg_data":{"nodes":{"A":{"label":"A","x":10,"y":20,"isVulnerable":true}},"edges":[{"source":"A","target":"A"}]}}`)

	res := Normalize(p)
	assert.Equal(t, SourceStructured, res.Source)
	assert.Equal(t, Graph{
		Nodes: []GraphNode{{ID: "A", Label: "A", X: 10, Y: 20, IsVulnerable: true}},
		Edges: []GraphEdge{{Source: "A", Target: "A"}},
	}, res.Graph)
}

func TestNormalize_Defaults(t *testing.T) {
	p := rawPayload(t, `{"pdg_data":{"nodes":{"b":{},"a":{"x":5},"c":{"label":""}},"edges":[{"from":"b","to":"a"}]}}`)

	res := Normalize(p)
	require.Equal(t, SourceStructured, res.Source)
	require.Len(t, res.Graph.Nodes, 3)

	// Document order, not sorted order.
	assert.Equal(t, "b", res.Graph.Nodes[0].ID)
	assert.Equal(t, "a", res.Graph.Nodes[1].ID)
	assert.Equal(t, "c", res.Graph.Nodes[2].ID)

	for _, n := range res.Graph.Nodes {
		assert.Equal(t, n.ID, n.Label, "label defaults to id")
		assert.False(t, n.IsVulnerable)
	}

	// Only the missing coordinate is computed.
	_, wantY := CircularPosition(1, 3)
	assert.Equal(t, 5.0, res.Graph.Nodes[1].X)
	assert.InDelta(t, wantY, res.Graph.Nodes[1].Y, 1e-9)

	assert.Equal(t, []GraphEdge{{Source: "b", Target: "a"}}, res.Graph.Edges)
}

func TestNormalize_CircularLayout(t *testing.T) {
	for _, total := range []int{1, 2, 5, 12} {
		nodes := make(map[string]any, total)
		for i := 0; i < total; i++ {
			nodes[string(rune('a'+i))] = map[string]any{}
		}
		res := Normalize(PayloadFromValue(map[string]any{"nodes": nodes}))
		require.Equal(t, SourceStructured, res.Source)
		require.Len(t, res.Graph.Nodes, total)

		for i, n := range res.Graph.Nodes {
			x, y := CircularPosition(i, total)
			assert.InDelta(t, x, n.X, 1e-9, "node %d of %d", i, total)
			assert.InDelta(t, y, n.Y, 1e-9, "node %d of %d", i, total)
		}
	}
}

func TestNormalize_GoMapSortsKeys(t *testing.T) {
	res := Normalize(PayloadFromValue(map[string]any{
		"nodes": map[string]any{
			"zeta":  map[string]any{},
			"alpha": map[string]any{},
			"mid":   map[string]any{},
		},
	}))
	ids := make([]string, 0, len(res.Graph.Nodes))
	for _, n := range res.Graph.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestNormalize_JSONStringEquivalence(t *testing.T) {
	structured := `{"nodes":{"n2":{"label":"strcpy","isVulnerable":true},"n1":{"label":"main","x":1,"y":2}},"edges":[{"source":"n1","target":"n2"},{"from":"n2","to":"n3"}]}`

	fromObject := Normalize(&Payload{PDGData: json.RawMessage(structured)})
	fromString := Normalize(PayloadFromText(structured))

	assert.Equal(t, SourceStructured, fromObject.Source)
	assert.Equal(t, SourceJSONString, fromString.Source)
	assert.Equal(t, fromObject.Graph, fromString.Graph)
}

func TestNormalize_WeakTyping(t *testing.T) {
	p := rawPayload(t, `{"pdg_data":{"nodes":[{"id":7,"label":"ret","x":"10.5","y":"3","isVulnerable":"true"}],"edges":[{"source":7,"target":7}]}}`)

	res := Normalize(p)
	require.Equal(t, SourceStructured, res.Source)
	assert.Equal(t, []GraphNode{{ID: "7", Label: "ret", X: 10.5, Y: 3, IsVulnerable: true}}, res.Graph.Nodes)
	assert.Equal(t, []GraphEdge{{Source: "7", Target: "7"}}, res.Graph.Edges)
}

func TestNormalize_NonFiniteCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		fixed bool
	}{
		{name: "NaN and Inf strings", body: `{"pdg_data":{"nodes":{"a":{"x":"NaN","y":"+Inf"}}}}`},
		{name: "negative infinity", body: `{"pdg_data":{"nodes":{"a":{"x":"-Inf","y":"-inf"}}}}`},
		{name: "finite x kept", body: `{"pdg_data":{"nodes":{"a":{"x":"12","y":"nan"}}}}`, fixed: true},
	}

	wantX, wantY := CircularPosition(0, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(rawPayload(t, tt.body))
			require.Equal(t, SourceStructured, res.Source)
			require.Len(t, res.Graph.Nodes, 1)

			n := res.Graph.Nodes[0]
			if tt.fixed {
				assert.Equal(t, 12.0, n.X)
			} else {
				assert.InDelta(t, wantX, n.X, 1e-9)
			}
			assert.InDelta(t, wantY, n.Y, 1e-9)

			_, err := json.Marshal(res)
			assert.NoError(t, err)
		})
	}
}

func TestNormalize_CanonicalGraphValue(t *testing.T) {
	g := Graph{
		Nodes: []GraphNode{
			{ID: "x", Label: "x()", X: 1, Y: 2},
			{ID: "y", Label: "y()", X: 3, Y: 4, IsVulnerable: true},
		},
		Edges: []GraphEdge{{Source: "x", Target: "y"}},
	}
	res := Normalize(PayloadFromValue(g))
	assert.Equal(t, SourceStructured, res.Source)
	assert.Equal(t, g, res.Graph)
}

func TestNormalize_DOT(t *testing.T) {
	res := Normalize(PayloadFromText(`digraph g { A [label="foo"]; B [label="bar", color="red"]; A -> B; }`))

	require.Equal(t, SourceDOT, res.Source)
	require.Len(t, res.Graph.Nodes, 2)

	a, b := res.Graph.Nodes[0], res.Graph.Nodes[1]
	assert.Equal(t, "A", a.ID)
	assert.Equal(t, "foo", a.Label)
	assert.False(t, a.IsVulnerable)
	assert.Equal(t, "B", b.ID)
	assert.Equal(t, "bar", b.Label)
	assert.True(t, b.IsVulnerable)

	assert.Equal(t, []GraphEdge{{Source: "A", Target: "B"}}, res.Graph.Edges)
}

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		source Source
		nodes  int
	}{
		{name: "envelope", body: `{"pdg_data":{"nodes":{"a":{}}}}`, source: SourceStructured, nodes: 1},
		{name: "envelope with dot", body: `{"pdg_data":"digraph { a [label=\"x\"]; }"}`, source: SourceDOT, nodes: 1},
		{name: "bare dot text", body: "digraph f {\n  a [label=\"x\"];\n  b [shape=box];\n  a -> b;\n}", source: SourceDOT, nodes: 2},
		{name: "envelope without pdg_data", body: `{"scan_id":"1"}`, source: SourceFallback, nodes: 6},
		{name: "empty body", body: ``, source: SourceFallback, nodes: 6},
		{name: "garbage", body: `<html>`, source: SourceFallback, nodes: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NormalizeJSON([]byte(tt.body))
			assert.Equal(t, tt.source, res.Source)
			assert.Len(t, res.Graph.Nodes, tt.nodes)
		})
	}
}

func TestNormalizer_LogsRejections(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res := NewNormalizer(logger).Normalize(PayloadFromText("{not valid json"))
	assert.True(t, res.IsFallback())

	out := buf.String()
	assert.Contains(t, out, "decoder=structured")
	assert.Contains(t, out, "decoder=json")
	assert.Contains(t, out, "decoder=dot")
	assert.Contains(t, out, "using fallback graph")
}
