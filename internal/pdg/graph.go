// Package pdg turns program-dependency-graph payloads from the analysis
// backend into a canonical node/edge graph with 2D layout coordinates.
//
// Payloads come in several shapes (a structured node mapping, the same
// mapping encoded as a JSON string, or DOT-like text). Normalize accepts
// all of them and never fails: anything it cannot read is replaced by the
// fixed sample graph returned by Fallback.
package pdg

import (
	"sort"
)

// GraphNode is a single statement or value in the dependency graph.
type GraphNode struct {
	ID           string  `json:"id" yaml:"id"`
	Label        string  `json:"label" yaml:"label"`
	X            float64 `json:"x" yaml:"x"`
	Y            float64 `json:"y" yaml:"y"`
	IsVulnerable bool    `json:"isVulnerable" yaml:"isVulnerable"`
}

// GraphEdge is a dependency between two nodes, referenced by id.
type GraphEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Graph is the canonical form consumed by the renderer.
//
// Node order is preserved from the payload. Edges may repeat and may
// reference ids that are not in Nodes; such edges are kept here and
// skipped when drawing.
type Graph struct {
	Nodes []GraphNode `json:"nodes" yaml:"nodes"`
	Edges []GraphEdge `json:"edges" yaml:"edges"`
}

// Index maps node ids to nodes. When ids repeat the last node wins.
type Index map[string]GraphNode

// Index builds an id lookup table for the graph.
func (g *Graph) Index() Index {
	idx := make(Index, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.ID] = n
	}
	return idx
}

// Lookup returns the node with the given id.
func (g *Graph) Lookup(id string) (GraphNode, bool) {
	// Scan backwards so the last duplicate wins, matching Index.
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		if g.Nodes[i].ID == id {
			return g.Nodes[i], true
		}
	}
	return GraphNode{}, false
}

// ResolvedEdge is an edge whose endpoints both exist in the graph.
type ResolvedEdge struct {
	Source GraphNode
	Target GraphNode
}

// ResolveEdges returns the drawable edges in order, together with the
// edges that reference a missing node.
func (g *Graph) ResolveEdges() (resolved []ResolvedEdge, dangling []GraphEdge) {
	idx := g.Index()
	for _, e := range g.Edges {
		src, ok := idx[e.Source]
		if !ok {
			dangling = append(dangling, e)
			continue
		}
		dst, ok := idx[e.Target]
		if !ok {
			dangling = append(dangling, e)
			continue
		}
		resolved = append(resolved, ResolvedEdge{Source: src, Target: dst})
	}
	return resolved, dangling
}

// Vulnerable returns the flagged nodes in graph order.
func (g *Graph) Vulnerable() []GraphNode {
	var out []GraphNode
	for _, n := range g.Nodes {
		if n.IsVulnerable {
			out = append(out, n)
		}
	}
	return out
}

// Upstream returns the ids of every node that can reach id by following
// edges forward, i.e. everything the node depends on. The result is
// sorted and excludes id itself unless it sits on a cycle.
func (g *Graph) Upstream(id string) []string {
	parents := make(map[string][]string)
	for _, e := range g.Edges {
		parents[e.Target] = append(parents[e.Target], e.Source)
	}

	seen := make(map[string]bool)
	var mark func(string)
	mark = func(nodeID string) {
		for _, p := range parents[nodeID] {
			if !seen[p] {
				seen[p] = true
				mark(p)
			}
		}
	}
	mark(id)

	result := make([]string, 0, len(seen))
	for nodeID := range seen {
		result = append(result, nodeID)
	}
	sort.Strings(result)
	return result
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]GraphNode, len(g.Nodes)),
		Edges: make([]GraphEdge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}
