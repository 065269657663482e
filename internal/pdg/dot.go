package pdg

import (
	"errors"
	"regexp"
	"strings"
)

// The DOT reader is pattern based, not a grammar. It understands node
// statements with an attribute list and a -> b edges, which is all the
// backend emits. Identifiers may be quoted, and quoted attribute values
// may contain brackets.
var (
	dotNodePattern  = regexp.MustCompile(`"?(\w+)"?\s*\[((?:"[^"]*"|[^\]"])*)\]`)
	dotLabelPattern = regexp.MustCompile(`label\s*=\s*"([^"]*)"`)
	dotEdgePattern  = regexp.MustCompile(`"?(\w+)"?\s*->\s*"?(\w+)"?`)
)

// Attribute fragments that mark a node as vulnerable.
var dotVulnerableMarkers = []string{
	`color="red"`,
	`fillcolor="#fee2e2"`,
}

var errNotDOT = errors.New(`text does not contain "digraph"`)

// IsDOT reports whether text looks like DOT-like graph notation.
func IsDOT(text string) bool {
	return strings.Contains(text, "digraph")
}

// ParseDOT reads DOT-like text into a graph laid out on a circle. Text
// without the "digraph" keyword is rejected.
func ParseDOT(text string) (Graph, error) {
	if !IsDOT(text) {
		return Graph{}, errNotDOT
	}

	matches := dotNodePattern.FindAllStringSubmatch(text, -1)
	g := Graph{
		Nodes: make([]GraphNode, 0, len(matches)),
		Edges: []GraphEdge{},
	}
	for i, m := range matches {
		id, attrs := m[1], m[2]
		x, y := CircularPosition(i, len(matches))
		n := GraphNode{ID: id, Label: id, X: x, Y: y}
		if lm := dotLabelPattern.FindStringSubmatch(attrs); lm != nil {
			n.Label = lm[1]
		}
		for _, marker := range dotVulnerableMarkers {
			if strings.Contains(attrs, marker) {
				n.IsVulnerable = true
				break
			}
		}
		g.Nodes = append(g.Nodes, n)
	}

	for _, m := range dotEdgePattern.FindAllStringSubmatch(text, -1) {
		g.Edges = append(g.Edges, GraphEdge{Source: m[1], Target: m[2]})
	}
	return g, nil
}
