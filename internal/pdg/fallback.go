package pdg

// fallbackNodes is an illustrative function that copies user input into
// a stack buffer with strcpy.
var fallbackNodes = []GraphNode{
	{ID: "main", Label: "main()", X: 300, Y: 50},
	{ID: "buffer", Label: "buffer", X: 150, Y: 150},
	{ID: "input", Label: "input", X: 300, Y: 150},
	{ID: "strcpy", Label: "strcpy", X: 450, Y: 150, IsVulnerable: true},
	{ID: "printf", Label: "printf", X: 300, Y: 250},
	{ID: "return", Label: "return", X: 300, Y: 350},
}

var fallbackEdges = []GraphEdge{
	{Source: "main", Target: "buffer"},
	{Source: "main", Target: "input"},
	{Source: "main", Target: "strcpy"},
	{Source: "buffer", Target: "strcpy"},
	{Source: "input", Target: "strcpy"},
	{Source: "strcpy", Target: "printf"},
	{Source: "input", Target: "printf"},
	{Source: "printf", Target: "return"},
}

// Fallback returns the sample graph shown when no usable payload is
// available. Every call returns a fresh copy.
func Fallback() Graph {
	g := Graph{Nodes: fallbackNodes, Edges: fallbackEdges}
	return g.Clone()
}
