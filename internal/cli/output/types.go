package output

// RenderOutput is the JSON/YAML form of the render command.
type RenderOutput struct {
	Input  string `json:"input" yaml:"input"`
	Source string `json:"source" yaml:"source"`
	SVG    string `json:"svg" yaml:"svg"`
}

// InspectNode is one node row of the inspect command.
type InspectNode struct {
	ID           string   `json:"id" yaml:"id"`
	Label        string   `json:"label" yaml:"label"`
	X            float64  `json:"x" yaml:"x"`
	Y            float64  `json:"y" yaml:"y"`
	IsVulnerable bool     `json:"isVulnerable" yaml:"isVulnerable"`
	Upstream     []string `json:"upstream,omitempty" yaml:"upstream,omitempty"`
}

// InspectEdge is one edge of the inspect command.
type InspectEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// InspectOutput is the JSON/YAML form of the inspect command.
type InspectOutput struct {
	Input    string        `json:"input" yaml:"input"`
	Source   string        `json:"source" yaml:"source"`
	Nodes    []InspectNode `json:"nodes" yaml:"nodes"`
	Edges    []InspectEdge `json:"edges" yaml:"edges"`
	Dangling []InspectEdge `json:"dangling" yaml:"dangling"`
	// Vulnerable holds the ids of vulnerable nodes in node order.
	Vulnerable []string `json:"vulnerable" yaml:"vulnerable"`
}

// Node returns the node with the given id.
func (o *InspectOutput) Node(id string) (InspectNode, bool) {
	for _, n := range o.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return InspectNode{}, false
}

// LayoutPosition is one slot of the layout command.
type LayoutPosition struct {
	Index int     `json:"index" yaml:"index"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
}
