// Package svg draws canonical PDG graphs as static SVG documents.
package svg

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/pdgview/internal/pdg"
)

// Canvas geometry, in SVG user units.
const (
	Width      = 600
	Height     = 400
	NodeRadius = 30
)

// Colours and captions.
const (
	Background      = "#f9fafb"
	EdgeStroke      = "#94a3b8"
	LegendFill      = "#6b7280"
	LegendText      = "Highlighted in red: Vulnerable code block"
	PlaceholderText = "No PDG data available"
)

// ElementID is the id of the root <svg> element, used for live patching.
const ElementID = "pdg-canvas"

type palette struct {
	fill   string
	stroke string
}

var (
	safePalette       = palette{fill: "#dbeafe", stroke: "#3b82f6"}
	vulnerablePalette = palette{fill: "#fee2e2", stroke: "#ef4444"}
)

func nodePalette(vulnerable bool) palette {
	if vulnerable {
		return vulnerablePalette
	}
	return safePalette
}

// nodeData is one node as the canvas template draws it.
type nodeData struct {
	id     string
	label  string
	cx     string
	cy     string
	textY  string
	fill   string
	stroke string
}

// edgeData is one drawable edge.
type edgeData struct {
	x1, y1, x2, y2 string
}

type canvasData struct {
	placeholder bool
	edges       []edgeData
	nodes       []nodeData
}

// newCanvasData converts g to template data. A nil graph yields the
// placeholder. Edges with an unknown endpoint are skipped.
func newCanvasData(g *pdg.Graph) canvasData {
	if g == nil {
		return canvasData{placeholder: true}
	}

	resolved, _ := g.ResolveEdges()
	data := canvasData{
		edges: make([]edgeData, 0, len(resolved)),
		nodes: make([]nodeData, 0, len(g.Nodes)),
	}
	for _, e := range resolved {
		data.edges = append(data.edges, edgeData{
			x1: num(e.Source.X), y1: num(e.Source.Y),
			x2: num(e.Target.X), y2: num(e.Target.Y),
		})
	}
	for _, n := range g.Nodes {
		p := nodePalette(n.IsVulnerable)
		data.nodes = append(data.nodes, nodeData{
			id:     n.ID,
			label:  n.Label,
			cx:     num(n.X),
			cy:     num(n.Y),
			textY:  num(n.Y + 5),
			fill:   p.fill,
			stroke: p.stroke,
		})
	}
	return data
}

// Render writes a complete SVG document for g. A nil graph renders the
// placeholder. Only write errors are returned.
func Render(w io.Writer, g *pdg.Graph) error {
	return Component(g).Render(context.Background(), w)
}

// RenderString returns the SVG document for g. The output depends only on
// g, so equal graphs produce identical documents.
func RenderString(g *pdg.Graph) string {
	var b strings.Builder
	_ = Render(&b, g)
	return b.String()
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
