package svg

import (
	"github.com/a-h/templ"
	"github.com/leapstack-labs/pdgview/internal/pdg"
)

// Component returns the canvas for g as a templ component so the diagram
// can be embedded in pages and SSE patches.
func Component(g *pdg.Graph) templ.Component {
	return canvas(newCanvasData(g))
}
