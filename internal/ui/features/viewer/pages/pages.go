// Package pages renders the viewer's HTML pages.
package pages

import (
	"net/url"

	"github.com/leapstack-labs/pdgview/internal/source"
)

// DatastarScript is the client bundle that drives data-* attributes.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// ViewerPath returns the page URL for ref.
func ViewerPath(ref source.Ref) string {
	return "/scans/" + url.PathEscape(ref.ScanID) + "/pdg/" + url.PathEscape(ref.FileID)
}

// UpdatesPath returns the SSE URL for ref.
func UpdatesPath(ref source.Ref) string {
	return ViewerPath(ref) + "/updates"
}

// SVGPath returns the raw SVG URL for ref.
func SVGPath(ref source.Ref) string {
	return ViewerPath(ref) + "/svg"
}

// GraphPath returns the canonical graph URL for ref.
func GraphPath(ref source.Ref) string {
	return ViewerPath(ref) + "/graph"
}

// ScanGroup is one scan's payloads on the index page.
type ScanGroup struct {
	ScanID string
	Refs   []source.Ref
}

// GroupByScan groups refs by consecutive scan id. List returns refs sorted,
// so each scan appears once.
func GroupByScan(refs []source.Ref) []ScanGroup {
	var groups []ScanGroup
	for _, ref := range refs {
		if n := len(groups); n > 0 && groups[n-1].ScanID == ref.ScanID {
			groups[n-1].Refs = append(groups[n-1].Refs, ref)
			continue
		}
		groups = append(groups, ScanGroup{ScanID: ref.ScanID, Refs: []source.Ref{ref}})
	}
	return groups
}

func updatesAction(ref source.Ref) string {
	return "@get('" + UpdatesPath(ref) + "')"
}
