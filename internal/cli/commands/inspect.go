package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/pdgview/internal/cli/output"
	"github.com/leapstack-labs/pdgview/internal/pdg"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	payload := &PayloadFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [payload-file|-]",
		Short: "Show the normalized graph for a PDG payload",
		Long: `Normalize a PDG payload and print the canonical graph: nodes with
their layout coordinates, edges, edges that reference unknown nodes,
and which decoder accepted the payload.

Vulnerable nodes are listed with every node they depend on.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Inspect a payload file
  pdgview inspect scan-1/main.json

  # Inspect a payload from the payload directory as YAML
  pdgview inspect --scan scan-1 --file main -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, payload)
		},
	}

	payload.register(cmd)
	return cmd
}

func runInspect(cmd *cobra.Command, args []string, payload *PayloadFlags) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	name, res, err := cmdCtx.loadPayload(cmd, args, payload)
	if err != nil {
		return err
	}
	out := buildInspectOutput(name, res)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeYAML:
		return r.YAML(out)
	case output.ModeMarkdown:
		return inspectMarkdown(r, out)
	default:
		return inspectText(r, out)
	}
}

func buildInspectOutput(name string, res *pdg.Result) output.InspectOutput {
	g := &res.Graph
	out := output.InspectOutput{
		Input:      name,
		Source:     string(res.Source),
		Nodes:      make([]output.InspectNode, 0, len(g.Nodes)),
		Edges:      make([]output.InspectEdge, 0, len(g.Edges)),
		Dangling:   []output.InspectEdge{},
		Vulnerable: []string{},
	}

	upstream := make(map[string][]string)
	for _, n := range g.Vulnerable() {
		upstream[n.ID] = g.Upstream(n.ID)
		out.Vulnerable = append(out.Vulnerable, n.ID)
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, output.InspectNode{
			ID:           n.ID,
			Label:        n.Label,
			X:            n.X,
			Y:            n.Y,
			IsVulnerable: n.IsVulnerable,
			Upstream:     upstream[n.ID],
		})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, output.InspectEdge{Source: e.Source, Target: e.Target})
	}
	_, dangling := g.ResolveEdges()
	for _, e := range dangling {
		out.Dangling = append(out.Dangling, output.InspectEdge{Source: e.Source, Target: e.Target})
	}
	return out
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func nodeRows(out output.InspectOutput, mark func(bool) string) [][]string {
	rows := make([][]string, 0, len(out.Nodes))
	for _, n := range out.Nodes {
		rows = append(rows, []string{n.ID, n.Label, coord(n.X), coord(n.Y), mark(n.IsVulnerable)})
	}
	return rows
}

func edgeRows(edges []output.InspectEdge) [][]string {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{e.Source, e.Target})
	}
	return rows
}

var (
	nodeHeader = []string{"ID", "Label", "X", "Y", "Vulnerable"}
	edgeHeader = []string{"Source", "Target"}
)

// inspectText outputs the graph in styled text format.
func inspectText(r *output.Renderer, out output.InspectOutput) error {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("PDG: %s", out.Input))
	r.Printf("%s %s\n\n", styles.Muted.Render("decoded by:"), out.Source)

	r.Header(2, "Nodes")
	r.Table(nodeHeader, nodeRows(out, func(v bool) string {
		if v {
			return styles.Vulnerable.Render("yes")
		}
		return styles.Safe.Render("no")
	}))
	r.Println("")

	r.Header(2, "Edges")
	if len(out.Edges) == 0 {
		r.Println(styles.Muted.Render("(none)"))
	} else {
		r.Table(edgeHeader, edgeRows(out.Edges))
	}
	r.Println("")

	if len(out.Dangling) > 0 {
		r.Header(2, "Dangling edges")
		r.Table(edgeHeader, edgeRows(out.Dangling))
		r.Println("")
	}

	for _, id := range out.Vulnerable {
		n, _ := out.Node(id)
		r.Printf("%s %s\n", styles.Vulnerable.Render("vulnerable:"), styles.NodeID.Render(id))
		r.Printf("  %s %s\n", styles.Muted.Render("depends on:"), output.FormatList(n.Upstream))
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d nodes, %d edges", len(out.Nodes), len(out.Edges))))
	return nil
}

// inspectMarkdown outputs the graph in markdown format.
func inspectMarkdown(r *output.Renderer, out output.InspectOutput) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("PDG: %s", out.Input)))
	r.Println("")
	r.Println(output.FormatKeyValue("Decoded by", out.Source))
	r.Println(output.FormatKeyValue("Nodes", strconv.Itoa(len(out.Nodes))))
	r.Println(output.FormatKeyValue("Edges", strconv.Itoa(len(out.Edges))))
	r.Println("")

	r.Println(output.FormatHeader(2, "Nodes"))
	r.Table(nodeHeader, nodeRows(out, strconv.FormatBool))
	r.Println("")

	if len(out.Edges) > 0 {
		r.Println(output.FormatHeader(2, "Edges"))
		r.Table(edgeHeader, edgeRows(out.Edges))
		r.Println("")
	}

	if len(out.Dangling) > 0 {
		r.Println(output.FormatHeader(2, "Dangling edges"))
		r.Table(edgeHeader, edgeRows(out.Dangling))
		r.Println("")
	}

	if len(out.Vulnerable) > 0 {
		r.Println(output.FormatHeader(2, "Vulnerable"))
		for _, id := range out.Vulnerable {
			n, _ := out.Node(id)
			r.Printf("- %s\n", id)
			r.Printf("  - depends on: %s\n", output.FormatList(n.Upstream))
		}
	}
	return nil
}
