package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/pdgview/internal/cli/output"
	"github.com/leapstack-labs/pdgview/internal/pdg"
	"github.com/spf13/cobra"
)

// NewLayoutCommand creates the layout command.
func NewLayoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <total>",
		Short: "Print circular layout positions",
		Long: `Print the positions assigned to nodes that carry no coordinates.

Nodes are spaced evenly on a circle of radius 150 centred on (300, 200),
starting at angle zero.`,
		Example: `  # Positions for a five node graph
  pdgview layout 5

  # As JSON
  pdgview layout 5 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil || total < 1 {
				return fmt.Errorf("total must be a positive integer, got %q", args[0])
			}
			return runLayout(cmd, total)
		},
	}
}

func runLayout(cmd *cobra.Command, total int) error {
	r := NewCommandContext(cmd).Renderer

	positions := make([]output.LayoutPosition, 0, total)
	for i := 0; i < total; i++ {
		x, y := pdg.CircularPosition(i, total)
		positions = append(positions, output.LayoutPosition{Index: i, X: x, Y: y})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(positions)
	case output.ModeYAML:
		return r.YAML(positions)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Circular layout: %d nodes", total)))
		r.Println("")
	default:
		r.Header(1, fmt.Sprintf("Circular layout: %d nodes", total))
	}

	rows := make([][]string, 0, total)
	for _, p := range positions {
		rows = append(rows, []string{strconv.Itoa(p.Index), coord(p.X), coord(p.Y)})
	}
	r.Table([]string{"Index", "X", "Y"}, rows)
	return nil
}
