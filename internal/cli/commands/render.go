package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/pdgview/internal/cli/output"
	"github.com/leapstack-labs/pdgview/internal/svg"
	"github.com/spf13/cobra"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Out     string
	Payload PayloadFlags
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render [payload-file|-]",
		Short: "Render a PDG payload as SVG",
		Long: `Normalize a PDG payload and render it as a 600x400 SVG diagram.

The payload may be a response envelope ({"pdg_data": ...}) or bare
DOT text. Payloads that cannot be decoded render the sample graph.

Output adapts to environment:
  - Terminal: Raw SVG
  - Piped/Scripted: Markdown with code block`,
		Example: `  # Render a payload file
  pdgview render scan-1/main.json --out main.svg

  # Render from stdin
  cat main.dot | pdgview render -

  # Render a payload from the payload directory
  pdgview render --scan scan-1 --file main

  # Render as JSON
  pdgview render main.json --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Write SVG to this file instead of stdout")
	opts.Payload.register(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts *RenderOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	name, res, err := cmdCtx.loadPayload(cmd, args, &opts.Payload)
	if err != nil {
		return err
	}
	doc := svg.RenderString(&res.Graph)

	if opts.Out != "" {
		if dir := filepath.Dir(opts.Out); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(opts.Out, []byte(doc), 0o600); err != nil {
			return fmt.Errorf("failed to write svg: %w", err)
		}
		cmdCtx.Logger.Info("svg written", "path", opts.Out, "source", res.Source)
		return nil
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.RenderOutput{Input: name, Source: string(res.Source), SVG: doc})
	case output.ModeYAML:
		return r.YAML(output.RenderOutput{Input: name, Source: string(res.Source), SVG: doc})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("PDG: %s", name)))
		r.Println("")
		r.Println(output.FormatCodeBlock("svg", doc))
	default:
		// Text mode: just output the SVG directly
		r.Println(doc)
	}

	return nil
}
