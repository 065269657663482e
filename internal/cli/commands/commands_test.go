// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/leapstack-labs/pdgview/internal/cli/config"
	"github.com/leapstack-labs/pdgview/internal/cli/output"
	"github.com/leapstack-labs/pdgview/internal/cli/testutil"
	"github.com/leapstack-labs/pdgview/internal/pdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderCommand(t *testing.T) {
	cmd := NewRenderCommand()

	assert.Equal(t, "render [payload-file|-]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"out", "scan", "file"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewInspectCommand(t *testing.T) {
	cmd := NewInspectCommand()

	assert.Equal(t, "inspect [payload-file|-]", cmd.Use)
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")

	// Note: --output flag is a global persistent flag on root command, not local
	for _, flag := range []string{"scan", "file"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewLayoutCommand(t *testing.T) {
	cmd := NewLayoutCommand()

	assert.Equal(t, "layout <total>", cmd.Use)
	assert.Error(t, cmd.Args(cmd, nil), "total is required")
	assert.NoError(t, cmd.Args(cmd, []string{"3"}))
}

func TestNewUICommand(t *testing.T) {
	cmd := NewUICommand()

	assert.Equal(t, "ui", cmd.Use)
	for _, flag := range []string{"port", "open", "no-browser", "watch", "dev"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.True(t, cmd.Flags().Lookup("dev").Hidden)
}

func TestSessionSecret(t *testing.T) {
	assert.Equal(t, "configured", sessionSecret("configured"))

	generated := sessionSecret("")
	assert.Len(t, generated, 32)
	assert.NotEqual(t, generated, sessionSecret(""))
}

func sampleResult() *pdg.Result {
	return &pdg.Result{
		Source: pdg.SourceDOT,
		Graph: pdg.Graph{
			Nodes: []pdg.GraphNode{
				{ID: "src", Label: "argv[1]", X: 10, Y: 20},
				{ID: "buf", Label: "buf", X: 30.456, Y: 40},
				{ID: "copy", Label: "strcpy", X: 50, Y: 60, IsVulnerable: true},
			},
			Edges: []pdg.GraphEdge{
				{Source: "src", Target: "copy"},
				{Source: "buf", Target: "copy"},
				{Source: "copy", Target: "sink"},
			},
		},
	}
}

func TestBuildInspectOutput(t *testing.T) {
	out := buildInspectOutput("sample", sampleResult())

	assert.Equal(t, "sample", out.Input)
	assert.Equal(t, "dot", out.Source)
	require.Len(t, out.Nodes, 3)
	assert.Empty(t, out.Nodes[0].Upstream, "only vulnerable nodes list upstream")
	assert.Equal(t, []string{"buf", "src"}, out.Nodes[2].Upstream)
	assert.Len(t, out.Edges, 3)
	require.Len(t, out.Dangling, 1)
	assert.Equal(t, "sink", out.Dangling[0].Target)
	assert.Equal(t, []string{"copy"}, out.Vulnerable)

	n, ok := out.Node("copy")
	require.True(t, ok)
	assert.Equal(t, "strcpy", n.Label)
	_, ok = out.Node("sink")
	assert.False(t, ok)
}

func TestInspectMarkdown(t *testing.T) {
	tr := testutil.NewTestRenderer("markdown", false)

	require.NoError(t, inspectMarkdown(tr.Renderer, buildInspectOutput("sample", sampleResult())))

	md := tr.Output()
	testutil.AssertNoANSI(t, md)
	testutil.AssertValidMarkdown(t, md)
	assert.Contains(t, md, "# PDG: sample")
	assert.Contains(t, md, "- **Nodes:** 3")
	assert.Contains(t, md, "| buf | buf | 30.46 | 40.00 | false |")
	assert.Contains(t, md, "## Vulnerable")
	assert.Contains(t, md, "  - depends on: buf, src")
}

func TestInspectText(t *testing.T) {
	tr := testutil.NewTestRenderer("text", false)

	require.NoError(t, inspectText(tr.Renderer, buildInspectOutput("sample", sampleResult())))

	text := tr.Output()
	testutil.AssertNoANSI(t, text)
	assert.Contains(t, text, "PDG: sample")
	assert.Contains(t, text, "Dangling edges")
	assert.Contains(t, text, "vulnerable: copy")
	assert.Contains(t, text, "Total: 3 nodes, 3 edges")
	assert.Empty(t, tr.ErrorOutput())
}

func TestNewCommandContext_UsesStoredValues(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.OutputFormat = "json"
	renderer := output.NewRenderer(&out, &out, output.ModeJSON)

	ctx := config.WithConfig(context.Background(), cfg)
	ctx = output.WithRenderer(ctx, renderer)
	cmd := NewRenderCommand()
	cmd.SetContext(ctx)

	cc := NewCommandContext(cmd)
	assert.Same(t, cfg, cc.Cfg)
	assert.Same(t, renderer, cc.Renderer)
	assert.NotNil(t, cc.Logger)
}

func TestNewCommandContext_Defaults(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewLayoutCommand()
	cmd.SetContext(context.Background())

	cc := NewCommandContext(cmd)
	assert.Equal(t, config.Default(), cc.Cfg)
	require.NotNil(t, cc.Renderer)
}
