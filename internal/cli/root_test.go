package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/pdgview/internal/cli/config"
	"github.com/leapstack-labs/pdgview/internal/cli/output"
	"github.com/leapstack-labs/pdgview/internal/cli/testutil"
	"github.com/leapstack-labs/pdgview/internal/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// execute runs the root command with args from a fresh project directory.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"version", "render", "inspect", "layout", "ui", "completion"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}

	for _, flag := range []string{"config", "payload-dir", "output", "verbose", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRender_FileToStdout(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	out, _, err := execute(t, "", "render", filepath.Join("payloads", "scan-1", "main.json"), "-o", "text")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "strcpy")
	assert.Equal(t, 2, strings.Count(out, "<circle"))
}

func TestRender_StdinDOT(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, `digraph { a [label="gets", color="red"]; }`, "render", "-", "-o", "json")
	require.NoError(t, err)

	var got output.RenderOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "stdin", got.Input)
	assert.Equal(t, "dot", got.Source)
	assert.Contains(t, got.SVG, "gets")
}

func TestRender_FromPayloadDirToFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	target := filepath.Join(dir, "out", "util.svg")

	_, _, err := execute(t, "", "render", "--scan", "scan-1", "--file", "util", "--out", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `id="`+svg.ElementID+`"`)
	assert.Contains(t, string(data), "memcpy")
}

func TestRender_MarkdownWrapsSVG(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "not a payload", "render", "-o", "markdown")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# PDG: stdin"))
	assert.Contains(t, out, "```svg\n<svg")
	// Unreadable input draws the sample graph.
	assert.Contains(t, out, "main()")
	testutil.AssertValidMarkdown(t, out)
}

func TestRender_MissingPayload(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	_, _, err := execute(t, "", "render", "--scan", "scan-1", "--file", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInspect_JSON(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	out, _, err := execute(t, "", "inspect", "--scan", "scan-1", "--file", "main", "-o", "json")
	require.NoError(t, err)

	var got output.InspectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "scan-1/main", got.Input)
	assert.Equal(t, "structured", got.Source)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "input", got.Nodes[0].ID)
	assert.Equal(t, "strcpy", got.Nodes[1].ID)
	assert.True(t, got.Nodes[1].IsVulnerable)
	assert.Equal(t, []string{"input"}, got.Nodes[1].Upstream)
	assert.Equal(t, []output.InspectEdge{{Source: "input", Target: "strcpy"}, {Source: "strcpy", Target: "ghost"}}, got.Edges)
	assert.Equal(t, []output.InspectEdge{{Source: "strcpy", Target: "ghost"}}, got.Dangling)
}

func TestInspect_YAML(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	out, _, err := execute(t, "", "inspect", "--scan", "scan-1", "--file", "util", "-o", "yaml")
	require.NoError(t, err)

	var got output.InspectOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dot", got.Source)
	assert.Len(t, got.Nodes, 2)
}

func TestInspect_Markdown(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	out, _, err := execute(t, "", "inspect", filepath.Join("payloads", "scan-1", "main.json"))
	require.NoError(t, err)

	// Output is not a terminal, so auto mode is markdown.
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	for _, want := range []string{
		"# PDG: payloads/scan-1/main.json",
		"- **Decoded by:** structured",
		"## Dangling edges",
		"| strcpy | ghost |",
		"  - depends on: input",
	} {
		assert.Contains(t, out, filepath.FromSlash(want))
	}
}

func TestInspect_Text(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	out, _, err := execute(t, "", "inspect", "--scan", "scan-1", "--file", "main", "-o", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "decoded by: structured")
	assert.Contains(t, out, "vulnerable: strcpy")
	assert.Contains(t, out, "Total: 2 nodes, 2 edges")
}

func TestLayout_JSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "", "layout", "4", "-o", "json")
	require.NoError(t, err)

	var got []output.LayoutPosition
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 4)
	assert.InDelta(t, 450, got[0].X, 1e-9)
	assert.InDelta(t, 200, got[0].Y, 1e-9)
	assert.InDelta(t, 300, got[1].X, 1e-9)
	assert.InDelta(t, 350, got[1].Y, 1e-9)
}

func TestLayout_InvalidTotal(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, arg := range []string{"0", "-3", "many"} {
		_, _, err := execute(t, "", "layout", "--", arg)
		assert.Error(t, err, arg)
	}
}

func TestConfig_InvalidOutputFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "", "layout", "3", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestConfig_FileSetsOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdgview.yaml"), []byte("output: yaml\n"), 0o600))
	t.Chdir(dir)

	out, _, err := execute(t, "", "layout", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "- index: 0\n"))

	var got []output.LayoutPosition
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []output.LayoutPosition{{Index: 0, X: 450, Y: 200}}, got)
}

func TestVerbose_LogsToStderr(t *testing.T) {
	t.Chdir(t.TempDir())

	_, errOut, err := execute(t, "garbage", "render", "-", "-v", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, errOut, "using fallback graph")
	assert.Contains(t, errOut, "level=DEBUG")
}

func TestCompletion(t *testing.T) {
	out, _, err := execute(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "pdgview")
}
