// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/pdgview/internal/cli/output"
)

// Payload fixtures written by SetupTestProject.
const (
	// MainPayload has a vulnerable node and an edge to a missing node.
	MainPayload = `{
  "scan_id": "scan-1",
  "pdg_data": {
    "nodes": {
      "input": {"label": "read(input)", "x": 120, "y": 80},
      "strcpy": {"label": "strcpy", "isVulnerable": true}
    },
    "edges": [
      {"source": "input", "target": "strcpy"},
      {"from": "strcpy", "to": "ghost"}
    ]
  }
}`

	// UtilPayload is DOT text.
	UtilPayload = `digraph util {
  len [label="strlen(src)"];
  copy [label="memcpy", color="red", fillcolor="#fee2e2"];
  len -> copy;
}`
)

// SetupTestProject creates a temporary project with a payload directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	scanDir := filepath.Join(tmpDir, "payloads", "scan-1")
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", scanDir, err)
	}

	files := map[string]string{
		"main.json": MainPayload,
		"util.dot":  UtilPayload,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(scanDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
