// Package output renders command results for terminals, markdown
// consumers and machine readers.
package output

import "strings"

// OutputMode selects how command results are written.
type OutputMode string //nolint:revive // output.OutputMode reads better at call sites than output.Mode

// Supported output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeYAML     OutputMode = "yaml"
)

// Modes lists every accepted mode, for flag completion and validation.
var Modes = []OutputMode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML}

// Mode parses a mode name. Empty and unknown names mean ModeAuto.
func Mode(s string) OutputMode {
	m := OutputMode(strings.ToLower(strings.TrimSpace(s)))
	if IsValid(string(m)) {
		return m
	}
	return ModeAuto
}

// IsValid reports whether s names a supported mode. Empty is valid.
func IsValid(s string) bool {
	if s == "" {
		return true
	}
	for _, m := range Modes {
		if string(m) == s {
			return true
		}
	}
	return false
}
