package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/pdgview/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PayloadDir == "" {
		return fmt.Errorf("payload_dir is required")
	}
	if !output.IsValid(c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of %v)", c.OutputFormat, output.Modes)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.Log.Format)
	}
	if c.UI != nil && (c.UI.Port < 0 || c.UI.Port > 65535) {
		return fmt.Errorf("invalid ui.port %d", c.UI.Port)
	}
	return nil
}

// ValidatePayloadDir checks that the payload directory exists.
func (c *Config) ValidatePayloadDir() error {
	info, err := os.Stat(c.PayloadDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("payload directory does not exist: %s\nHint: Create the directory or use --payload-dir to specify a different path", c.PayloadDir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("payload path is not a directory: %s", c.PayloadDir)
	}
	return nil
}

// ParseLevel parses a log level name. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
