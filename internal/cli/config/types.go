// Package config provides configuration management for the pdgview CLI.
//
// Values are layered with koanf: built-in defaults, then a pdgview.yaml
// file, then PDGVIEW_ environment variables, then command-line flags.
package config

// Default configuration values.
const (
	DefaultPayloadDir = "payloads"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultUIPort     = 8766
)

// ConfigFileNames are searched in order in each candidate directory.
var ConfigFileNames = []string{"pdgview.yaml", "pdgview.yml"}

// LogConfig controls the slog handler built by the root command.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "text" or "json"
}

// UIConfig holds configuration for the viewer server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	AutoOpen      bool   `koanf:"auto_open"`
	SessionSecret string `koanf:"session_secret"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:  DefaultUIPort,
		Watch: true,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := *c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return &ui
}

// Config holds all CLI configuration options.
type Config struct {
	PayloadDir   string    `koanf:"payload_dir"`
	OutputFormat string    `koanf:"output"`
	Verbose      bool      `koanf:"verbose"`
	Log          LogConfig `koanf:"log"`
	UI           *UIConfig `koanf:"ui"`

	// ProjectRoot is the directory relative paths are resolved against:
	// the config file's directory, or the working directory without one.
	ProjectRoot string `koanf:"-"`
}

// Default returns the configuration used when nothing has been loaded.
func Default() *Config {
	return &Config{
		PayloadDir:   DefaultPayloadDir,
		OutputFormat: DefaultOutput,
		Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		UI:           DefaultUIConfig(),
	}
}
