// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "console.toml"

// Environment overrides.
const (
	EnvLogLevel    = "SCRIPTCONSOLE_LOG_LEVEL"
	EnvDisplayMode = "SCRIPTCONSOLE_DISPLAY_MODE"
	EnvMaxBatch    = "SCRIPTCONSOLE_MAX_BATCH"
)

// Display modes.
const (
	DisplayText = "text"
	DisplayRaw  = "raw"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Config represents the console configuration.
type Config struct {
	Console   ConsoleConfig   `toml:"console" yaml:"console"`
	Script    ScriptConfig    `toml:"script" yaml:"script"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Display   DisplayConfig   `toml:"display" yaml:"display"`
	Telemetry TelemetryConfig `toml:"telemetry" yaml:"telemetry"`
}

// ConsoleConfig contains engine settings.
type ConsoleConfig struct {
	Origin   string `toml:"origin" yaml:"origin"`       // Origin name of evaluated input
	MaxBatch int    `toml:"max_batch" yaml:"max_batch"` // Entries per sync batch, 0 = unlimited
}

// ScriptConfig contains realm settings.
type ScriptConfig struct {
	Packages []string `toml:"packages" yaml:"packages"` // Importable stdlib packages (empty = defaults)
	Prelude  []string `toml:"prelude" yaml:"prelude"`   // Source run when a session starts
}

// LoggingConfig contains structured log settings.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug|info|warn|error
	Format string `toml:"format" yaml:"format"` // console|json
	Output string `toml:"output" yaml:"output"` // File path, empty for stderr
}

// DisplayConfig contains terminal display settings.
type DisplayConfig struct {
	Mode   string `toml:"mode" yaml:"mode"`     // text|raw
	Color  bool   `toml:"color" yaml:"color"`   // Colored level prefixes
	Width  int    `toml:"width" yaml:"width"`   // Wrap width, 0 = no wrapping
	Buffer int    `toml:"buffer" yaml:"buffer"` // Pending notifications before drops
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled"`
	Endpoint    string `toml:"endpoint" yaml:"endpoint"` // OTLP/HTTP endpoint (e.g., localhost:4318)
	Insecure    bool   `toml:"insecure" yaml:"insecure"` // Disable TLS
	ServiceName string `toml:"service_name" yaml:"service_name"`
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Console: ConsoleConfig{
			Origin: "(console)",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Display: DisplayConfig{
			Mode:   DisplayText,
			Color:  true,
			Buffer: 256,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "scriptconsole",
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML or YAML file, chosen by
// extension.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return cfg, nil
}

// LoadDefault loads console.toml from the current directory. A missing
// file yields the defaults.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, DefaultFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return LoadFile(path)
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvDisplayMode); v != "" {
		c.Display.Mode = v
	}
	if v := os.Getenv(EnvMaxBatch); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvMaxBatch, v)
		}
		c.Console.MaxBatch = n
	}
	return nil
}

// Validate checks settings that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Console.MaxBatch < 0 {
		return fmt.Errorf("%w: console.max_batch must not be negative", ErrInvalid)
	}
	switch c.Display.Mode {
	case DisplayText, DisplayRaw:
	default:
		return fmt.Errorf("%w: display.mode %q (want text or raw)", ErrInvalid, c.Display.Mode)
	}
	if c.Display.Width < 0 || c.Display.Buffer < 0 {
		return fmt.Errorf("%w: display width and buffer must not be negative", ErrInvalid)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q (want console or json)", ErrInvalid, c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
