package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "(console)", cfg.Console.Origin)
	assert.Zero(t, cfg.Console.MaxBatch)
	assert.Equal(t, DisplayText, cfg.Display.Mode)
	assert.Equal(t, 256, cfg.Display.Buffer)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "console.toml", `
[console]
max_batch = 50

[script]
packages = ["strings", "fmt"]
prelude = ['import "strings"']

[logging]
level = "debug"
format = "json"

[display]
mode = "raw"
width = 80

[telemetry]
enabled = true
endpoint = "collector:4318"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Console.MaxBatch)
	assert.Equal(t, "(console)", cfg.Console.Origin, "unset keys keep defaults")
	assert.Equal(t, []string{"strings", "fmt"}, cfg.Script.Packages)
	assert.Equal(t, []string{`import "strings"`}, cfg.Script.Prelude)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DisplayRaw, cfg.Display.Mode)
	assert.Equal(t, 80, cfg.Display.Width)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "scriptconsole", cfg.Telemetry.ServiceName)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "console.yaml", `
console:
  origin: repl
  max_batch: 10
display:
  mode: text
  color: false
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "repl", cfg.Console.Origin)
	assert.Equal(t, 10, cfg.Console.MaxBatch)
	assert.False(t, cfg.Display.Color)
	assert.Equal(t, 256, cfg.Display.Buffer)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.toml", "[console\n"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.yml", "console: [\n"))
	assert.Error(t, err)
}

func TestLoadDefault_MissingFileGivesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestLoadDefault_ReadsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("[console]\norigin = \"here\"\n"), 0o644))
	t.Chdir(dir)

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "here", cfg.Console.Origin)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvDisplayMode, "raw")
	t.Setenv(EnvMaxBatch, "7")

	cfg := New()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, DisplayRaw, cfg.Display.Mode)
	assert.Equal(t, 7, cfg.Console.MaxBatch)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	t.Setenv(EnvMaxBatch, "lots")

	err := New().ApplyEnv()
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative batch", func(c *Config) { c.Console.MaxBatch = -1 }},
		{"unknown mode", func(c *Config) { c.Display.Mode = "html" }},
		{"negative width", func(c *Config) { c.Display.Width = -5 }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			assert.True(t, errors.Is(cfg.Validate(), ErrInvalid))
		})
	}
}
