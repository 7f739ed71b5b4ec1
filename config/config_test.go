package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toxichemicals/GO/texcube/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "texcube.yml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "lit-textured", cfg.Render.Variant)
	assert.Equal(t, 0.25, cfg.Render.SwapPeriod)
	assert.Len(t, cfg.Textures, 2)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
window:
  width: 1024
  vsync: false
render:
  variant: flat-colored
  swap_period: 0.5
  clear_color: [0.1, 0.2, 0.3, 1]
log:
  level: debug
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height, "unset keys keep defaults")
	assert.False(t, cfg.Window.VSync)
	assert.Equal(t, "texcube", cfg.Window.Title)
	assert.Equal(t, 0.5, cfg.Render.SwapPeriod)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.Render.ClearColor)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "window: [not, a, map"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "windw:\n  width: 3\n"))
	assert.Error(t, err, "unknown keys are errors")
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"unknown variant", func(c *Config) { c.Render.Variant = "wireframe" }},
		{"textured without textures", func(c *Config) { c.Textures = nil }},
		{"zero swap period", func(c *Config) { c.Render.SwapPeriod = 0 }},
		{"field of view", func(c *Config) { c.Render.FieldOfView = 180 }},
		{"clear color", func(c *Config) { c.Render.ClearColor[2] = 1.5 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	flat := Default()
	flat.Render.Variant = "flat-colored"
	flat.Textures = nil
	assert.NoError(t, flat.Validate(), "flat variant needs no textures")
}

func TestRendererOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.SwapPeriod = 1
	opts, err := cfg.RendererOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, core.LitTextured{}, opts.Variant)
	assert.Equal(t, cfg.Textures, opts.Textures)
	assert.Equal(t, 1.0, opts.SwapPeriod)
	assert.Equal(t, float32(core.DefaultDistance), opts.Distance)

	cfg.Render.Variant = "flat-colored"
	opts, err = cfg.RendererOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, core.FlatColored{}, opts.Variant)
	assert.Empty(t, opts.Textures)
}
