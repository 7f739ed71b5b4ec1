// Package config loads the texcube YAML configuration.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/toxichemicals/GO/texcube/core"
)

const maxConfigSize = 1 << 20

// Config is the top-level configuration document.
type Config struct {
	Window   Window   `yaml:"window"`
	Render   Render   `yaml:"render"`
	Textures []string `yaml:"textures"`
	Log      Log      `yaml:"log"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
	Canvas string `yaml:"canvas"`
}

type Render struct {
	// Variant is "lit-textured" or "flat-colored".
	Variant string `yaml:"variant"`
	// SwapPeriod is the seconds each texture stays bound.
	SwapPeriod  float64    `yaml:"swap_period"`
	FieldOfView float32    `yaml:"field_of_view"`
	ClearColor  [4]float32 `yaml:"clear_color"`
}

type Log struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Window: Window{
			Width:  640,
			Height: 480,
			Title:  "texcube",
			VSync:  true,
			Canvas: "gl-canvas",
		},
		Render: Render{
			Variant:     core.LitTextured{}.Name(),
			SwapPeriod:  core.DefaultSwapPeriod,
			FieldOfView: core.DefaultFieldOfView,
			ClearColor:  [4]float32{0, 0, 0, 1},
		},
		Textures: []string{
			"textures/cubetexture.png",
			"textures/cubetexture2.png",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file, or a platform without
// a filesystem, yields Default(). Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOSYS) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "open config")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if len(data) > maxConfigSize {
		return cfg, errors.Errorf("config %s larger than %d bytes", path, maxConfigSize)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping fields the document leaves out.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrap(err, "parse")
	}
	return nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	v, err := core.VariantByName(c.Render.Variant)
	if err != nil {
		return err
	}
	if v.Textured() && len(c.Textures) == 0 {
		return errors.Errorf("variant %s needs at least one texture", v.Name())
	}
	if c.Render.SwapPeriod <= 0 {
		return errors.Errorf("swap_period %v must be positive", c.Render.SwapPeriod)
	}
	if c.Render.FieldOfView <= 0 || c.Render.FieldOfView >= 180 {
		return errors.Errorf("field_of_view %v must be in (0, 180)", c.Render.FieldOfView)
	}
	for i, ch := range c.Render.ClearColor {
		if ch < 0 || ch > 1 {
			return errors.Errorf("clear_color[%d] = %v outside [0, 1]", i, ch)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the level name to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, errors.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}

// RendererOptions builds the renderer setup this configuration describes.
func (c Config) RendererOptions(images core.ImageSource) (core.Options, error) {
	v, err := core.VariantByName(c.Render.Variant)
	if err != nil {
		return core.Options{}, err
	}
	opts := core.DefaultOptions()
	opts.Variant = v
	opts.Images = images
	opts.SwapPeriod = c.Render.SwapPeriod
	opts.FieldOfView = c.Render.FieldOfView
	opts.ClearColor = c.Render.ClearColor
	if v.Textured() {
		opts.Textures = append([]string(nil), c.Textures...)
	}
	return opts, nil
}
