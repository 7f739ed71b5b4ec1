// Command texcube draws a rotating cube whose texture swaps on a timer.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/toxichemicals/GO/texcube/assets"
	"github.com/toxichemicals/GO/texcube/config"
	"github.com/toxichemicals/GO/texcube/core"
	"github.com/toxichemicals/GO/texcube/host"
)

func main() {
	var (
		configPath = flag.String("config", "texcube.yml", "path to the YAML configuration")
		variant    = flag.String("variant", "", "override render.variant (lit-textured or flat-colored)")
		logLevel   = flag.String("log-level", "", "override log.level (debug, info, warn, error)")
		frames     = flag.Int("frames", 0, "stop after this many frames; 0 runs until the window closes")
	)
	flag.Parse()

	if err := run(*configPath, *variant, *logLevel, *frames); err != nil {
		host.Alert(fmt.Sprintf("texcube: %v", err))
		os.Exit(1)
	}
}

func run(configPath, variant, logLevel string, frames int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if variant != "" {
		cfg.Render.Variant = variant
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	core.SetLogger(logger)

	h, err := host.Open(host.Options{
		Width:    cfg.Window.Width,
		Height:   cfg.Window.Height,
		Title:    cfg.Window.Title,
		VSync:    cfg.Window.VSync,
		CanvasID: cfg.Window.Canvas,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	opts, err := cfg.RendererOptions(assets.NewFetcher(host.AssetBase()))
	if err != nil {
		return err
	}
	r := core.NewRenderer(h.Context(), opts)
	if err := r.Initialize(); err != nil {
		return err
	}
	defer r.Release()

	logger.Info("rendering", "variant", opts.Variant.Name(), "textures", len(opts.Textures), "frames", frames)
	return core.Run(h, r, frames)
}
