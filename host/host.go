// Package host owns the drawing surface and the frame schedule. Open picks
// the platform at build time: a GLFW window by default, an SDL2 window with
// the sdl build tag, or a canvas element under js/wasm.
package host

import (
	"fmt"

	"github.com/toxichemicals/GO/texcube/core"
)

// Options describes the surface to open.
type Options struct {
	Width, Height int
	Title         string
	// VSync sets a swap interval of one. Browsers always sync to the display.
	VSync bool
	// CanvasID names the canvas element to reuse in the browser. A new
	// canvas is appended to the page body if none matches, sized to the
	// body's client area; Width and Height apply only if that area is empty.
	CanvasID string
}

// Host is an open surface with a current graphics context. Run blocks,
// calling frame once per display refresh with a timestamp in milliseconds
// and presenting the result, until frame returns false or the user closes
// the surface.
type Host interface {
	core.Scheduler
	Context() core.Context
	Close()
}

// fpsCounter counts frames and reports a rate once per elapsed second.
type fpsCounter struct {
	frames  int
	since   float64
	started bool
}

// tick registers a frame at now seconds. It returns the frame rate over
// the last window once at least a second has passed since the window began.
func (f *fpsCounter) tick(now float64) (float64, bool) {
	if !f.started {
		f.started = true
		f.since = now
		return 0, false
	}
	f.frames++
	elapsed := now - f.since
	if elapsed < 1 {
		return 0, false
	}
	fps := float64(f.frames) / elapsed
	f.frames = 0
	f.since = now
	return fps, true
}

// canvasSize picks the size of a new canvas: the page body's client area,
// or the configured size when the body has no layout yet.
func canvasSize(clientWidth, clientHeight int, opts Options) (int, int) {
	if clientWidth > 0 && clientHeight > 0 {
		return clientWidth, clientHeight
	}
	return opts.Width, opts.Height
}

func titleWithFPS(title string, fps float64) string {
	return fmt.Sprintf("%s | FPS: %.2f", title, fps)
}
