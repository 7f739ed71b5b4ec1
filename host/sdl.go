//go:build sdl && !js

package host

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/toxichemicals/GO/texcube/backend/desktopgl"
	"github.com/toxichemicals/GO/texcube/core"
)

func init() {
	runtime.LockOSThread()
}

type sdlHost struct {
	window    *sdl.Window
	glContext sdl.GLContext
	ctx       *desktopgl.Context
	title     string
	fps       fpsCounter
}

// Open creates an SDL2 window with an OpenGL 4.1 core context.
func Open(opts Options) (Host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrapf(core.ErrContextUnavailable, "sdl init: %v", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	window, err := sdl.CreateWindow(opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(opts.Width), int32(opts.Height), sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrapf(core.ErrContextUnavailable, "create window: %v", err)
	}

	glContext, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, errors.Wrapf(core.ErrContextUnavailable, "create gl context: %v", err)
	}
	if err := window.GLMakeCurrent(glContext); err != nil {
		sdl.GLDeleteContext(glContext)
		window.Destroy()
		sdl.Quit()
		return nil, errors.Wrapf(core.ErrContextUnavailable, "make current: %v", err)
	}
	interval := 0
	if opts.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		core.Logger().Warn("swap interval not supported", "error", err)
	}

	ctx, err := desktopgl.New(func() (int, int) {
		w, h := window.GLGetDrawableSize()
		return int(w), int(h)
	})
	if err != nil {
		sdl.GLDeleteContext(glContext)
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	core.Logger().Info("window opened", "backend", "sdl", "width", opts.Width, "height", opts.Height, "vsync", opts.VSync)
	return &sdlHost{window: window, glContext: glContext, ctx: ctx, title: opts.Title}, nil
}

func (h *sdlHost) Context() core.Context { return h.ctx }

func (h *sdlHost) Run(frame func(nowMillis float64) bool) error {
	freq := float64(sdl.GetPerformanceFrequency())
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				return nil
			}
		}
		now := float64(sdl.GetPerformanceCounter()) / freq
		if !frame(now * 1000) {
			return nil
		}
		h.window.GLSwap()

		if fps, ok := h.fps.tick(now); ok {
			h.window.SetTitle(titleWithFPS(h.title, fps))
		}
	}
}

func (h *sdlHost) Close() {
	h.ctx.Release()
	sdl.GLDeleteContext(h.glContext)
	h.window.Destroy()
	sdl.Quit()
}

// Alert shows message in a native error dialog.
func Alert(message string) {
	core.Logger().Error(message)
	if err := sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_ERROR, "texcube", message, nil); err != nil {
		core.Logger().Warn("message box failed", "error", err)
	}
}

// AssetBase is the base that relative asset sources resolve against:
// the working directory on desktop.
func AssetBase() string { return "" }
