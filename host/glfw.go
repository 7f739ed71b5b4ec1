//go:build !js && !sdl

package host

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/toxichemicals/GO/texcube/backend/desktopgl"
	"github.com/toxichemicals/GO/texcube/core"
)

func init() {
	// GLFW event handling and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

type glfwHost struct {
	window *glfw.Window
	ctx    *desktopgl.Context
	title  string
	fps    fpsCounter
}

// Open creates a window with an OpenGL 4.1 core context and makes it
// current on the calling thread.
func Open(opts Options) (Host, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrapf(core.ErrContextUnavailable, "glfw init: %v", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrapf(core.ErrContextUnavailable, "create window: %v", err)
	}
	window.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	ctx, err := desktopgl.New(window.GetFramebufferSize)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}
	core.Logger().Info("window opened", "backend", "glfw", "width", opts.Width, "height", opts.Height, "vsync", opts.VSync)
	return &glfwHost{window: window, ctx: ctx, title: opts.Title}, nil
}

func (h *glfwHost) Context() core.Context { return h.ctx }

func (h *glfwHost) Run(frame func(nowMillis float64) bool) error {
	for !h.window.ShouldClose() {
		now := glfw.GetTime()
		if !frame(now * 1000) {
			break
		}
		h.window.SwapBuffers()
		glfw.PollEvents()

		if fps, ok := h.fps.tick(now); ok {
			h.window.SetTitle(titleWithFPS(h.title, fps))
		}
	}
	return nil
}

func (h *glfwHost) Close() {
	h.ctx.Release()
	h.window.Destroy()
	glfw.Terminate()
}

// Alert reports a fatal message to the user. GLFW has no dialog support, so
// it goes to stderr.
func Alert(message string) {
	core.Logger().Error(message)
	fmt.Fprintln(os.Stderr, message)
}

// AssetBase is the base that relative asset sources resolve against:
// the working directory on desktop.
func AssetBase() string { return "" }
