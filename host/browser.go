//go:build js && wasm

package host

import (
	"syscall/js"

	"github.com/pkg/errors"

	"github.com/toxichemicals/GO/texcube/backend/webgl"
	"github.com/toxichemicals/GO/texcube/core"
)

type browserHost struct {
	canvas js.Value
	ctx    *webgl.Context
	title  string
	fps    fpsCounter
}

// Open finds or creates the canvas and obtains a WebGL 1 context from it.
func Open(opts Options) (Host, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() {
		return nil, errors.Wrap(core.ErrContextUnavailable, "no document")
	}

	var canvas js.Value
	if opts.CanvasID != "" {
		canvas = doc.Call("getElementById", opts.CanvasID)
	}
	if canvas.IsUndefined() || canvas.IsNull() {
		body := doc.Get("body")
		width, height := canvasSize(body.Get("clientWidth").Int(), body.Get("clientHeight").Int(), opts)
		canvas = doc.Call("createElement", "canvas")
		canvas.Set("id", opts.CanvasID)
		canvas.Set("width", width)
		canvas.Set("height", height)
		body.Call("appendChild", canvas)
	}

	gl := canvas.Call("getContext", "webgl")
	if gl.IsNull() || gl.IsUndefined() {
		gl = canvas.Call("getContext", "experimental-webgl")
	}
	ctx, err := webgl.New(gl)
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize WebGL, your browser or machine may not support it")
	}
	if opts.Title != "" {
		doc.Set("title", opts.Title)
	}
	core.Logger().Info("canvas ready", "backend", "webgl",
		"width", canvas.Get("width").Int(), "height", canvas.Get("height").Int())
	return &browserHost{canvas: canvas, ctx: ctx, title: opts.Title}, nil
}

func (h *browserHost) Context() core.Context { return h.ctx }

// Run schedules frame with requestAnimationFrame and blocks until frame
// returns false.
func (h *browserHost) Run(frame func(nowMillis float64) bool) error {
	done := make(chan struct{})
	var step js.Func
	step = js.FuncOf(func(this js.Value, args []js.Value) any {
		now := args[0].Float()
		if !frame(now) {
			close(done)
			return nil
		}
		if fps, ok := h.fps.tick(now / 1000); ok && h.title != "" {
			js.Global().Get("document").Set("title", titleWithFPS(h.title, fps))
		}
		js.Global().Call("requestAnimationFrame", step)
		return nil
	})
	js.Global().Call("requestAnimationFrame", step)
	<-done
	step.Release()
	return nil
}

func (h *browserHost) Close() {}

// Alert shows message with window.alert.
func Alert(message string) {
	core.Logger().Error(message)
	js.Global().Call("alert", message)
}

// AssetBase is the page URL, so relative sources load from the server
// that served the page.
func AssetBase() string {
	return js.Global().Get("location").Get("href").String()
}
