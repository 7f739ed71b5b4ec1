package core

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// placeholderPixel is the opaque blue RGBA8 content of a texture whose image
// has not arrived (or never will).
var placeholderPixel = [4]byte{0, 0, 255, 255}

// PlaceholderPixel returns a copy of the placeholder content.
func PlaceholderPixel() [4]byte { return placeholderPixel }

// ImageSource fetches and decodes the image named by source.
type ImageSource interface {
	Decode(ctx context.Context, source string) (image.Image, error)
}

// FilterMode is the sampling setup applied after a real image upload.
type FilterMode int

const (
	// FilterPlaceholder means no image has been uploaded yet.
	FilterPlaceholder FilterMode = iota
	// FilterMipmap generates a mipmap chain (power-of-two sizes only).
	FilterMipmap
	// FilterClampLinear clamps S and T to the edge and minifies linearly.
	FilterClampLinear
)

func (m FilterMode) String() string {
	switch m {
	case FilterMipmap:
		return "mipmap"
	case FilterClampLinear:
		return "clamp-linear"
	}
	return "placeholder"
}

// IsPowerOfTwo reports whether n is an exact positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FilterModeFor selects mipmapping when both sides are powers of two, and
// the clamp/linear fallback otherwise.
func FilterModeFor(width, height int) FilterMode {
	if IsPowerOfTwo(width) && IsPowerOfTwo(height) {
		return FilterMipmap
	}
	return FilterClampLinear
}

// Texture is a GPU texture that is renderable from creation: it starts as a
// 1x1 placeholder and is upgraded in place once its image is decoded.
// Only the frame loop goroutine reads or writes its mutable fields.
type Texture struct {
	ID     TextureID
	Source string

	width, height int
	mode          FilterMode
	ready         bool
	err           error
}

// Ready reports whether the decoded image has been uploaded.
func (t *Texture) Ready() bool { return t.ready }

// Size returns the dimensions of the current content.
func (t *Texture) Size() (width, height int) { return t.width, t.height }

// Filter returns the sampling setup applied to the current content.
func (t *Texture) Filter() FilterMode { return t.mode }

// Err returns the decode failure, if any.
func (t *Texture) Err() error { return t.err }

// decoded is posted from a decode goroutine to the loader.
type decoded struct {
	tex *Texture
	img image.Image
	err error
}

// TextureLoader creates textures and finishes their asynchronous decode on
// the goroutine that calls Poll. Decode goroutines never touch the Context
// and never block on the frame loop: results queue in an unbounded list.
type TextureLoader struct {
	ctx    Context
	images ImageSource

	decodeCtx context.Context
	cancel    context.CancelFunc

	mu      sync.Mutex
	results []decoded
	// inFlight counts decodes that have not posted; idle is closed when it
	// drops to zero.
	inFlight int
	idle     chan struct{}
	pending  int
}

// NewTextureLoader returns a loader that decodes through images.
func NewTextureLoader(ctx Context, images ImageSource) *TextureLoader {
	dctx, cancel := context.WithCancel(context.Background())
	return &TextureLoader{
		ctx:       ctx,
		images:    images,
		decodeCtx: dctx,
		cancel:    cancel,
	}
}

// Load allocates a texture seeded with the placeholder pixel and starts
// decoding source in the background. It returns without waiting.
func (l *TextureLoader) Load(source string) (*Texture, error) {
	id := l.ctx.CreateTexture()
	if id == 0 {
		return nil, errors.Errorf("texture %s: create failed", source)
	}
	t := &Texture{ID: id, Source: source}
	l.uploadPlaceholder(t)

	if l.images == nil {
		return t, nil
	}
	l.mu.Lock()
	if l.inFlight == 0 {
		l.idle = make(chan struct{})
	}
	l.inFlight++
	l.pending++
	l.mu.Unlock()

	go func() {
		img, err := l.images.Decode(l.decodeCtx, source)
		l.post(decoded{tex: t, img: img, err: err})
	}()
	return t, nil
}

// post queues a result, or drops it once the loader is closed.
func (l *TextureLoader) post(d decoded) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.decodeCtx.Err() != nil {
		l.pending--
	} else {
		l.results = append(l.results, d)
	}
	l.inFlight--
	if l.inFlight == 0 {
		close(l.idle)
	}
}

func (l *TextureLoader) uploadPlaceholder(t *Texture) {
	px := placeholderPixel
	l.ctx.BindTexture(t.ID)
	l.ctx.TexImage2D(1, 1, px[:])
	t.width, t.height = 1, 1
	t.mode = FilterPlaceholder
}

// Poll applies every decode result that has arrived, without blocking.
// It returns the number of results applied.
func (l *TextureLoader) Poll() int {
	l.mu.Lock()
	batch := l.results
	l.results = nil
	l.pending -= len(batch)
	l.mu.Unlock()

	for _, d := range batch {
		l.finish(d)
	}
	return len(batch)
}

// Pending returns the number of decodes not yet applied by Poll.
func (l *TextureLoader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Wait blocks until every started decode has posted its result, or ctx is
// done. Results still need Poll to reach the GPU.
func (l *TextureLoader) Wait(ctx context.Context) error {
	l.mu.Lock()
	if l.inFlight == 0 {
		l.mu.Unlock()
		return nil
	}
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels outstanding decodes and discards results not yet polled.
// Textures already created stay valid until deleted.
func (l *TextureLoader) Close() {
	l.cancel()
	l.mu.Lock()
	l.pending -= len(l.results)
	l.results = nil
	l.mu.Unlock()
}

func (l *TextureLoader) finish(d decoded) {
	t := d.tex
	if d.err == nil && (d.img == nil || d.img.Bounds().Empty()) {
		d.err = errors.New("decoder returned no image")
	}
	if d.err != nil {
		t.err = &AssetError{Source: t.Source, Err: d.err}
		Logger().Warn("texture decode failed, keeping placeholder", "source", t.Source, "error", d.err)
		return
	}
	rgba := toRGBA(d.img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	l.ctx.BindTexture(t.ID)
	l.ctx.TexImage2D(w, h, rgba.Pix)
	mode := FilterModeFor(w, h)
	if mode == FilterMipmap {
		l.ctx.GenerateMipmap()
	} else {
		l.ctx.TexParameter(TextureWrapS, ClampToEdge)
		l.ctx.TexParameter(TextureWrapT, ClampToEdge)
		l.ctx.TexParameter(TextureMinFilter, Linear)
	}
	t.width, t.height = w, h
	t.mode = mode
	t.ready = true
	Logger().Debug("texture uploaded", "source", t.Source, "width", w, "height", h, "filter", mode)
}

// toRGBA returns img as tightly packed RGBA8 with a zero origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
