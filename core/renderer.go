package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	DefaultSwapPeriod  = 0.25
	DefaultFieldOfView = 45
	DefaultNear        = 0.1
	DefaultFar         = 100
	DefaultDistance    = 6
)

// Options configures a Renderer.
type Options struct {
	Variant Variant

	// Textures lists the sources cycled by the swap countdown.
	// The textured variant needs at least one.
	Textures []string
	Images   ImageSource

	// SwapPeriod is the time, in seconds, each texture stays bound.
	SwapPeriod float64

	FieldOfView float32 // vertical, degrees
	Near, Far   float32
	// Distance moves the cube this far in front of the camera.
	Distance float32

	ClearColor [4]float32
}

// DefaultOptions returns the lit, textured setup: 45° at 0.1..100, cube at
// z=-6, opaque black clear, texture swap every 0.25s.
func DefaultOptions() Options {
	return Options{
		Variant:     LitTextured{},
		SwapPeriod:  DefaultSwapPeriod,
		FieldOfView: DefaultFieldOfView,
		Near:        DefaultNear,
		Far:         DefaultFar,
		Distance:    DefaultDistance,
		ClearColor:  [4]float32{0, 0, 0, 1},
	}
}

// AnimationState is the per-frame mutable state of the renderer.
type AnimationState struct {
	// Rotation grows without bound; the trig functions wrap it.
	Rotation     float64
	TextureIndex int
	Countdown    float64
}

// Advance moves the state forward by dt seconds. When the countdown runs
// out the texture index steps cyclically over n textures and the countdown
// restarts at period.
func (s *AnimationState) Advance(dt, period float64, n int) {
	s.Rotation += dt
	s.Countdown -= dt
	if s.Countdown <= 0 {
		if n > 0 {
			s.TextureIndex = (s.TextureIndex + 1) % n
		}
		s.Countdown = period
	}
}

// Renderer owns the GPU resources of the cube and draws one frame per
// RenderFrame call. The host decides how frames are scheduled.
type Renderer struct {
	ctx  Context
	opts Options

	info     *ProgramInfo
	buffers  *GeometryBuffers
	loader   *TextureLoader
	textures []*Texture
	state    AnimationState

	initialized bool
}

// NewRenderer returns a renderer bound to ctx. Zero-valued options fall
// back to DefaultOptions.
func NewRenderer(ctx Context, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Variant == nil {
		opts.Variant = def.Variant
	}
	if opts.SwapPeriod <= 0 {
		opts.SwapPeriod = def.SwapPeriod
	}
	if opts.FieldOfView <= 0 {
		opts.FieldOfView = def.FieldOfView
	}
	if opts.Near <= 0 {
		opts.Near = def.Near
	}
	if opts.Far <= opts.Near {
		opts.Far = def.Far
	}
	if opts.Distance == 0 {
		opts.Distance = def.Distance
	}
	return &Renderer{ctx: ctx, opts: opts}
}

// Initialize compiles the program, uploads the cube and starts loading the
// textures. Any failure is a *SetupError and leaves nothing allocated.
// Calling it again after success is a no-op.
func (r *Renderer) Initialize() error {
	if r.initialized {
		return nil
	}
	if r.ctx == nil {
		return &SetupError{Step: "context", Err: ErrContextUnavailable}
	}
	v := r.opts.Variant
	if v.Textured() && len(r.opts.Textures) == 0 {
		return &SetupError{Step: "textures", Err: errors.Errorf("%s variant needs at least one texture source", v.Name())}
	}

	info, err := NewProgramInfo(r.ctx, v)
	if err != nil {
		return &SetupError{Step: "shaders", Err: err}
	}
	buffers, err := BuildCubeGeometry(r.ctx, v)
	if err != nil {
		info.Program.Delete()
		return &SetupError{Step: "geometry", Err: err}
	}

	loader := NewTextureLoader(r.ctx, r.opts.Images)
	var textures []*Texture
	if v.Textured() {
		for _, src := range r.opts.Textures {
			t, err := loader.Load(src)
			if err != nil {
				loader.Close()
				for _, t := range textures {
					r.ctx.DeleteTexture(t.ID)
				}
				buffers.Delete()
				info.Program.Delete()
				return &SetupError{Step: "textures", Err: err}
			}
			textures = append(textures, t)
		}
	}

	r.info = info
	r.buffers = buffers
	r.loader = loader
	r.textures = textures
	r.state = AnimationState{Countdown: r.opts.SwapPeriod}
	r.initialized = true
	Logger().Info("renderer initialized", "variant", v.Name(), "textures", len(textures))
	return nil
}

// RenderFrame draws one frame and then advances the animation by dt seconds.
func (r *Renderer) RenderFrame(dt float64) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	ctx := r.ctx
	r.loader.Poll()

	c := r.opts.ClearColor
	ctx.ClearColor(c[0], c[1], c[2], c[3])
	ctx.ClearDepth(1)
	ctx.Enable(DepthTest)
	ctx.DepthFunc(LessEqual)
	ctx.Clear(ColorBufferBit | DepthBufferBit)

	width, height := ctx.DrawingBufferSize()
	ctx.Viewport(0, 0, width, height)

	u := frameUniforms{
		projection: Projection(r.opts.FieldOfView, aspect(width, height), r.opts.Near, r.opts.Far),
		modelView:  ModelView(r.opts.Distance, r.state.Rotation),
		texture:    r.BoundTexture(),
	}
	if r.info.Variant.Lit() {
		u.normal = NormalMatrix(u.modelView)
	}

	r.bindGeometry()
	ctx.UseProgram(r.info.Program.Handle())
	r.info.Variant.applyUniforms(ctx, r.info, &u)
	ctx.DrawElements(Triangles, r.buffers.IndexCount, 0)

	r.state.Advance(dt, r.opts.SwapPeriod, len(r.textures))
	return nil
}

func (r *Renderer) bindGeometry() {
	ctx := r.ctx
	ctx.BindBuffer(ElementArrayBuffer, r.buffers.Indices)
	for _, b := range r.buffers.bindings() {
		slot := r.info.Attribs[b.name]
		ctx.BindBuffer(ArrayBuffer, b.buffer)
		ctx.VertexAttribPointer(slot, b.size, false, 0, 0)
		ctx.EnableVertexAttribArray(slot)
	}
}

// State returns a copy of the animation state.
func (r *Renderer) State() AnimationState { return r.state }

// SetState replaces the animation state, e.g. to start a test at a known
// texture index.
func (r *Renderer) SetState(s AnimationState) { r.state = s }

// Textures returns the texture list in swap order.
func (r *Renderer) Textures() []*Texture { return r.textures }

// Loader returns the texture loader, nil before Initialize.
func (r *Renderer) Loader() *TextureLoader { return r.loader }

// BoundTexture returns the texture the next draw samples, or nil for the
// flat variant.
func (r *Renderer) BoundTexture() *Texture {
	if len(r.textures) == 0 {
		return nil
	}
	return r.textures[r.state.TextureIndex%len(r.textures)]
}

// Release frees every GPU object. The renderer must not be used afterwards.
func (r *Renderer) Release() {
	if !r.initialized {
		return
	}
	r.loader.Close()
	for _, t := range r.textures {
		r.ctx.DeleteTexture(t.ID)
	}
	r.buffers.Delete()
	r.info.Program.Delete()
	r.textures = nil
	r.initialized = false
}

// Projection returns the perspective matrix for a vertical field of view
// in degrees.
func Projection(fovDegrees, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDegrees), aspect, near, far)
}

// ModelView translates the cube distance units in front of the camera, then
// rotates it by angle about Z and by angle/2 about Y, in that order.
func ModelView(distance float32, angle float64) mgl32.Mat4 {
	// 4π is the common period of angle and angle/2.
	a := float32(math.Mod(angle, 4*math.Pi))
	mv := mgl32.Translate3D(0, 0, -distance)
	mv = mv.Mul4(mgl32.HomogRotate3DZ(a))
	mv = mv.Mul4(mgl32.HomogRotate3DY(a * 0.5))
	return mv
}

// NormalMatrix is the inverse transpose of the model-view matrix.
func NormalMatrix(modelView mgl32.Mat4) mgl32.Mat4 {
	return modelView.Inv().Transpose()
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
