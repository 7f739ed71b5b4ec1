package core

import "github.com/go-gl/mathgl/mgl32"

// Handles are backend-assigned object names. Zero means "no object", the
// same convention OpenGL uses for glGen*/glCreate* results.
type (
	Shader          uint32
	Program         uint32
	Buffer          uint32
	TextureID       uint32
	UniformLocation int32
)

// ShaderStage selects the pipeline stage a shader object compiles for.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type BufferUsage int

const (
	// StaticDraw marks data that is written once and drawn many times.
	StaticDraw BufferUsage = iota
)

type Capability int

const (
	DepthTest Capability = iota
)

type DepthFunc int

const (
	// LessEqual passes when the incoming depth is <= the stored depth.
	LessEqual DepthFunc = iota
	Less
)

type ClearMask int

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

type TextureParam int

const (
	TextureWrapS TextureParam = iota
	TextureWrapT
	TextureMinFilter
	TextureMagFilter
)

type TextureValue int

const (
	ClampToEdge TextureValue = iota
	Repeat
	Linear
	Nearest
	LinearMipmapLinear
)

type DrawMode int

const (
	Triangles DrawMode = iota
)

// ActiveInfo describes one active attribute or uniform of a linked program.
type ActiveInfo struct {
	Name string
	Size int
}

// Context is the slice of a GL-family rendering context the renderer needs.
// All methods must be called from the goroutine that owns the context.
//
// Texture methods act on the TEXTURE_2D target and RGBA8 data. Buffer
// uploads and vertex attributes are always float32 (or uint16 for indices).
type Context interface {
	CreateShader(stage ShaderStage) Shader
	// ShaderSource sets the source of a shader. Backends prefix it with
	// the preamble their shading-language dialect needs.
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	DetachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	ActiveAttributes(p Program) int
	// ActiveAttribute returns false when no info record exists at index.
	ActiveAttribute(p Program, index int) (ActiveInfo, bool)
	ActiveUniforms(p Program) int
	ActiveUniform(p Program, index int) (ActiveInfo, bool)
	AttribLocation(p Program, name string) int
	UniformLocation(p Program, name string) UniformLocation
	UseProgram(p Program)
	DeleteProgram(p Program)

	CreateBuffer() Buffer
	BindBuffer(target BufferTarget, b Buffer)
	BufferFloat32(target BufferTarget, data []float32, usage BufferUsage)
	BufferUint16(target BufferTarget, data []uint16, usage BufferUsage)
	DeleteBuffer(b Buffer)
	// VertexAttribPointer wires the bound ARRAY_BUFFER to a float attribute.
	VertexAttribPointer(index, size int, normalized bool, stride, offset int)
	EnableVertexAttribArray(index int)

	CreateTexture() TextureID
	ActiveTexture(unit int)
	BindTexture(t TextureID)
	TexImage2D(width, height int, pix []byte)
	TexParameter(param TextureParam, value TextureValue)
	GenerateMipmap()
	DeleteTexture(t TextureID)

	UniformMatrix4(loc UniformLocation, m mgl32.Mat4)
	Uniform1i(loc UniformLocation, v int)

	DrawingBufferSize() (width, height int)
	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	Clear(mask ClearMask)
	Enable(c Capability)
	DepthFunc(f DepthFunc)
	// DrawElements draws count uint16 indices from the bound element buffer.
	DrawElements(mode DrawMode, count, offset int)
}
