//go:build !js

// Package desktopgl implements core.Context on OpenGL 4.1 core profile
// through go-gl. A context must be current on the calling OS thread before
// New is called.
package desktopgl

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/toxichemicals/GO/texcube/core"
)

// Preambles map the GLSL ES 1.00 shader bodies onto GLSL 4.10 core.
const (
	vertexPreamble = "#version 410 core\n" +
		"#define attribute in\n" +
		"#define varying out\n"
	fragmentPreamble = "#version 410 core\n" +
		"#define varying in\n" +
		"#define texture2D texture\n" +
		"out vec4 fragColor;\n"
)

// Context is a core.Context backed by the current OpenGL context.
type Context struct {
	vao    uint32
	size   func() (width, height int)
	stages map[core.Shader]core.ShaderStage
}

// New loads the GL function pointers and binds the vertex array object that
// the core profile requires for attribute setup. size reports the current
// framebuffer size in pixels.
func New(size func() (width, height int)) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(core.ErrContextUnavailable, err.Error())
	}
	c := &Context{
		size:   size,
		stages: make(map[core.Shader]core.ShaderStage),
	}
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	core.Logger().Info("OpenGL context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return c, nil
}

// Release deletes the vertex array object.
func (c *Context) Release() {
	if c.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}

func (c *Context) CreateShader(stage core.ShaderStage) core.Shader {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == core.FragmentStage {
		kind = gl.FRAGMENT_SHADER
	}
	s := core.Shader(gl.CreateShader(kind))
	c.stages[s] = stage
	return s
}

func (c *Context) ShaderSource(s core.Shader, src string) {
	preamble := vertexPreamble
	if c.stages[s] == core.FragmentStage {
		preamble = fragmentPreamble
	}
	csources, free := gl.Strs(preamble + src + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (c *Context) CompileShader(s core.Shader) { gl.CompileShader(uint32(s)) }

func (c *Context) ShaderCompiled(s core.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (c *Context) ShaderInfoLog(s core.Shader) string {
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) DeleteShader(s core.Shader) {
	gl.DeleteShader(uint32(s))
	delete(c.stages, s)
}

func (c *Context) CreateProgram() core.Program { return core.Program(gl.CreateProgram()) }

func (c *Context) AttachShader(p core.Program, s core.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (c *Context) DetachShader(p core.Program, s core.Shader) {
	gl.DetachShader(uint32(p), uint32(s))
}

func (c *Context) LinkProgram(p core.Program) { gl.LinkProgram(uint32(p)) }

func (c *Context) ProgramLinked(p core.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (c *Context) ProgramInfoLog(p core.Program) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) ActiveAttributes(p core.Program) int {
	var n int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_ATTRIBUTES, &n)
	return int(n)
}

func (c *Context) ActiveAttribute(p core.Program, index int) (core.ActiveInfo, bool) {
	return activeInfo(uint32(p), index, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib)
}

func (c *Context) ActiveUniforms(p core.Program) int {
	var n int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORMS, &n)
	return int(n)
}

func (c *Context) ActiveUniform(p core.Program, index int) (core.ActiveInfo, bool) {
	return activeInfo(uint32(p), index, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform)
}

type getActiveFunc func(program, index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)

// activeInfo reads one attribute or uniform record. An empty name means the
// driver has no record at index.
func activeInfo(program uint32, index int, maxLengthParam uint32, get getActiveFunc) (core.ActiveInfo, bool) {
	var maxLength int32
	gl.GetProgramiv(program, maxLengthParam, &maxLength)
	if maxLength <= 0 {
		return core.ActiveInfo{}, false
	}
	name := make([]uint8, maxLength)
	var length, size int32
	var xtype uint32
	get(program, uint32(index), maxLength, &length, &size, &xtype, &name[0])
	if length <= 0 {
		return core.ActiveInfo{}, false
	}
	return core.ActiveInfo{Name: string(name[:length]), Size: int(size)}, true
}

func (c *Context) AttribLocation(p core.Program, name string) int {
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) UniformLocation(p core.Program, name string) core.UniformLocation {
	return core.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) UseProgram(p core.Program)    { gl.UseProgram(uint32(p)) }
func (c *Context) DeleteProgram(p core.Program) { gl.DeleteProgram(uint32(p)) }

func (c *Context) CreateBuffer() core.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return core.Buffer(b)
}

func (c *Context) BindBuffer(target core.BufferTarget, b core.Buffer) {
	gl.BindBuffer(bufferTarget(target), uint32(b))
}

func (c *Context) BufferFloat32(target core.BufferTarget, data []float32, usage core.BufferUsage) {
	gl.BufferData(bufferTarget(target), len(data)*4, gl.Ptr(data), bufferUsage(usage))
}

func (c *Context) BufferUint16(target core.BufferTarget, data []uint16, usage core.BufferUsage) {
	gl.BufferData(bufferTarget(target), len(data)*2, gl.Ptr(data), bufferUsage(usage))
}

func (c *Context) DeleteBuffer(b core.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (c *Context) VertexAttribPointer(index, size int, normalized bool, stride, offset int) {
	gl.VertexAttribPointer(uint32(index), int32(size), gl.FLOAT, normalized, int32(stride), gl.PtrOffset(offset))
}

func (c *Context) EnableVertexAttribArray(index int) { gl.EnableVertexAttribArray(uint32(index)) }

func (c *Context) CreateTexture() core.TextureID {
	var t uint32
	gl.GenTextures(1, &t)
	return core.TextureID(t)
}

func (c *Context) ActiveTexture(unit int) { gl.ActiveTexture(gl.TEXTURE0 + uint32(unit)) }

func (c *Context) BindTexture(t core.TextureID) { gl.BindTexture(gl.TEXTURE_2D, uint32(t)) }

func (c *Context) TexImage2D(width, height int, pix []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

func (c *Context) TexParameter(param core.TextureParam, value core.TextureValue) {
	gl.TexParameteri(gl.TEXTURE_2D, textureParam(param), textureValue(value))
}

func (c *Context) GenerateMipmap() { gl.GenerateMipmap(gl.TEXTURE_2D) }

func (c *Context) DeleteTexture(t core.TextureID) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (c *Context) UniformMatrix4(loc core.UniformLocation, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (c *Context) Uniform1i(loc core.UniformLocation, v int) { gl.Uniform1i(int32(loc), int32(v)) }

func (c *Context) DrawingBufferSize() (int, int) { return c.size() }

func (c *Context) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (c *Context) ClearDepth(d float32)          { gl.ClearDepth(float64(d)) }

func (c *Context) Clear(mask core.ClearMask) {
	var bits uint32
	if mask&core.ColorBufferBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&core.DepthBufferBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (c *Context) Enable(capability core.Capability) {
	switch capability {
	case core.DepthTest:
		gl.Enable(gl.DEPTH_TEST)
	}
}

func (c *Context) DepthFunc(f core.DepthFunc) {
	switch f {
	case core.LessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case core.Less:
		gl.DepthFunc(gl.LESS)
	}
}

func (c *Context) DrawElements(mode core.DrawMode, count, offset int) {
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_SHORT, gl.PtrOffset(offset))
}

func bufferTarget(t core.BufferTarget) uint32 {
	if t == core.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(core.BufferUsage) uint32 { return gl.STATIC_DRAW }

func textureParam(p core.TextureParam) uint32 {
	switch p {
	case core.TextureWrapS:
		return gl.TEXTURE_WRAP_S
	case core.TextureWrapT:
		return gl.TEXTURE_WRAP_T
	case core.TextureMinFilter:
		return gl.TEXTURE_MIN_FILTER
	}
	return gl.TEXTURE_MAG_FILTER
}

func textureValue(v core.TextureValue) int32 {
	switch v {
	case core.ClampToEdge:
		return gl.CLAMP_TO_EDGE
	case core.Repeat:
		return gl.REPEAT
	case core.Nearest:
		return gl.NEAREST
	case core.LinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}
