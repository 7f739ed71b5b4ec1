//go:build js && wasm

// Package webgl implements core.Context on a browser WebGL 1 context.
package webgl

import (
	"syscall/js"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/toxichemicals/GO/texcube/core"
)

// fragmentPreamble sets the precision WebGL 1 fragment shaders must declare
// and maps fragColor onto the built-in output. Vertex shaders need nothing.
const fragmentPreamble = "precision mediump float;\n" +
	"#define fragColor gl_FragColor\n"

type glConsts struct {
	vertexShader       int
	fragmentShader     int
	compileStatus      int
	linkStatus         int
	activeAttributes   int
	activeUniforms     int
	arrayBuffer        int
	elementArrayBuffer int
	staticDraw         int
	floatType          int
	unsignedShort      int
	unsignedByte       int
	texture2D          int
	texture0           int
	rgba               int
	textureWrapS       int
	textureWrapT       int
	textureMinFilter   int
	textureMagFilter   int
	clampToEdge        int
	repeat             int
	linear             int
	nearest            int
	linearMipmapLinear int
	colorBufferBit     int
	depthBufferBit     int
	depthTest          int
	lequal             int
	less               int
	triangles          int
}

// Context is a core.Context backed by a WebGLRenderingContext. Handles are
// small integers indexing tables of JS objects.
type Context struct {
	gl     js.Value
	consts glConsts

	next     uint32
	shaders  map[core.Shader]js.Value
	stages   map[core.Shader]core.ShaderStage
	programs map[core.Program]js.Value
	buffers  map[core.Buffer]js.Value
	textures map[core.TextureID]js.Value

	// uniforms maps issued locations back to WebGLUniformLocation objects.
	uniforms []js.Value
}

// New wraps gl, a "webgl" context obtained from a canvas. It fails with
// core.ErrContextUnavailable if gl is null or undefined.
func New(gl js.Value) (*Context, error) {
	if gl.IsUndefined() || gl.IsNull() {
		return nil, errors.Wrap(core.ErrContextUnavailable, "webgl context is null")
	}
	c := &Context{
		gl:       gl,
		shaders:  make(map[core.Shader]js.Value),
		stages:   make(map[core.Shader]core.ShaderStage),
		programs: make(map[core.Program]js.Value),
		buffers:  make(map[core.Buffer]js.Value),
		textures: make(map[core.TextureID]js.Value),
		// location 0 is never issued so a zero UniformLocation stays invalid
		uniforms: []js.Value{js.Null()},
	}
	c.initConsts()
	return c, nil
}

func (c *Context) initConsts() {
	get := func(name string) int { return c.gl.Get(name).Int() }
	c.consts = glConsts{
		vertexShader:       get("VERTEX_SHADER"),
		fragmentShader:     get("FRAGMENT_SHADER"),
		compileStatus:      get("COMPILE_STATUS"),
		linkStatus:         get("LINK_STATUS"),
		activeAttributes:   get("ACTIVE_ATTRIBUTES"),
		activeUniforms:     get("ACTIVE_UNIFORMS"),
		arrayBuffer:        get("ARRAY_BUFFER"),
		elementArrayBuffer: get("ELEMENT_ARRAY_BUFFER"),
		staticDraw:         get("STATIC_DRAW"),
		floatType:          get("FLOAT"),
		unsignedShort:      get("UNSIGNED_SHORT"),
		unsignedByte:       get("UNSIGNED_BYTE"),
		texture2D:          get("TEXTURE_2D"),
		texture0:           get("TEXTURE0"),
		rgba:               get("RGBA"),
		textureWrapS:       get("TEXTURE_WRAP_S"),
		textureWrapT:       get("TEXTURE_WRAP_T"),
		textureMinFilter:   get("TEXTURE_MIN_FILTER"),
		textureMagFilter:   get("TEXTURE_MAG_FILTER"),
		clampToEdge:        get("CLAMP_TO_EDGE"),
		repeat:             get("REPEAT"),
		linear:             get("LINEAR"),
		nearest:            get("NEAREST"),
		linearMipmapLinear: get("LINEAR_MIPMAP_LINEAR"),
		colorBufferBit:     get("COLOR_BUFFER_BIT"),
		depthBufferBit:     get("DEPTH_BUFFER_BIT"),
		depthTest:          get("DEPTH_TEST"),
		lequal:             get("LEQUAL"),
		less:               get("LESS"),
		triangles:          get("TRIANGLES"),
	}
}

func (c *Context) id() uint32 {
	c.next++
	return c.next
}

func valid(v js.Value) bool { return !v.IsUndefined() && !v.IsNull() }

func (c *Context) CreateShader(stage core.ShaderStage) core.Shader {
	kind := c.consts.vertexShader
	if stage == core.FragmentStage {
		kind = c.consts.fragmentShader
	}
	v := c.gl.Call("createShader", kind)
	if !valid(v) {
		return 0
	}
	s := core.Shader(c.id())
	c.shaders[s] = v
	c.stages[s] = stage
	return s
}

func (c *Context) ShaderSource(s core.Shader, src string) {
	if c.stages[s] == core.FragmentStage {
		src = fragmentPreamble + src
	}
	c.gl.Call("shaderSource", c.shaders[s], src)
}

func (c *Context) CompileShader(s core.Shader) { c.gl.Call("compileShader", c.shaders[s]) }

func (c *Context) ShaderCompiled(s core.Shader) bool {
	return c.gl.Call("getShaderParameter", c.shaders[s], c.consts.compileStatus).Truthy()
}

func (c *Context) ShaderInfoLog(s core.Shader) string {
	return jsString(c.gl.Call("getShaderInfoLog", c.shaders[s]))
}

func (c *Context) DeleteShader(s core.Shader) {
	c.gl.Call("deleteShader", c.shaders[s])
	delete(c.shaders, s)
	delete(c.stages, s)
}

func (c *Context) CreateProgram() core.Program {
	v := c.gl.Call("createProgram")
	if !valid(v) {
		return 0
	}
	p := core.Program(c.id())
	c.programs[p] = v
	return p
}

func (c *Context) AttachShader(p core.Program, s core.Shader) {
	c.gl.Call("attachShader", c.programs[p], c.shaders[s])
}

func (c *Context) DetachShader(p core.Program, s core.Shader) {
	c.gl.Call("detachShader", c.programs[p], c.shaders[s])
}

func (c *Context) LinkProgram(p core.Program) { c.gl.Call("linkProgram", c.programs[p]) }

func (c *Context) ProgramLinked(p core.Program) bool {
	return c.gl.Call("getProgramParameter", c.programs[p], c.consts.linkStatus).Truthy()
}

func (c *Context) ProgramInfoLog(p core.Program) string {
	return jsString(c.gl.Call("getProgramInfoLog", c.programs[p]))
}

func (c *Context) ActiveAttributes(p core.Program) int {
	return c.gl.Call("getProgramParameter", c.programs[p], c.consts.activeAttributes).Int()
}

func (c *Context) ActiveAttribute(p core.Program, index int) (core.ActiveInfo, bool) {
	return activeInfo(c.gl.Call("getActiveAttrib", c.programs[p], index))
}

func (c *Context) ActiveUniforms(p core.Program) int {
	return c.gl.Call("getProgramParameter", c.programs[p], c.consts.activeUniforms).Int()
}

func (c *Context) ActiveUniform(p core.Program, index int) (core.ActiveInfo, bool) {
	return activeInfo(c.gl.Call("getActiveUniform", c.programs[p], index))
}

// activeInfo converts a WebGLActiveInfo; null means no record.
func activeInfo(v js.Value) (core.ActiveInfo, bool) {
	if !valid(v) {
		return core.ActiveInfo{}, false
	}
	return core.ActiveInfo{Name: v.Get("name").String(), Size: v.Get("size").Int()}, true
}

func (c *Context) AttribLocation(p core.Program, name string) int {
	return c.gl.Call("getAttribLocation", c.programs[p], name).Int()
}

func (c *Context) UniformLocation(p core.Program, name string) core.UniformLocation {
	v := c.gl.Call("getUniformLocation", c.programs[p], name)
	if !valid(v) {
		return -1
	}
	c.uniforms = append(c.uniforms, v)
	return core.UniformLocation(len(c.uniforms) - 1)
}

func (c *Context) uniform(loc core.UniformLocation) js.Value {
	if loc <= 0 || int(loc) >= len(c.uniforms) {
		return js.Null()
	}
	return c.uniforms[loc]
}

func (c *Context) UseProgram(p core.Program) { c.gl.Call("useProgram", c.programs[p]) }

func (c *Context) DeleteProgram(p core.Program) {
	c.gl.Call("deleteProgram", c.programs[p])
	delete(c.programs, p)
}

func (c *Context) CreateBuffer() core.Buffer {
	v := c.gl.Call("createBuffer")
	if !valid(v) {
		return 0
	}
	b := core.Buffer(c.id())
	c.buffers[b] = v
	return b
}

func (c *Context) BindBuffer(target core.BufferTarget, b core.Buffer) {
	v, ok := c.buffers[b]
	if !ok {
		v = js.Null()
	}
	c.gl.Call("bindBuffer", c.bufferTarget(target), v)
}

func (c *Context) BufferFloat32(target core.BufferTarget, data []float32, usage core.BufferUsage) {
	c.gl.Call("bufferData", c.bufferTarget(target), float32Array(data), c.consts.staticDraw)
}

func (c *Context) BufferUint16(target core.BufferTarget, data []uint16, usage core.BufferUsage) {
	c.gl.Call("bufferData", c.bufferTarget(target), uint16Array(data), c.consts.staticDraw)
}

func (c *Context) DeleteBuffer(b core.Buffer) {
	c.gl.Call("deleteBuffer", c.buffers[b])
	delete(c.buffers, b)
}

func (c *Context) VertexAttribPointer(index, size int, normalized bool, stride, offset int) {
	c.gl.Call("vertexAttribPointer", index, size, c.consts.floatType, normalized, stride, offset)
}

func (c *Context) EnableVertexAttribArray(index int) {
	c.gl.Call("enableVertexAttribArray", index)
}

func (c *Context) CreateTexture() core.TextureID {
	v := c.gl.Call("createTexture")
	if !valid(v) {
		return 0
	}
	t := core.TextureID(c.id())
	c.textures[t] = v
	return t
}

func (c *Context) ActiveTexture(unit int) {
	c.gl.Call("activeTexture", c.consts.texture0+unit)
}

func (c *Context) BindTexture(t core.TextureID) {
	v, ok := c.textures[t]
	if !ok {
		v = js.Null()
	}
	c.gl.Call("bindTexture", c.consts.texture2D, v)
}

func (c *Context) TexImage2D(width, height int, pix []byte) {
	c.gl.Call("texImage2D", c.consts.texture2D, 0, c.consts.rgba, width, height, 0,
		c.consts.rgba, c.consts.unsignedByte, uint8Array(pix))
}

func (c *Context) TexParameter(param core.TextureParam, value core.TextureValue) {
	c.gl.Call("texParameteri", c.consts.texture2D, c.textureParam(param), c.textureValue(value))
}

func (c *Context) GenerateMipmap() { c.gl.Call("generateMipmap", c.consts.texture2D) }

func (c *Context) DeleteTexture(t core.TextureID) {
	c.gl.Call("deleteTexture", c.textures[t])
	delete(c.textures, t)
}

func (c *Context) UniformMatrix4(loc core.UniformLocation, m mgl32.Mat4) {
	c.gl.Call("uniformMatrix4fv", c.uniform(loc), false, float32Array(m[:]))
}

func (c *Context) Uniform1i(loc core.UniformLocation, v int) {
	c.gl.Call("uniform1i", c.uniform(loc), v)
}

func (c *Context) DrawingBufferSize() (int, int) {
	return c.gl.Get("drawingBufferWidth").Int(), c.gl.Get("drawingBufferHeight").Int()
}

func (c *Context) Viewport(x, y, width, height int) {
	c.gl.Call("viewport", x, y, width, height)
}

func (c *Context) ClearColor(r, g, b, a float32) { c.gl.Call("clearColor", r, g, b, a) }
func (c *Context) ClearDepth(d float32)          { c.gl.Call("clearDepth", d) }

func (c *Context) Clear(mask core.ClearMask) {
	bits := 0
	if mask&core.ColorBufferBit != 0 {
		bits |= c.consts.colorBufferBit
	}
	if mask&core.DepthBufferBit != 0 {
		bits |= c.consts.depthBufferBit
	}
	c.gl.Call("clear", bits)
}

func (c *Context) Enable(capability core.Capability) {
	switch capability {
	case core.DepthTest:
		c.gl.Call("enable", c.consts.depthTest)
	}
}

func (c *Context) DepthFunc(f core.DepthFunc) {
	switch f {
	case core.LessEqual:
		c.gl.Call("depthFunc", c.consts.lequal)
	case core.Less:
		c.gl.Call("depthFunc", c.consts.less)
	}
}

func (c *Context) DrawElements(mode core.DrawMode, count, offset int) {
	c.gl.Call("drawElements", c.consts.triangles, count, c.consts.unsignedShort, offset)
}

func (c *Context) bufferTarget(t core.BufferTarget) int {
	if t == core.ElementArrayBuffer {
		return c.consts.elementArrayBuffer
	}
	return c.consts.arrayBuffer
}

func (c *Context) textureParam(p core.TextureParam) int {
	switch p {
	case core.TextureWrapS:
		return c.consts.textureWrapS
	case core.TextureWrapT:
		return c.consts.textureWrapT
	case core.TextureMinFilter:
		return c.consts.textureMinFilter
	}
	return c.consts.textureMagFilter
}

func (c *Context) textureValue(v core.TextureValue) int {
	switch v {
	case core.ClampToEdge:
		return c.consts.clampToEdge
	case core.Repeat:
		return c.consts.repeat
	case core.Nearest:
		return c.consts.nearest
	case core.LinearMipmapLinear:
		return c.consts.linearMipmapLinear
	}
	return c.consts.linear
}

func jsString(v js.Value) string {
	if !valid(v) {
		return ""
	}
	return v.String()
}

func uint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func float32Array(f []float32) js.Value {
	if len(f) == 0 {
		return js.Global().Get("Float32Array").New(0)
	}
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
	return js.Global().Get("Float32Array").New(uint8Array(bytes).Get("buffer"))
}

func uint16Array(u []uint16) js.Value {
	if len(u) == 0 {
		return js.Global().Get("Uint16Array").New(0)
	}
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&u[0])), len(u)*2)
	return js.Global().Get("Uint16Array").New(uint8Array(bytes).Get("buffer"))
}
