package core

import (
	"context"
	"image"
	"regexp"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// declRE finds attribute and uniform declarations in shader source, which
// is how fakeContext "introspects" a linked program.
var declRE = regexp.MustCompile(`(?m)^\s*(attribute|uniform)\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*;`)

type fakeShader struct {
	stage    ShaderStage
	src      string
	compiled bool
	deleted  bool
}

type fakeProgram struct {
	shaders  []Shader
	linked   bool
	deleted  bool
	attribs  []string
	uniforms []string
}

type fakeTexture struct {
	width, height int
	pix           []byte
	uploads       int
	params        map[TextureParam]TextureValue
	mipmapped     bool
	deleted       bool
}

type fakeDraw struct {
	mode    DrawMode
	count   int
	texture TextureID
	program Program
}

// fakeContext is an in-memory Context that records what the renderer asks
// of it.
type fakeContext struct {
	next uint32

	shaders  map[Shader]*fakeShader
	programs map[Program]*fakeProgram
	buffers  map[Buffer][]float32
	indices  map[Buffer][]uint16
	deleted  map[Buffer]bool
	textures map[TextureID]*fakeTexture

	boundArray   Buffer
	boundElement Buffer
	boundTexture TextureID
	activeUnit   int
	program      Program

	attribPointers map[int]int // slot -> size
	uniformMats    map[UniformLocation]mgl32.Mat4
	uniformInts    map[UniformLocation]int
	enabled        map[Capability]bool
	depthFunc      DepthFunc
	clearColor     [4]float32
	clearDepth     float32
	clears         int
	draws          []fakeDraw

	width, height int

	// failure injection
	failCompile  map[ShaderStage]string
	failLink     string
	hide         map[string]bool
	activeLimit  int
	failShaders  bool
	failPrograms bool
	failBuffers  bool
	failTextures bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		shaders:        make(map[Shader]*fakeShader),
		programs:       make(map[Program]*fakeProgram),
		buffers:        make(map[Buffer][]float32),
		indices:        make(map[Buffer][]uint16),
		deleted:        make(map[Buffer]bool),
		textures:       make(map[TextureID]*fakeTexture),
		attribPointers: make(map[int]int),
		uniformMats:    make(map[UniformLocation]mgl32.Mat4),
		uniformInts:    make(map[UniformLocation]int),
		enabled:        make(map[Capability]bool),
		failCompile:    make(map[ShaderStage]string),
		hide:           make(map[string]bool),
		activeLimit:    -1,
		width:          640,
		height:         480,
	}
}

func (f *fakeContext) id() uint32 {
	f.next++
	return f.next
}

func (f *fakeContext) CreateShader(stage ShaderStage) Shader {
	if f.failShaders {
		return 0
	}
	s := Shader(f.id())
	f.shaders[s] = &fakeShader{stage: stage}
	return s
}

func (f *fakeContext) ShaderSource(s Shader, src string) { f.shaders[s].src = src }

func (f *fakeContext) CompileShader(s Shader) {
	sh := f.shaders[s]
	_, fail := f.failCompile[sh.stage]
	sh.compiled = !fail
}

func (f *fakeContext) ShaderCompiled(s Shader) bool { return f.shaders[s].compiled }

func (f *fakeContext) ShaderInfoLog(s Shader) string {
	return f.failCompile[f.shaders[s].stage] + "\x00"
}

func (f *fakeContext) DeleteShader(s Shader) { f.shaders[s].deleted = true }

func (f *fakeContext) CreateProgram() Program {
	if f.failPrograms {
		return 0
	}
	p := Program(f.id())
	f.programs[p] = &fakeProgram{}
	return p
}

func (f *fakeContext) AttachShader(p Program, s Shader) {
	f.programs[p].shaders = append(f.programs[p].shaders, s)
}

func (f *fakeContext) DetachShader(p Program, s Shader) {
	prog := f.programs[p]
	for i, x := range prog.shaders {
		if x == s {
			prog.shaders = append(prog.shaders[:i], prog.shaders[i+1:]...)
			return
		}
	}
}

func (f *fakeContext) LinkProgram(p Program) {
	prog := f.programs[p]
	if f.failLink != "" {
		return
	}
	seen := make(map[string]bool)
	for _, s := range prog.shaders {
		for _, m := range declRE.FindAllStringSubmatch(f.shaders[s].src, -1) {
			kind, name := m[1], m[2]
			if seen[name] || f.hide[name] {
				continue
			}
			seen[name] = true
			if kind == "attribute" {
				prog.attribs = append(prog.attribs, name)
			} else {
				prog.uniforms = append(prog.uniforms, name)
			}
		}
	}
	prog.linked = true
}

func (f *fakeContext) ProgramLinked(p Program) bool  { return f.programs[p].linked }
func (f *fakeContext) ProgramInfoLog(Program) string { return f.failLink }

func (f *fakeContext) ActiveAttributes(p Program) int { return len(f.programs[p].attribs) }

func (f *fakeContext) ActiveAttribute(p Program, i int) (ActiveInfo, bool) {
	if f.activeLimit >= 0 && i >= f.activeLimit {
		return ActiveInfo{}, false
	}
	return ActiveInfo{Name: f.programs[p].attribs[i], Size: 1}, true
}

func (f *fakeContext) ActiveUniforms(p Program) int { return len(f.programs[p].uniforms) }

func (f *fakeContext) ActiveUniform(p Program, i int) (ActiveInfo, bool) {
	if f.activeLimit >= 0 && i >= f.activeLimit {
		return ActiveInfo{}, false
	}
	return ActiveInfo{Name: f.programs[p].uniforms[i], Size: 1}, true
}

func (f *fakeContext) AttribLocation(p Program, name string) int {
	for i, n := range f.programs[p].attribs {
		if n == name {
			return i
		}
	}
	return -1
}

func (f *fakeContext) UniformLocation(p Program, name string) UniformLocation {
	for i, n := range f.programs[p].uniforms {
		if n == name {
			return UniformLocation(100 + i)
		}
	}
	return -1
}

func (f *fakeContext) UseProgram(p Program)    { f.program = p }
func (f *fakeContext) DeleteProgram(p Program) { f.programs[p].deleted = true }

func (f *fakeContext) CreateBuffer() Buffer {
	if f.failBuffers {
		return 0
	}
	return Buffer(f.id())
}

func (f *fakeContext) BindBuffer(target BufferTarget, b Buffer) {
	if target == ArrayBuffer {
		f.boundArray = b
	} else {
		f.boundElement = b
	}
}

func (f *fakeContext) BufferFloat32(_ BufferTarget, data []float32, _ BufferUsage) {
	f.buffers[f.boundArray] = append([]float32(nil), data...)
}

func (f *fakeContext) BufferUint16(_ BufferTarget, data []uint16, _ BufferUsage) {
	f.indices[f.boundElement] = append([]uint16(nil), data...)
}

func (f *fakeContext) DeleteBuffer(b Buffer) { f.deleted[b] = true }

func (f *fakeContext) VertexAttribPointer(index, size int, _ bool, _, _ int) {
	f.attribPointers[index] = size
}

func (f *fakeContext) EnableVertexAttribArray(int) {}

func (f *fakeContext) CreateTexture() TextureID {
	if f.failTextures {
		return 0
	}
	t := TextureID(f.id())
	f.textures[t] = &fakeTexture{params: make(map[TextureParam]TextureValue)}
	return t
}

func (f *fakeContext) ActiveTexture(unit int)  { f.activeUnit = unit }
func (f *fakeContext) BindTexture(t TextureID) { f.boundTexture = t }

func (f *fakeContext) TexImage2D(width, height int, pix []byte) {
	t := f.textures[f.boundTexture]
	t.width, t.height = width, height
	t.pix = append([]byte(nil), pix...)
	t.uploads++
}

func (f *fakeContext) TexParameter(param TextureParam, value TextureValue) {
	f.textures[f.boundTexture].params[param] = value
}

func (f *fakeContext) GenerateMipmap()           { f.textures[f.boundTexture].mipmapped = true }
func (f *fakeContext) DeleteTexture(t TextureID) { f.textures[t].deleted = true }

func (f *fakeContext) UniformMatrix4(loc UniformLocation, m mgl32.Mat4) { f.uniformMats[loc] = m }
func (f *fakeContext) Uniform1i(loc UniformLocation, v int)             { f.uniformInts[loc] = v }

func (f *fakeContext) DrawingBufferSize() (int, int) { return f.width, f.height }
func (f *fakeContext) Viewport(_, _, _, _ int)       {}
func (f *fakeContext) ClearColor(r, g, b, a float32) { f.clearColor = [4]float32{r, g, b, a} }
func (f *fakeContext) ClearDepth(d float32)          { f.clearDepth = d }
func (f *fakeContext) Clear(ClearMask)               { f.clears++ }
func (f *fakeContext) Enable(c Capability)           { f.enabled[c] = true }
func (f *fakeContext) DepthFunc(fn DepthFunc)        { f.depthFunc = fn }

func (f *fakeContext) DrawElements(mode DrawMode, count, _ int) {
	f.draws = append(f.draws, fakeDraw{mode: mode, count: count, texture: f.boundTexture, program: f.program})
}

// uniform returns the location the fake assigned to name in p.
func (f *fakeContext) uniform(p Program, name string) UniformLocation {
	return f.UniformLocation(p, name)
}

// fakeImages serves solid images keyed by source. Sources listed in gate
// block until the gate channel is closed.
type fakeImages struct {
	mu     sync.Mutex
	images map[string]image.Image
	gate   chan struct{}
	calls  int
}

func newFakeImages() *fakeImages {
	return &fakeImages{images: make(map[string]image.Image)}
}

func (fi *fakeImages) add(source string, w, h int) {
	fi.images[source] = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (fi *fakeImages) Decode(ctx context.Context, source string) (image.Image, error) {
	fi.mu.Lock()
	fi.calls++
	gate := fi.gate
	img, ok := fi.images[source]
	fi.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.Errorf("no image %q", source)
	}
	return img, nil
}
