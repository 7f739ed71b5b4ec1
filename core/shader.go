package core

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ShaderProgram is a linked program together with the attribute slots and
// uniform locations discovered by introspection after linking.
type ShaderProgram struct {
	ctx      Context
	handle   Program
	attribs  map[string]int
	uniforms map[string]UniformLocation
}

// CompileAndLink compiles both stages, links them into a program and
// introspects its active attributes and uniforms.
func CompileAndLink(ctx Context, vertexSrc, fragmentSrc string) (*ShaderProgram, error) {
	vs, err := compileShader(ctx, VertexStage, vertexSrc)
	if err != nil {
		return nil, err
	}
	defer ctx.DeleteShader(vs)

	fs, err := compileShader(ctx, FragmentStage, fragmentSrc)
	if err != nil {
		return nil, err
	}
	defer ctx.DeleteShader(fs)

	program := ctx.CreateProgram()
	if program == 0 {
		return nil, errors.Wrap(ErrContextUnavailable, "create program")
	}
	ctx.AttachShader(program, vs)
	ctx.AttachShader(program, fs)
	ctx.LinkProgram(program)
	if !ctx.ProgramLinked(program) {
		log := strings.TrimRight(ctx.ProgramInfoLog(program), "\x00")
		ctx.DeleteProgram(program)
		return nil, &ShaderLinkError{Log: log}
	}
	ctx.DetachShader(program, vs)
	ctx.DetachShader(program, fs)

	sp := &ShaderProgram{
		ctx:      ctx,
		handle:   program,
		attribs:  make(map[string]int),
		uniforms: make(map[string]UniformLocation),
	}
	introspect(ctx.ActiveAttributes(program), func(i int) (ActiveInfo, bool) {
		return ctx.ActiveAttribute(program, i)
	}, func(name string) {
		sp.attribs[name] = ctx.AttribLocation(program, name)
	})
	introspect(ctx.ActiveUniforms(program), func(i int) (ActiveInfo, bool) {
		return ctx.ActiveUniform(program, i)
	}, func(name string) {
		sp.uniforms[name] = ctx.UniformLocation(program, name)
	})

	Logger().Info("program linked", "attributes", len(sp.attribs), "uniforms", len(sp.uniforms))
	return sp, nil
}

// introspect walks count active records, stopping early at the first index
// that yields no info.
func introspect(count int, active func(int) (ActiveInfo, bool), record func(string)) {
	for i := 0; i < count; i++ {
		info, ok := active(i)
		if !ok {
			break
		}
		record(info.Name)
	}
}

func compileShader(ctx Context, stage ShaderStage, src string) (Shader, error) {
	s := ctx.CreateShader(stage)
	if s == 0 {
		// WebGL returns null here once the context is lost.
		return 0, errors.Wrapf(ErrContextUnavailable, "create %s shader", stage)
	}
	ctx.ShaderSource(s, src)
	ctx.CompileShader(s)
	if !ctx.ShaderCompiled(s) {
		log := strings.TrimRight(ctx.ShaderInfoLog(s), "\x00")
		ctx.DeleteShader(s)
		return 0, &ShaderCompileError{Stage: stage, Log: log}
	}
	return s, nil
}

// Handle returns the backend program handle.
func (sp *ShaderProgram) Handle() Program { return sp.handle }

// Attribute returns the slot of an active attribute.
func (sp *ShaderProgram) Attribute(name string) (int, error) {
	idx, ok := sp.attribs[name]
	if !ok {
		return 0, &UnknownBindingError{Kind: "attribute", Name: name}
	}
	return idx, nil
}

// Uniform returns the location of an active uniform.
func (sp *ShaderProgram) Uniform(name string) (UniformLocation, error) {
	loc, ok := sp.uniforms[name]
	if !ok {
		return 0, &UnknownBindingError{Kind: "uniform", Name: name}
	}
	return loc, nil
}

// Attributes returns the sorted names of all active attributes.
func (sp *ShaderProgram) Attributes() []string { return sortedKeys(sp.attribs) }

// Uniforms returns the sorted names of all active uniforms.
func (sp *ShaderProgram) Uniforms() []string { return sortedKeys(sp.uniforms) }

// Delete releases the program object.
func (sp *ShaderProgram) Delete() {
	if sp.handle != 0 {
		sp.ctx.DeleteProgram(sp.handle)
		sp.handle = 0
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
