package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Attribute and uniform names shared by the shader sources and the renderer.
const (
	AttrPosition = "aVertexPosition"
	AttrNormal   = "aVertexNormal"
	AttrTexCoord = "aTextureCoord"
	AttrColor    = "aVertexColor"

	UniformModelView  = "uModelViewMatrix"
	UniformProjection = "uProjectionMatrix"
	UniformNormal     = "uNormalMatrix"
	UniformSampler    = "uSampler"
)

// Shader bodies are written once in GLSL ES 1.00 style. Fragment outputs go
// to fragColor; backend preambles map it (and attribute/varying/texture2D)
// onto their dialect.
const (
	litVertexSource = `
attribute vec4 aVertexPosition;
attribute vec3 aVertexNormal;
attribute vec2 aTextureCoord;

uniform mat4 uNormalMatrix;
uniform mat4 uModelViewMatrix;
uniform mat4 uProjectionMatrix;

varying highp vec2 vTextureCoord;
varying highp vec3 vLighting;

void main() {
	gl_Position = uProjectionMatrix * uModelViewMatrix * aVertexPosition;
	vTextureCoord = aTextureCoord;

	highp vec3 ambientLight = vec3(0.3, 0.3, 0.3);
	highp vec3 directionalLightColor = vec3(1.0, 1.0, 1.0);
	highp vec3 directionalVector = normalize(vec3(0.85, 0.8, 0.75));

	highp vec4 transformedNormal = uNormalMatrix * vec4(aVertexNormal, 0.0);
	highp float directional = max(dot(transformedNormal.xyz, directionalVector), 0.0);
	vLighting = ambientLight + (directionalLightColor * directional);
}
`

	litFragmentSource = `
varying highp vec2 vTextureCoord;
varying highp vec3 vLighting;

uniform sampler2D uSampler;

void main() {
	highp vec4 texelColor = texture2D(uSampler, vTextureCoord);
	fragColor = vec4(texelColor.rgb * vLighting, texelColor.a);
}
`

	flatVertexSource = `
attribute vec4 aVertexPosition;
attribute vec4 aVertexColor;

uniform mat4 uModelViewMatrix;
uniform mat4 uProjectionMatrix;

varying lowp vec4 vColor;

void main() {
	gl_Position = uProjectionMatrix * uModelViewMatrix * aVertexPosition;
	vColor = aVertexColor;
}
`

	flatFragmentSource = `
varying lowp vec4 vColor;

void main() {
	fragColor = vColor;
}
`
)

// Variant is one of the two mutually exclusive shader setups:
// [LitTextured] or [FlatColored]. The set is closed.
type Variant interface {
	Name() string
	VertexSource() string
	FragmentSource() string
	// Lit reports whether the variant carries normals and a normal matrix.
	Lit() bool
	// Textured reports whether the variant samples a texture (texcoords)
	// rather than reading per-vertex colors.
	Textured() bool
	// Attributes and Uniforms list every name the renderer binds.
	Attributes() []string
	Uniforms() []string

	applyUniforms(ctx Context, info *ProgramInfo, u *frameUniforms)
}

// frameUniforms holds the per-draw values a variant may upload.
type frameUniforms struct {
	projection mgl32.Mat4
	modelView  mgl32.Mat4
	normal     mgl32.Mat4
	texture    *Texture
}

// LitTextured samples a texture and applies one fixed directional light.
type LitTextured struct{}

func (LitTextured) Name() string           { return "lit-textured" }
func (LitTextured) VertexSource() string   { return litVertexSource }
func (LitTextured) FragmentSource() string { return litFragmentSource }
func (LitTextured) Lit() bool              { return true }
func (LitTextured) Textured() bool         { return true }

func (LitTextured) Attributes() []string {
	return []string{AttrPosition, AttrNormal, AttrTexCoord}
}

func (LitTextured) Uniforms() []string {
	return []string{UniformProjection, UniformModelView, UniformNormal, UniformSampler}
}

func (LitTextured) applyUniforms(ctx Context, info *ProgramInfo, u *frameUniforms) {
	ctx.UniformMatrix4(info.Uniforms[UniformProjection], u.projection)
	ctx.UniformMatrix4(info.Uniforms[UniformModelView], u.modelView)
	ctx.UniformMatrix4(info.Uniforms[UniformNormal], u.normal)

	ctx.ActiveTexture(0)
	ctx.BindTexture(u.texture.ID)
	ctx.Uniform1i(info.Uniforms[UniformSampler], 0)
}

// FlatColored draws each face in a constant color without lighting.
type FlatColored struct{}

func (FlatColored) Name() string           { return "flat-colored" }
func (FlatColored) VertexSource() string   { return flatVertexSource }
func (FlatColored) FragmentSource() string { return flatFragmentSource }
func (FlatColored) Lit() bool              { return false }
func (FlatColored) Textured() bool         { return false }

func (FlatColored) Attributes() []string {
	return []string{AttrPosition, AttrColor}
}

func (FlatColored) Uniforms() []string {
	return []string{UniformProjection, UniformModelView}
}

func (FlatColored) applyUniforms(ctx Context, info *ProgramInfo, u *frameUniforms) {
	ctx.UniformMatrix4(info.Uniforms[UniformProjection], u.projection)
	ctx.UniformMatrix4(info.Uniforms[UniformModelView], u.modelView)
}

// VariantByName maps a configuration name to its Variant.
func VariantByName(name string) (Variant, error) {
	switch name {
	case LitTextured{}.Name(), "":
		return LitTextured{}, nil
	case FlatColored{}.Name():
		return FlatColored{}, nil
	}
	return nil, errors.Errorf("unknown shader variant %q", name)
}

// ProgramInfo is the linked program of one variant with every location the
// renderer needs resolved up front. It is immutable after construction.
type ProgramInfo struct {
	Program  *ShaderProgram
	Variant  Variant
	Attribs  map[string]int
	Uniforms map[string]UniformLocation
}

// NewProgramInfo compiles the variant's shaders and resolves its bindings.
// A name missing from the linked program fails with *UnknownBindingError.
func NewProgramInfo(ctx Context, v Variant) (*ProgramInfo, error) {
	sp, err := CompileAndLink(ctx, v.VertexSource(), v.FragmentSource())
	if err != nil {
		return nil, errors.Wrapf(err, "%s program", v.Name())
	}
	info := &ProgramInfo{
		Program:  sp,
		Variant:  v,
		Attribs:  make(map[string]int),
		Uniforms: make(map[string]UniformLocation),
	}
	for _, name := range v.Attributes() {
		idx, err := sp.Attribute(name)
		if err != nil {
			sp.Delete()
			return nil, errors.Wrapf(err, "%s program", v.Name())
		}
		info.Attribs[name] = idx
	}
	for _, name := range v.Uniforms() {
		loc, err := sp.Uniform(name)
		if err != nil {
			sp.Delete()
			return nil, errors.Wrapf(err, "%s program", v.Name())
		}
		info.Uniforms[name] = loc
	}
	return info, nil
}
