package core

import "github.com/pkg/errors"

const (
	cubeFaces      = 6
	vertsPerFace   = 4
	indicesPerFace = 6

	CubeVertexCount = cubeFaces * vertsPerFace
	CubeIndexCount  = cubeFaces * indicesPerFace
)

// cubeFace is one side of the unit cube: its four corners in
// counter-clockwise order seen from outside, and its outward normal.
type cubeFace struct {
	corners [vertsPerFace][3]float32
	normal  [3]float32
}

var cubeFaceData = [cubeFaces]cubeFace{
	// front
	{[4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}, [3]float32{0, 0, 1}},
	// back
	{[4][3]float32{{-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {1, -1, -1}}, [3]float32{0, 0, -1}},
	// top
	{[4][3]float32{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}}, [3]float32{0, 1, 0}},
	// bottom
	{[4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, [3]float32{0, -1, 0}},
	// right
	{[4][3]float32{{1, -1, -1}, {1, 1, -1}, {1, 1, 1}, {1, -1, 1}}, [3]float32{1, 0, 0}},
	// left
	{[4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}, [3]float32{-1, 0, 0}},
}

var faceUVs = [vertsPerFace][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// FacePalette is the per-face RGBA color cycle of the flat variant.
var FacePalette = [cubeFaces][4]float32{
	{1, 1, 1, 1}, // white
	{1, 0, 0, 1}, // red
	{0, 1, 0, 1}, // green
	{0, 0, 1, 1}, // blue
	{1, 1, 0, 1}, // yellow
	{1, 0, 1, 1}, // purple
}

// Mesh is the CPU-side vertex data of the cube. Normals and TexCoords are
// empty for the flat variant; Colors is empty for the textured one.
type Mesh struct {
	Positions []float32
	Normals   []float32
	TexCoords []float32
	Colors    []float32
	Indices   []uint16
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// CubeMesh generates the 24-vertex, 36-index cube for the variant.
func CubeMesh(v Variant) *Mesh {
	m := &Mesh{
		Positions: make([]float32, 0, CubeVertexCount*3),
		Indices:   make([]uint16, 0, CubeIndexCount),
	}
	for f, face := range cubeFaceData {
		for c, corner := range face.corners {
			m.Positions = append(m.Positions, corner[:]...)
			if v.Lit() {
				m.Normals = append(m.Normals, face.normal[:]...)
			}
			if v.Textured() {
				m.TexCoords = append(m.TexCoords, faceUVs[c][:]...)
			} else {
				m.Colors = append(m.Colors, FacePalette[f%len(FacePalette)][:]...)
			}
		}
		base := uint16(f * vertsPerFace)
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	return m
}

// GeometryBuffers holds the uploaded cube. Normal is zero for the flat
// variant; exactly one of TexCoord and Color is set.
type GeometryBuffers struct {
	ctx Context

	Position Buffer
	Normal   Buffer
	TexCoord Buffer
	Color    Buffer
	Indices  Buffer

	VertexCount int
	IndexCount  int
}

// BuildCubeGeometry uploads the cube mesh of the variant with static usage.
func BuildCubeGeometry(ctx Context, v Variant) (*GeometryBuffers, error) {
	m := CubeMesh(v)
	g := &GeometryBuffers{
		ctx:         ctx,
		VertexCount: m.VertexCount(),
		IndexCount:  len(m.Indices),
	}
	var err error
	if g.Position, err = uploadFloats(ctx, m.Positions); err != nil {
		return nil, errors.Wrap(err, "position buffer")
	}
	if len(m.Normals) > 0 {
		if g.Normal, err = uploadFloats(ctx, m.Normals); err != nil {
			g.Delete()
			return nil, errors.Wrap(err, "normal buffer")
		}
	}
	if len(m.TexCoords) > 0 {
		if g.TexCoord, err = uploadFloats(ctx, m.TexCoords); err != nil {
			g.Delete()
			return nil, errors.Wrap(err, "texcoord buffer")
		}
	}
	if len(m.Colors) > 0 {
		if g.Color, err = uploadFloats(ctx, m.Colors); err != nil {
			g.Delete()
			return nil, errors.Wrap(err, "color buffer")
		}
	}

	g.Indices = ctx.CreateBuffer()
	if g.Indices == 0 {
		g.Delete()
		return nil, errors.New("index buffer: create failed")
	}
	ctx.BindBuffer(ElementArrayBuffer, g.Indices)
	ctx.BufferUint16(ElementArrayBuffer, m.Indices, StaticDraw)

	Logger().Info("geometry built", "variant", v.Name(), "vertices", g.VertexCount, "indices", g.IndexCount)
	return g, nil
}

func uploadFloats(ctx Context, data []float32) (Buffer, error) {
	b := ctx.CreateBuffer()
	if b == 0 {
		return 0, errors.New("create failed")
	}
	ctx.BindBuffer(ArrayBuffer, b)
	ctx.BufferFloat32(ArrayBuffer, data, StaticDraw)
	return b, nil
}

// attribBinding pairs a shader attribute with the buffer feeding it.
type attribBinding struct {
	name   string
	buffer Buffer
	size   int
}

// bindings lists the vertex inputs present in g: position always, normal
// when lit, then texcoord or color.
func (g *GeometryBuffers) bindings() []attribBinding {
	b := []attribBinding{{AttrPosition, g.Position, 3}}
	if g.Normal != 0 {
		b = append(b, attribBinding{AttrNormal, g.Normal, 3})
	}
	if g.TexCoord != 0 {
		b = append(b, attribBinding{AttrTexCoord, g.TexCoord, 2})
	}
	if g.Color != 0 {
		b = append(b, attribBinding{AttrColor, g.Color, 4})
	}
	return b
}

// Delete releases every buffer.
func (g *GeometryBuffers) Delete() {
	for _, b := range []*Buffer{&g.Position, &g.Normal, &g.TexCoord, &g.Color, &g.Indices} {
		if *b != 0 {
			g.ctx.DeleteBuffer(*b)
			*b = 0
		}
	}
}
