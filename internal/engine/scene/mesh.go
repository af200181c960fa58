package scene

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is CPU-side triangle geometry with a single material.
// The renderer uploads it on first draw and keys GPU state by pointer.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Indices   []uint32

	// Joints and Weights hold up to four influences per vertex. They
	// only take effect when Skin is set.
	Joints  [][4]uint16
	Weights [][4]float32
	Skin    *Skin

	BaseColor [4]float32
	Texture   *image.RGBA
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasTexture reports whether the mesh can be drawn textured.
func (m *Mesh) HasTexture() bool {
	return m.Texture != nil && len(m.TexCoords) == len(m.Positions)
}

// ComputeNormals fills flat-accumulated vertex normals when the source
// carried none.
func (m *Mesh) ComputeNormals() {
	if len(m.Normals) == len(m.Positions) {
		return
	}
	normals := make([][3]float32, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(m.Positions) || int(b) >= len(m.Positions) || int(c) >= len(m.Positions) {
			continue
		}
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, idx := range []uint32{a, b, c} {
			normals[idx][0] += n[0]
			normals[idx][1] += n[1]
			normals[idx][2] += n[2]
		}
	}
	for i := range normals {
		normals[i] = normalize3(normals[i])
	}
	m.Normals = normals
}

// Bounds returns the axis-aligned bounds of the positions.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return
}

func normalize3(v [3]float32) [3]float32 {
	n := mgl32.Vec3(v)
	if n.Len() == 0 {
		return [3]float32{0, 1, 0}
	}
	return n.Normalize()
}
