package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxJoints is the joint palette size the mesh shader holds. Larger skins
// are deformed on the CPU.
const MaxJoints = 64

// Skin binds mesh vertices to joint nodes. InverseBind[i] takes model
// space into the bind-pose space of Joints[i].
type Skin struct {
	Name        string
	Joints      []*Node
	InverseBind []mgl32.Mat4
}

// JointMatrices appends world(joint) * inverseBind for every joint to dst.
func (s *Skin) JointMatrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	for i, j := range s.Joints {
		inv := mgl32.Ident4()
		if i < len(s.InverseBind) {
			inv = s.InverseBind[i]
		}
		dst = append(dst, j.WorldMatrix().Mul4(inv))
	}
	return dst
}

// Skinned reports whether the mesh carries a skin and per-vertex
// influences for every vertex.
func (m *Mesh) Skinned() bool {
	return m.Skin != nil &&
		len(m.Joints) == len(m.Positions) &&
		len(m.Weights) == len(m.Positions)
}

// SkinMatrix blends the palette for vertex i by its weights. A vertex with
// no usable weight gets fallback.
func (m *Mesh) SkinMatrix(i int, palette []mgl32.Mat4, fallback mgl32.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	var total float32
	for k := 0; k < 4; k++ {
		w := m.Weights[i][k]
		j := int(m.Joints[i][k])
		if w <= 0 || j >= len(palette) {
			continue
		}
		out = out.Add(palette[j].Mul(w))
		total += w
	}
	if total <= 0 {
		return fallback
	}
	return out.Mul(1 / total)
}

// Deform returns positions and normals moved by palette, in the space the
// palette maps into.
func (m *Mesh) Deform(palette []mgl32.Mat4, fallback mgl32.Mat4) (positions, normals [][3]float32) {
	positions = make([][3]float32, len(m.Positions))
	normals = make([][3]float32, len(m.Positions))
	for i, p := range m.Positions {
		s := m.SkinMatrix(i, palette, fallback)
		positions[i] = mgl32.TransformCoordinate(mgl32.Vec3(p), s)
		if i < len(m.Normals) {
			normals[i] = normalize3(s.Mat3().Mul3x1(mgl32.Vec3(m.Normals[i])))
		}
	}
	return positions, normals
}
