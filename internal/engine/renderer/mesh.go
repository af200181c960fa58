package renderer

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/engine/scene"
)

// vertex is the interleaved layout of the mesh program. Joint indices
// travel as floats; the shader converts them back.
type vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Joints   [4]float32
	Weights  [4]float32
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	texture       uint32

	// cpuSkinned meshes have more joints than the shader palette and
	// are re-uploaded deformed every frame.
	cpuSkinned bool
}

// vertices interleaves m with the given positions and normals.
func vertices(m *scene.Mesh, positions, normals [][3]float32) []vertex {
	out := make([]vertex, len(positions))
	for i, p := range positions {
		out[i].Position = p
		if i < len(normals) {
			out[i].Normal = normals[i]
		}
		if i < len(m.TexCoords) {
			out[i].TexCoord = m.TexCoords[i]
		}
		if i < len(m.Joints) && i < len(m.Weights) {
			j := m.Joints[i]
			out[i].Joints = [4]float32{float32(j[0]), float32(j[1]), float32(j[2]), float32(j[3])}
			out[i].Weights = m.Weights[i]
		}
	}
	return out
}

// upload returns the GPU copy of m, creating it on first use. Empty
// meshes yield nil and are skipped.
func (r *Renderer) upload(m *scene.Mesh) *gpuMesh {
	if g, ok := r.meshes[m]; ok {
		return g
	}
	if len(m.Positions) == 0 || len(m.Indices) == 0 {
		r.meshes[m] = nil
		return nil
	}

	verts := vertices(m, m.Positions, m.Normals)

	g := &gpuMesh{
		indexCount: int32(len(m.Indices)),
		cpuSkinned: m.Skinned() && len(m.Skin.Joints) > scene.MaxJoints,
	}
	usage := uint32(gl.STATIC_DRAW)
	if g.cpuSkinned {
		usage = gl.DYNAMIC_DRAW
	}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	stride := int(unsafe.Sizeof(vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*stride, unsafe.Pointer(&verts[0]), usage)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(stride), 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(stride), 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(stride), 6*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, int32(stride), 8*4)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, int32(stride), 12*4)
	gl.EnableVertexAttribArray(4)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	if m.HasTexture() {
		g.texture = r.uploadTexture(m.Texture)
	}

	r.meshes[m] = g
	r.log.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int32("indices", g.indexCount),
		zap.Bool("textured", g.texture != 0),
		zap.Bool("skinned", m.Skinned()),
		zap.Bool("cpu_skinned", g.cpuSkinned),
	)
	return g
}

// deform rewrites the vertex buffer of a CPU-skinned mesh with positions
// moved by palette into world space.
func (r *Renderer) deform(g *gpuMesh, m *scene.Mesh, palette []mgl32.Mat4, world mgl32.Mat4) {
	positions, normals := m.Deform(palette, world)
	verts := vertices(m, positions, normals)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*int(unsafe.Sizeof(vertex{})), unsafe.Pointer(&verts[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// uploadTexture shares one GL texture between meshes using the same image.
func (r *Renderer) uploadTexture(img *image.RGBA) uint32 {
	if id, ok := r.textures[img]; ok {
		return id
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	r.textures[img] = id
	return id
}

// Release frees the GPU copy of m. Its texture stays cached while other
// meshes may share it.
func (r *Renderer) Release(m *scene.Mesh) {
	g, ok := r.meshes[m]
	delete(r.meshes, m)
	if !ok || g == nil {
		return
	}
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	gl.DeleteVertexArrays(1, &g.vao)
}
