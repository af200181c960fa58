package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/armview/internal/engine/scene"
)

// lineBuffer streams ColorVertex data into one dynamic VBO. Capacity
// grows to the largest batch seen.
type lineBuffer struct {
	vao, vbo uint32
	capacity int
}

func newLineBuffer() *lineBuffer {
	b := &lineBuffer{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	stride := int32(unsafe.Sizeof(scene.ColorVertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return b
}

func (b *lineBuffer) draw(verts []scene.ColorVertex, mode uint32) {
	if len(verts) == 0 {
		return
	}
	size := len(verts) * int(unsafe.Sizeof(scene.ColorVertex{}))

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if size > b.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&verts[0]), gl.DYNAMIC_DRAW)
		b.capacity = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&verts[0]))
	}
	gl.DrawArrays(mode, 0, int32(len(verts)))
	gl.BindVertexArray(0)
}

func (b *lineBuffer) delete() {
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
}
