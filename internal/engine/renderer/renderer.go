// Package renderer draws the scene graph, helper lines and the button
// overlay with OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/engine/camera"
	"github.com/Faultbox/armview/internal/engine/scene"
	"github.com/Faultbox/armview/internal/engine/shader"
	"github.com/Faultbox/armview/internal/logger"
)

// Config holds renderer configuration. Sizes are drawable pixels.
type Config struct {
	Width  int
	Height int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	meshProgram  *shader.Program
	colorProgram *shader.Program

	meshes   map[*scene.Mesh]*gpuMesh
	textures map[*image.RGBA]uint32
	lines    *lineBuffer
	overlay  *lineBuffer
	palette  []mgl32.Mat4
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		log:      logger.Named("renderer"),
		meshes:   make(map[*scene.Mesh]*gpuMesh),
		textures: make(map[*image.RGBA]uint32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	var err error
	if r.meshProgram, err = shader.Compile("mesh", meshVertexShader, meshFragmentShader); err != nil {
		return nil, err
	}
	if r.colorProgram, err = shader.Compile("color", colorVertexShader, colorFragmentShader); err != nil {
		r.meshProgram.Delete()
		return nil, err
	}

	r.lines = newLineBuffer()
	r.overlay = newLineBuffer()
	r.Resize(cfg.Width, cfg.Height)

	return r, nil
}

// Close releases every GL object the renderer created.
func (r *Renderer) Close() {
	r.log.Info("closing renderer",
		zap.Int("meshes", len(r.meshes)),
		zap.Int("textures", len(r.textures)),
	)
	for m := range r.meshes {
		r.Release(m)
	}
	for img, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, img)
	}
	r.lines.delete()
	r.overlay.delete()
	r.meshProgram.Delete()
	r.colorProgram.Delete()
}

// Resize sets the viewport to the drawable size in pixels.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin clears the frame to the background colour.
func (r *Renderer) Begin(bg scene.Color) {
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawScene draws every visible mesh and the helper grid.
func (r *Renderer) DrawScene(s *scene.Scene, cam *camera.Perspective) {
	view := cam.View()
	proj := cam.Projection()

	gl.Enable(gl.DEPTH_TEST)

	p := r.meshProgram
	p.Use()
	p.SetMat4("uView", view)
	p.SetMat4("uProjection", proj)
	p.SetVec3("uAmbient", s.Ambient.Radiance())
	p.SetVec3("uSunDir", s.Sun.Direction())
	p.SetVec3("uSunColor", s.Sun.Radiance())
	p.SetInt("uTexture", 0)

	s.Draw(func(m *scene.Mesh, world mgl32.Mat4) {
		g := r.upload(m)
		if g == nil {
			return
		}
		model := world
		skinned := int32(0)
		if m.Skinned() {
			r.palette = m.Skin.JointMatrices(r.palette[:0])
			if g.cpuSkinned {
				r.deform(g, m, r.palette, world)
				model = mgl32.Ident4()
			} else {
				p.SetMat4Array("uJoints", r.palette)
				skinned = 1
			}
		}
		p.SetInt("uSkinned", skinned)
		p.SetMat4("uModel", model)
		p.SetVec4("uBaseColor", m.BaseColor)
		if g.texture != 0 {
			p.SetInt("uHasTexture", 1)
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, g.texture)
		} else {
			p.SetInt("uHasTexture", 0)
		}
		gl.BindVertexArray(g.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, 0)
	})
	gl.BindVertexArray(0)

	if len(s.Grid) > 0 {
		r.colorProgram.Use()
		r.colorProgram.SetMat4("uMVP", cam.ViewProjection())
		r.lines.draw(s.Grid, gl.LINES)
	}
}

// DrawOverlay draws screen-space triangles given in window points, with
// the origin at the top-left. pointW and pointH are the window size in
// points; HiDPI scaling is folded into the projection.
func (r *Renderer) DrawOverlay(verts []scene.ColorVertex, pointW, pointH float32) {
	if len(verts) == 0 || pointW <= 0 || pointH <= 0 {
		return
	}
	gl.Disable(gl.DEPTH_TEST)
	r.colorProgram.Use()
	r.colorProgram.SetMat4("uMVP", mgl32.Ortho(0, pointW, pointH, 0, -1, 1))
	r.overlay.draw(verts, gl.TRIANGLES)
	gl.Enable(gl.DEPTH_TEST)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}
