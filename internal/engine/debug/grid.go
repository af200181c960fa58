// Package debug provides helper geometry and capture utilities.
package debug

import (
	"github.com/Faultbox/armview/internal/engine/scene"
)

// Grid describes a square floor grid on the XZ plane centred at the origin.
type Grid struct {
	Size        float32
	Divisions   int
	CenterColor scene.Color
	Color       scene.Color
}

// Lines returns line-list vertices: Divisions+1 lines along each axis.
// The lines through the origin use CenterColor.
func (g Grid) Lines() []scene.ColorVertex {
	if g.Divisions <= 0 || g.Size <= 0 {
		return nil
	}

	step := g.Size / float32(g.Divisions)
	half := g.Size / 2
	center := g.Divisions / 2

	vertices := make([]scene.ColorVertex, 0, (g.Divisions+1)*4)
	for i := 0; i <= g.Divisions; i++ {
		k := -half + float32(i)*step

		c := g.Color
		if i == center && g.Divisions%2 == 0 {
			c = g.CenterColor
		}

		vertices = append(vertices,
			scene.ColorVertex{X: -half, Y: 0, Z: k, R: c[0], G: c[1], B: c[2]},
			scene.ColorVertex{X: half, Y: 0, Z: k, R: c[0], G: c[1], B: c[2]},
			scene.ColorVertex{X: k, Y: 0, Z: -half, R: c[0], G: c[1], B: c[2]},
			scene.ColorVertex{X: k, Y: 0, Z: half, R: c[0], G: c[1], B: c[2]},
		)
	}
	return vertices
}
