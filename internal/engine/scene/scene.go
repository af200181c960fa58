package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/armview/internal/engine/lighting"
)

// ColorVertex is a position + colour vertex used for lines and overlays.
type ColorVertex struct {
	X, Y, Z float32
	R, G, B float32
}

// Scene is the world graph plus the static props drawn around it.
type Scene struct {
	Root       *Node
	Background Color
	Ambient    lighting.Ambient
	Sun        lighting.Sun

	// Grid holds line-list vertices for the floor grid.
	Grid []ColorVertex
}

// New creates an empty scene with a root node.
func New() *Scene {
	return &Scene{
		Root:    NewNode("world"),
		Ambient: lighting.Ambient{Color: [3]float32{1, 1, 1}, Intensity: 1},
	}
}

// Add attaches nodes to the world root.
func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

// FindByName searches the world graph.
func (s *Scene) FindByName(name string) *Node {
	return s.Root.FindByName(name)
}

// MeshCount returns the number of meshes reachable from the root.
func (s *Scene) MeshCount() int {
	count := 0
	s.Root.Walk(func(n *Node) bool {
		count += len(n.Meshes)
		return true
	})
	return count
}

// Draw calls fn for each mesh of each visible node with its world matrix.
func (s *Scene) Draw(fn func(mesh *Mesh, world mgl32.Mat4)) {
	s.Root.Traverse(mgl32.Ident4(), func(n *Node, world mgl32.Mat4) {
		for _, m := range n.Meshes {
			fn(m, world)
		}
	})
}
