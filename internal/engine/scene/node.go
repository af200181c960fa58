// Package scene provides the world scene graph: named nodes with local
// transforms, the meshes hanging off them and the static props around them.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is a scene-graph node. Rotation holds Euler angles in radians,
// applied in X, Y, Z order.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Visible  bool

	Meshes   []*Mesh
	Children []*Node
	parent   *Node
}

// NewNode creates a visible node with identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   mgl32.Vec3{1, 1, 1},
		Visible: true,
	}
}

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

// Remove detaches child from n. Reports whether it was a child.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// FindByName returns the first node named name in a depth-first, pre-order
// walk of the subtree rooted at n, including n itself.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// SetScale sets a uniform scale.
func (n *Node) SetScale(s float32) {
	n.Scale = mgl32.Vec3{s, s, s}
}

// LocalMatrix returns T * Rx * Ry * Rz * S.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := EulerMatrix(n.Rotation)
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix composes local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Traverse calls fn for every visible node with its world matrix. Hidden
// nodes hide their whole subtree.
func (n *Node) Traverse(parent mgl32.Mat4, fn func(node *Node, world mgl32.Mat4)) {
	if !n.Visible {
		return
	}
	world := parent.Mul4(n.LocalMatrix())
	fn(n, world)
	for _, c := range n.Children {
		c.Traverse(world, fn)
	}
}
