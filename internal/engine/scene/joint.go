package scene

// Joint is a resolved handle to one rotation axis of one node.
type Joint struct {
	node *Node
	axis Axis
}

// NewJoint returns a joint handle, or nil when node is nil.
func NewJoint(node *Node, axis Axis) *Joint {
	if node == nil {
		return nil
	}
	return &Joint{node: node, axis: axis}
}

// ResolveJoint looks up name under root once and returns its handle.
func ResolveJoint(root *Node, name string, axis Axis) *Joint {
	if root == nil {
		return nil
	}
	return NewJoint(root.FindByName(name), axis)
}

// Node returns the joint's node.
func (j *Joint) Node() *Node {
	return j.node
}

// Axis returns the joint's axis.
func (j *Joint) Axis() Axis {
	return j.axis
}

// Angle returns the current angle on the joint's axis.
func (j *Joint) Angle() float32 {
	return j.node.Rotation[j.axis]
}

// SetAngle sets the angle on the joint's axis.
func (j *Joint) SetAngle(rad float32) {
	j.node.Rotation[j.axis] = rad
}

// Rotate adds delta radians on the joint's axis.
func (j *Joint) Rotate(delta float64) {
	j.node.Rotation[j.axis] += float32(delta)
}
