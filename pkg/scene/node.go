package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is a positioned, oriented element of the scene graph. Cameras and
// child nodes attached to it inherit its world transform.
type Node struct {
	name        string
	position    mgl64.Vec3
	orientation mgl64.Quat

	parent   *Node
	children []*Node
	cameras  []*Camera
}

// NewNode creates a detached node at the origin
func NewNode(name string) *Node {
	return &Node{
		name:        name,
		orientation: mgl64.QuatIdent(),
	}
}

// Name returns the node name
func (n *Node) Name() string {
	return n.name
}

// CreateChild creates a node parented to n
func (n *Node) CreateChild(name string) *Node {
	child := NewNode(name)
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// Children returns the direct children of n
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the parent node, or nil for a root
func (n *Node) Parent() *Node {
	return n.parent
}

// Attach moves camera c under n, detaching it from any previous node
func (n *Node) Attach(c *Camera) {
	c.DetachFromParent()
	c.parent = n
	n.cameras = append(n.cameras, c)
}

// Cameras returns the cameras attached to n
func (n *Node) Cameras() []*Camera {
	return n.cameras
}

func (n *Node) detach(c *Camera) {
	for i, attached := range n.cameras {
		if attached == c {
			n.cameras = append(n.cameras[:i], n.cameras[i+1:]...)
			return
		}
	}
}

// Position returns the position relative to the parent
func (n *Node) Position() mgl64.Vec3 {
	return n.position
}

// SetPosition sets the position relative to the parent
func (n *Node) SetPosition(pos mgl64.Vec3) {
	n.position = pos
}

// Orientation returns the orientation relative to the parent
func (n *Node) Orientation() mgl64.Quat {
	return n.orientation
}

// SetOrientation sets the orientation relative to the parent
func (n *Node) SetOrientation(q mgl64.Quat) {
	n.orientation = q.Normalize()
}

// DerivedOrientation returns the world orientation
func (n *Node) DerivedOrientation() mgl64.Quat {
	if n.parent == nil {
		return n.orientation
	}
	return n.parent.DerivedOrientation().Mul(n.orientation)
}

// DerivedPosition returns the world position
func (n *Node) DerivedPosition() mgl64.Vec3 {
	if n.parent == nil {
		return n.position
	}
	return n.parent.DerivedOrientation().Rotate(n.position).Add(n.parent.DerivedPosition())
}

// ToWorld maps a point from n's local frame into world coordinates
func (n *Node) ToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return n.DerivedOrientation().Rotate(p).Add(n.DerivedPosition())
}
