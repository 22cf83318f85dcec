package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/pkg/geom"
)

// Camera is a viewpoint in the scene graph. It looks along its local -Z
// axis with +Y up; position and orientation are relative to the node it is
// attached to.
type Camera struct {
	name string

	// Pose relative to the parent node
	position    mgl64.Vec3
	orientation mgl64.Quat
	parent      *Node

	// LookAt keeps the camera's X axis perpendicular to yawAxis when fixed
	yawFixed bool
	yawAxis  mgl64.Vec3

	// Projection
	projection ProjectionType
	fov        float64 // radians
	near       float64
	far        float64
	orthoScale float64
	width      int
	height     int
}

// NewCamera creates a perspective camera at the origin looking along -Z
func NewCamera(name string) *Camera {
	return &Camera{
		name:        name,
		orientation: mgl64.QuatIdent(),
		yawFixed:    true,
		yawAxis:     geom.UnitY,
		projection:  Perspective,
		fov:         mgl64.DegToRad(DefaultFOV),
		near:        DefaultNearClip,
		far:         DefaultFarClip,
		orthoScale:  DefaultOrthoScale,
		width:       DefaultWidth,
		height:      DefaultHeight,
	}
}

// Name returns the camera name
func (c *Camera) Name() string {
	return c.name
}

// Parent returns the node the camera is attached to, or nil
func (c *Camera) Parent() *Node {
	return c.parent
}

// DetachFromParent removes the camera from its node
func (c *Camera) DetachFromParent() {
	if c.parent != nil {
		c.parent.detach(c)
		c.parent = nil
	}
}

// Position returns the camera position relative to its parent
func (c *Camera) Position() mgl64.Vec3 {
	return c.position
}

// SetPosition sets the camera position relative to its parent
func (c *Camera) SetPosition(pos mgl64.Vec3) {
	c.position = pos
}

// Orientation returns the camera orientation relative to its parent
func (c *Camera) Orientation() mgl64.Quat {
	return c.orientation
}

// SetOrientation sets the camera orientation relative to its parent
func (c *Camera) SetOrientation(q mgl64.Quat) {
	c.orientation = q.Normalize()
}

// SetFixedYawAxis makes LookAt keep the camera level with respect to axis
func (c *Camera) SetFixedYawAxis(fixed bool, axis mgl64.Vec3) {
	c.yawFixed = fixed
	c.yawAxis = axis.Normalize()
}

// DerivedPosition returns the camera position in world coordinates
func (c *Camera) DerivedPosition() mgl64.Vec3 {
	if c.parent == nil {
		return c.position
	}
	return c.parent.ToWorld(c.position)
}

// DerivedOrientation returns the camera orientation in world coordinates
func (c *Camera) DerivedOrientation() mgl64.Quat {
	if c.parent == nil {
		return c.orientation
	}
	return c.parent.DerivedOrientation().Mul(c.orientation)
}

// Direction returns the world-space viewing direction
func (c *Camera) Direction() mgl64.Vec3 {
	return c.DerivedOrientation().Rotate(geom.NegUnitZ)
}

// Up returns the world-space up vector
func (c *Camera) Up() mgl64.Vec3 {
	return c.DerivedOrientation().Rotate(geom.UnitY)
}

// Right returns the world-space right vector
func (c *Camera) Right() mgl64.Vec3 {
	return c.DerivedOrientation().Rotate(geom.UnitX)
}

// SetDirection points the camera along the world-space vector dir
func (c *Camera) SetDirection(dir mgl64.Vec3) {
	if dir.Len() < 1e-12 {
		return
	}
	zAdjust := dir.Normalize().Mul(-1)

	var target mgl64.Quat
	levelled := false
	if c.yawFixed {
		xAxis := c.yawAxis.Cross(zAdjust)
		if xAxis.Len() > 1e-9 {
			xAxis = xAxis.Normalize()
			yAxis := zAdjust.Cross(xAxis).Normalize()
			target = geom.FromAxes(xAxis, yAxis, zAdjust)
			levelled = true
		}
	}
	if !levelled {
		// Looking straight along the yaw axis: rotate by the shortest arc.
		current := c.DerivedOrientation()
		zAxis := current.Rotate(geom.UnitZ)
		target = mgl64.QuatBetweenVectors(zAxis, zAdjust).Mul(current)
	}

	if c.parent != nil {
		c.orientation = c.parent.DerivedOrientation().Inverse().Mul(target).Normalize()
	} else {
		c.orientation = target.Normalize()
	}
}

// LookAt makes the camera look at a world-space point
func (c *Camera) LookAt(target mgl64.Vec3) {
	c.SetDirection(target.Sub(c.DerivedPosition()))
}

// ProjectionType returns the projection mode
func (c *Camera) ProjectionType() ProjectionType {
	return c.projection
}

// SetProjectionType sets the projection mode
func (c *Camera) SetProjectionType(p ProjectionType) {
	c.projection = p
}

// NearClipDistance returns the near clip plane distance
func (c *Camera) NearClipDistance() float64 {
	return c.near
}

// SetNearClipDistance sets the near clip plane distance
func (c *Camera) SetNearClipDistance(d float64) {
	c.near = d
}

// FOV returns the vertical field of view in radians
func (c *Camera) FOV() float64 {
	return c.fov
}

// SetFOV sets the vertical field of view in radians, constrained to the
// supported range
func (c *Camera) SetFOV(fov float64) {
	c.fov = mgl64.Clamp(fov, mgl64.DegToRad(MinFOV), mgl64.DegToRad(MaxFOV))
}

// UpdateProjectionMatrix updates the projection with new viewport dimensions
func (c *Camera) UpdateProjectionMatrix(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width = width
	c.height = height
}

// ViewMatrix returns the current view matrix
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	p := c.DerivedPosition()
	view := c.DerivedOrientation().Inverse().Mat4().Mul4(mgl64.Translate3D(-p[0], -p[1], -p[2]))
	return geom.Mat4To32(view)
}

// ProjectionMatrix returns the current projection matrix
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	aspect := float64(c.width) / float64(c.height)
	if c.projection == Orthographic {
		hw := float64(c.width) * c.orthoScale / 2
		hh := float64(c.height) * c.orthoScale / 2
		return geom.Mat4To32(mgl64.Ortho(-hw, hw, -hh, hh, c.near, c.far))
	}
	return geom.Mat4To32(mgl64.Perspective(c.fov, aspect, c.near, c.far))
}
