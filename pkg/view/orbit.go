package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/pkg/geom"
	"github.com/leterax/go-fpsview/pkg/property"
	"github.com/leterax/go-fpsview/pkg/scene"
)

// OrbitClassID identifies the orbit controller
const OrbitClassID = "fpsview/Orbit"

const (
	orbitMinDistance     = 0.01
	orbitDefaultDistance = 10.0
	orbitDefaultAngle    = math.Pi / 4

	orbitRotateScale = 0.005
	orbitPanScale    = 0.001
	orbitZoomScale   = 0.01
	orbitWheelScale  = 0.001
)

const orbitStatus = "<b>Left-Click:</b> Rotate.  <b>Middle-Click:</b> Move X/Y.  <b>Right-Click/Mouse Wheel:</b>: Zoom.  <b>Shift</b>: More options."

// OrbitController keeps the camera on a sphere around a focal point
type OrbitController struct {
	FrameTracking

	distance   *property.Float
	yaw        *property.Angle
	pitch      *property.Float
	focalPoint *property.Vector
}

// NewOrbitController creates an uninitialized orbit controller
func NewOrbitController() *OrbitController {
	c := &OrbitController{
		FrameTracking: newFrameTracking(OrbitClassID),
		distance: property.NewFloat(property.Meta{
			Name: "Distance",
			Help: "Distance from the focal point.",
		}, orbitDefaultDistance),
		yaw: property.NewAngle(property.Meta{
			Name: "Yaw",
			Help: "Rotation of the camera around the Z (up) axis.",
		}, orbitDefaultAngle),
		pitch: property.NewFloat(property.Meta{
			Name: "Pitch",
			Help: "How much the camera is tipped downward.",
		}, orbitDefaultAngle),
		focalPoint: property.NewVector(property.Meta{
			Name: "Focal Point",
			Help: "The center point which the camera orbits.",
		}, geom.Zero),
	}
	c.distance.SetMin(orbitMinDistance)
	c.pitch.SetMax(PitchLimitHigh)
	c.pitch.SetMin(PitchLimitLow)

	c.addProperty(c.distance)
	c.addProperty(c.yaw)
	c.addProperty(c.pitch)
	c.addProperty(c.focalPoint)

	c.frameChanged = c.OnTargetFrameChanged
	return c
}

// Initialize creates the camera and runs OnInitialize
func (c *OrbitController) Initialize(ctx DisplayContext) {
	c.FrameTracking.Initialize(ctx)
	c.OnInitialize()
}

// OnInitialize switches to a perspective projection
func (c *OrbitController) OnInitialize() {
	c.camera.SetProjectionType(scene.Perspective)
}

// DistanceProperty is the focal point distance
func (c *OrbitController) DistanceProperty() *property.Float { return c.distance }

// YawProperty is the angle around the up axis
func (c *OrbitController) YawProperty() *property.Angle { return c.yaw }

// PitchProperty is the elevation above the ground plane
func (c *OrbitController) PitchProperty() *property.Float { return c.pitch }

// FocalPointProperty is the point the camera orbits around
func (c *OrbitController) FocalPointProperty() *property.Vector { return c.focalPoint }

// Reset returns to the default distance and angles around the origin
func (c *OrbitController) Reset() {
	c.distance.Set(orbitDefaultDistance)
	c.yaw.Set(orbitDefaultAngle)
	c.pitch.Set(orbitDefaultAngle)
	c.focalPoint.Set(geom.Zero)
	c.UpdateCamera()
}

// Mimic places the focal point in front of the source camera
func (c *OrbitController) Mimic(source Controller) {
	c.FrameTracking.Mimic(source)

	cam := source.Camera()
	if cam == nil {
		return
	}
	position := cam.Position()
	if orbit, ok := source.(*OrbitController); ok {
		c.distance.Set(orbit.distance.Float())
	} else {
		c.distance.Set(position.Len())
	}

	direction := cam.Orientation().Rotate(geom.NegUnitZ.Mul(c.distance.Float()))
	c.focalPoint.Set(position.Add(direction))
	c.calculatePitchYawFromPosition(position)
	c.UpdateCamera()
}

// LookAt moves the focal point to a world point, keeping the camera where
// it is
func (c *OrbitController) LookAt(point mgl64.Vec3) {
	position := c.camera.Position()
	local := c.targetNode.Orientation().Inverse().Rotate(point.Sub(c.targetNode.Position()))
	c.focalPoint.Set(local)
	c.distance.Set(local.Sub(position).Len())
	c.calculatePitchYawFromPosition(position)
	c.UpdateCamera()
}

func (c *OrbitController) calculatePitchYawFromPosition(position mgl64.Vec3) {
	diff := position.Sub(c.focalPoint.Vector())
	distance := diff.Len()
	if distance < 1e-9 {
		return
	}
	c.pitch.Set(math.Asin(mgl64.Clamp(diff.Z()/distance, -1, 1)))
	c.yaw.Set(math.Atan2(diff.Y(), diff.X()))
}

// Update follows the target frame and places the camera on the sphere
func (c *OrbitController) Update(dt, rosDt float64) {
	c.FrameTracking.Update(dt, rosDt)
	c.UpdateCamera()
}

// UpdateCamera places the camera on the sphere looking at the focal point
func (c *OrbitController) UpdateCamera() {
	distance := c.distance.Float()
	yaw := c.yaw.Float()
	pitch := c.pitch.Float()
	focal := c.focalPoint.Vector()

	position := mgl64.Vec3{
		distance*math.Cos(yaw)*math.Cos(pitch) + focal.X(),
		distance*math.Sin(yaw)*math.Cos(pitch) + focal.Y(),
		distance*math.Sin(pitch) + focal.Z(),
	}

	up := geom.UnitZ
	if c.InvertZ() {
		up = up.Mul(-1)
	}
	nodeOrientation := c.targetNode.DerivedOrientation()

	c.camera.SetPosition(position)
	c.camera.SetFixedYawAxis(true, nodeOrientation.Rotate(up))
	c.camera.SetDirection(nodeOrientation.Rotate(focal.Sub(position)))
	c.applyNearClip()
}

// Yaw turns the camera around the focal point about the up axis
func (c *OrbitController) Yaw(angle float64) {
	c.yaw.Set(c.yaw.Float() + angle)
}

// Pitch tilts the camera around the focal point, within the pitch limits
func (c *OrbitController) Pitch(angle float64) {
	c.pitch.Add(angle)
}

// Zoom moves the camera towards the focal point
func (c *OrbitController) Zoom(amount float64) {
	c.distance.Add(-amount)
}

// Move translates the focal point by a vector in camera-local axes
func (c *OrbitController) Move(x, y, z float64) {
	c.focalPoint.Add(c.camera.Orientation().Rotate(mgl64.Vec3{x, y, z}))
}

// OnTargetFrameChanged shifts the focal point so the view stays put in the
// world while the reference moves to the new frame's origin
func (c *OrbitController) OnTargetFrameChanged(oldPosition mgl64.Vec3, oldOrientation mgl64.Quat) {
	c.focalPoint.Add(oldPosition.Sub(c.referencePosition))
}

// HandleMouseEvent maps a pointer event onto the orbit properties
func (c *OrbitController) HandleMouseEvent(event MouseEvent) {
	c.SetStatus(orbitStatus)

	dx, dy := event.Delta()
	moved := event.Type == MouseMove

	pitchSign := 1.0
	if c.InvertZ() {
		pitchSign = -1
	}

	distance := c.distance.Float()
	switch {
	case event.Left() && !event.Shift():
		c.SetCursor(CursorRotate3D)
		c.Yaw(-float64(dx) * orbitRotateScale)
		c.Pitch(pitchSign * float64(dy) * orbitRotateScale)
	case event.Middle() || (event.Shift() && event.Left()):
		c.SetCursor(CursorMoveXY)
		c.Move(-float64(dx)*orbitPanScale*distance, float64(dy)*orbitPanScale*distance, 0)
	case event.Right():
		c.SetCursor(CursorZoom)
		c.Zoom(-float64(dy) * orbitZoomScale * distance)
	default:
		if event.Shift() {
			c.SetCursor(CursorMoveXY)
		} else {
			c.SetCursor(CursorRotate3D)
		}
	}

	if event.WheelDelta != 0 {
		c.Zoom(float64(event.WheelDelta) * orbitWheelScale * distance)
		moved = true
	}

	if moved {
		c.UpdateCamera()
		c.QueueRender()
	}
}
