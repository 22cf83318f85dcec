package view

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/geom"
	"github.com/leterax/go-fpsview/pkg/property"
	"github.com/leterax/go-fpsview/pkg/scene"
)

// FPSClassID identifies the first-person controller
const FPSClassID = "fpsview/FPS"

// Pitch limits keep the camera off the poles where yaw is undefined
const (
	PitchLimitHigh = geom.HalfPi - 0.001
	PitchLimitLow  = -PitchLimitHigh
)

// Mouse scales of the first-person controller
const (
	fpsRotateScale = 0.005
	fpsPanScale    = 0.01
	fpsDollyScale  = 0.1
	fpsWheelScale  = 0.01
)

const (
	fpsStatusShift   = "<b>Left-Click:</b> Move X/Y.  <b>Right-Click:</b>: Move Z."
	fpsStatusDefault = "<b>Left-Click:</b> Rotate.  <b>Middle-Click:</b> Move X/Y.  <b>Right-Click:</b>: Zoom.  <b>Shift</b>: More options."
)

// DefaultFPSPosition is where Reset puts the camera
var DefaultFPSPosition = mgl64.Vec3{-10, 0, 1}

// robotToCamera maps the X-forward, Z-up world convention onto the camera's
// -Z forward, Y up convention.
var robotToCamera = geom.AngleAxis(-geom.HalfPi, geom.UnitY).Mul(geom.AngleAxis(-geom.HalfPi, geom.UnitZ))

// legacyOrientation is the fixed camera orientation of the legacy policy
var legacyOrientation = geom.AngleAxis(1.57, geom.UnitX).Mul(geom.AngleAxis(-1.57, geom.UnitY))

// OrientationPolicy selects how the FPS controller turns its angle
// properties into a camera orientation
type OrientationPolicy string

const (
	// PolicyYawPitch rotates by yaw about +Z, then pitch about +Y, then the
	// robot-to-camera basis
	PolicyYawPitch OrientationPolicy = "yaw-pitch"
	// PolicyLegacy ignores the angle properties and uses a fixed orientation
	PolicyLegacy OrientationPolicy = "legacy"
)

// ParseOrientationPolicy validates a policy name; empty selects PolicyYawPitch
func ParseOrientationPolicy(s string) (OrientationPolicy, error) {
	switch OrientationPolicy(s) {
	case "", PolicyYawPitch:
		return PolicyYawPitch, nil
	case PolicyLegacy:
		return PolicyLegacy, nil
	}
	return "", fmt.Errorf("unknown orientation policy %q", s)
}

// FPSController is a first-person camera anchored to a tracked frame. Its
// yaw, pitch and position properties drive the camera every frame; reset,
// mimic and look-at go the other way and derive the properties from a
// camera pose.
type FPSController struct {
	FrameTracking

	policy OrientationPolicy

	yaw      *property.Angle
	pitch    *property.Float
	roll     *property.Float
	position *property.Vector

	// Target orientation the angle properties were last synced against;
	// only a different sample is written back to them
	ingested    mgl64.Quat
	hasIngested bool
}

// NewFPSController creates an uninitialized controller
func NewFPSController(policy OrientationPolicy) *FPSController {
	if policy == "" {
		policy = PolicyYawPitch
	}
	c := &FPSController{
		FrameTracking: newFrameTracking(FPSClassID),
		policy:        policy,
		yaw: property.NewAngle(property.Meta{
			Name: "Yaw",
			Help: "Rotation of the camera around the Z (up) axis.",
		}, 0),
		pitch: property.NewFloat(property.Meta{
			Name: "Pitch",
			Help: "How much the camera is tipped downward.",
		}, 0),
		roll: property.NewFloat(property.Meta{
			Name: "Roll",
			Help: "How much the camera is rotated around X.",
		}, 0),
		position: property.NewVector(property.Meta{
			Name: "Position",
			Help: "Position of the camera.",
		}, DefaultFPSPosition),
	}
	c.pitch.SetMax(PitchLimitHigh)
	c.pitch.SetMin(-c.pitch.Max())

	c.addProperty(c.yaw)
	c.addProperty(c.pitch)
	c.addProperty(c.roll)
	c.addProperty(c.position)

	c.frameChanged = c.OnTargetFrameChanged
	return c
}

// Initialize creates the camera and runs OnInitialize
func (c *FPSController) Initialize(ctx DisplayContext) {
	c.FrameTracking.Initialize(ctx)
	c.OnInitialize()
}

// OnInitialize switches to a perspective projection. Z inversion has no
// meaning for a first-person view, so its property is hidden.
func (c *FPSController) OnInitialize() {
	c.camera.SetProjectionType(scene.Perspective)
	c.invertZ.Hide()
}

// Activate starts tracking and takes the target frame's current
// orientation as the baseline for ingestion, so a static target does not
// overwrite the angles set by reset or mimic
func (c *FPSController) Activate() {
	c.FrameTracking.Activate()
	c.hasIngested = false
	if orientation, ok := c.targetOrientation(); ok {
		c.ingested, c.hasIngested = orientation, true
	}
}

// Policy returns the orientation policy
func (c *FPSController) Policy() OrientationPolicy { return c.policy }

func (c *FPSController) YawProperty() *property.Angle       { return c.yaw }
func (c *FPSController) PitchProperty() *property.Float     { return c.pitch }
func (c *FPSController) RollProperty() *property.Float      { return c.roll }
func (c *FPSController) PositionProperty() *property.Vector { return c.position }

// Reset puts the camera at DefaultFPSPosition looking at the origin
func (c *FPSController) Reset() {
	c.ResetFirstPass()
	c.ResetSecondPass()
}

// ResetFirstPass places the camera and derives the properties from it. On
// its own it can leave the camera facing away from the origin after a
// switch from another controller.
func (c *FPSController) ResetFirstPass() {
	c.camera.SetPosition(DefaultFPSPosition)
	c.camera.LookAt(geom.Zero)
	c.SetPropertiesFromCamera(c.camera)
}

// ResetSecondPass applies the properties, re-points the camera at the
// origin and derives the properties again.
func (c *FPSController) ResetSecondPass() {
	c.UpdateCamera()
	c.camera.LookAt(geom.Zero)
	c.SetPropertiesFromCamera(c.camera)
}

// Mimic copies the target frame of source and takes over its camera pose
func (c *FPSController) Mimic(source Controller) {
	c.FrameTracking.Mimic(source)
	if cam := source.Camera(); cam != nil {
		c.SetPropertiesFromCamera(cam)
	}
}

// LookAt points the camera at a world point
func (c *FPSController) LookAt(point mgl64.Vec3) {
	c.camera.LookAt(point)
	c.SetPropertiesFromCamera(c.camera)
}

// SetPropertiesFromCamera derives yaw, pitch and position from the pose of
// cam relative to its parent.
func (c *FPSController) SetPropertiesFromCamera(cam *scene.Camera) {
	q := cam.Orientation().Mul(robotToCamera.Inverse())

	// The camera looks along -Z with +Y up, so its "roll" about Z is our
	// yaw and its "yaw" about Y is our pitch.
	yaw := geom.Roll(q)
	pitch := geom.Yaw(q)

	direction := q.Rotate(geom.NegUnitZ)
	if direction.Dot(geom.NegUnitZ) < 0 {
		// Same rotation, other (yaw, pitch) branch
		if pitch > geom.HalfPi {
			pitch -= geom.Pi
		} else if pitch < -geom.HalfPi {
			pitch += geom.Pi
		}

		yaw = -yaw

		if direction.Dot(geom.UnitX) < 0 {
			yaw -= geom.Pi
		} else {
			yaw += geom.Pi
		}
	}

	c.pitch.Set(pitch)
	c.yaw.Set(yaw)
	c.position.Set(cam.Position())
}

// Update follows the target frame and applies the properties to the
// camera. When a new target orientation arrived since the last sync, its
// roll, yaw and pitch are written to the properties as decomposed, without
// the branch correction of SetPropertiesFromCamera: tracked frames are
// assumed to stay on the forward facing branch. An unchanged target leaves
// the properties to the mouse, reset and queued commands.
func (c *FPSController) Update(dt, rosDt float64) {
	c.FrameTracking.Update(dt, rosDt)

	orientation, found := c.targetOrientation()
	c.targetNode.SetOrientation(c.referenceOrientation)

	if found && (!c.hasIngested || orientation != c.ingested) {
		c.roll.Set(geom.Roll(orientation))
		c.yaw.Set(geom.Yaw(orientation))
		c.pitch.Set(geom.Pitch(orientation))
		c.ingested, c.hasIngested = orientation, true
	}

	c.UpdateCamera()
}

func (c *FPSController) targetOrientation() (mgl64.Quat, bool) {
	src := c.transforms()
	if src == nil {
		return mgl64.Quat{}, false
	}
	_, orientation, found := src.Transform(c.TargetFrame(), time.Time{})
	return orientation, found
}

// UpdateCamera applies the properties to the camera
func (c *FPSController) UpdateCamera() {
	c.camera.SetOrientation(c.Orientation())
	c.camera.SetPosition(c.position.Vector())
	c.applyNearClip()
}

// Orientation returns the camera orientation described by the properties
// under the active policy. Roll is never applied.
func (c *FPSController) Orientation() mgl64.Quat {
	if c.policy == PolicyLegacy {
		return legacyOrientation
	}
	yaw := geom.AngleAxis(c.yaw.Float(), geom.UnitZ)
	pitch := geom.AngleAxis(c.pitch.Float(), geom.UnitY)
	return yaw.Mul(pitch).Mul(robotToCamera)
}

// Yaw turns the camera about the up axis, wrapping into [0, 2π)
func (c *FPSController) Yaw(angle float64) {
	c.yaw.Set(c.yaw.Float() + angle)
}

// Pitch tips the camera, saturating at the pitch limits
func (c *FPSController) Pitch(angle float64) {
	c.pitch.Add(angle)
}

// Roll is a no-op; roll is never applied to the camera
func (c *FPSController) Roll(angle float64) {}

// Move translates the camera by a vector given in camera-local axes
func (c *FPSController) Move(x, y, z float64) {
	c.position.Add(c.Orientation().Rotate(mgl64.Vec3{x, y, z}))
}

// OnTargetFrameChanged shifts the position so the camera stays where it was
// in the world while the reference moves to the new frame's origin. The new
// frame's orientation becomes the ingestion baseline.
func (c *FPSController) OnTargetFrameChanged(oldPosition mgl64.Vec3, oldOrientation mgl64.Quat) {
	c.position.Add(oldPosition.Sub(c.referencePosition))
	c.hasIngested = false
	if orientation, ok := c.targetOrientation(); ok {
		c.ingested, c.hasIngested = orientation, true
	}
}

// HandleMouseEvent maps a pointer event onto the properties
func (c *FPSController) HandleMouseEvent(event MouseEvent) {
	if event.Shift() {
		c.SetStatus(fpsStatusShift)
	} else {
		c.SetStatus(fpsStatusDefault)
	}

	dx, dy := event.Delta()
	moved := event.Type == MouseMove

	switch {
	case event.Left() && !event.Shift():
		c.SetCursor(CursorRotate3D)
		c.Yaw(-float64(dx) * fpsRotateScale)
		c.Pitch(float64(dy) * fpsRotateScale)
	case event.Middle() || (event.Shift() && event.Left()):
		c.SetCursor(CursorMoveXY)
		c.Move(float64(dx)*fpsPanScale, -float64(dy)*fpsPanScale, 0)
	case event.Right():
		c.SetCursor(CursorMoveZ)
		c.Move(0, 0, float64(dy)*fpsDollyScale)
	default:
		if event.Shift() {
			c.SetCursor(CursorMoveXY)
		} else {
			c.SetCursor(CursorRotate3D)
		}
	}

	if event.WheelDelta != 0 {
		c.Move(0, 0, -float64(event.WheelDelta)*fpsWheelScale)
		moved = true
	}

	if moved {
		c.log.Debug("camera moved",
			logger.F("yaw", c.yaw.Float()),
			logger.F("pitch", c.pitch.Float()),
			logger.F("position", c.position.Vector()))
		c.QueueRender()
	}
}
