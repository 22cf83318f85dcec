package view

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/property"
	"github.com/leterax/go-fpsview/pkg/scene"
)

// FixedFrameToken is the target frame value that follows the display's
// fixed frame
const FixedFrameToken = "<Fixed Frame>"

// FrameTracking keeps the controller camera attached to a scene node that
// follows the position of a target frame.
type FrameTracking struct {
	Base

	targetFrame *property.String
	targetNode  *scene.Node

	referencePosition    mgl64.Vec3
	referenceOrientation mgl64.Quat

	active bool

	// frameChanged is run with the previous reference pose after the target
	// frame property changes on an active controller
	frameChanged func(oldPosition mgl64.Vec3, oldOrientation mgl64.Quat)
}

func newFrameTracking(classID string) FrameTracking {
	t := FrameTracking{
		Base: newBase(classID),
		targetFrame: property.NewString(property.Meta{
			Name: "Target Frame",
			Help: "TF frame whose motion this view will follow.",
		}, FixedFrameToken),
		referenceOrientation: mgl64.QuatIdent(),
	}
	t.addProperty(t.targetFrame)
	return t
}

// Initialize creates the camera and the target scene node
func (t *FrameTracking) Initialize(ctx DisplayContext) {
	t.Base.Initialize(ctx)

	t.targetNode = scene.NewNode("target-" + t.camera.Name())
	t.targetNode.Attach(t.camera)

	t.targetFrame.OnChanged(func() {
		if t.active {
			t.updateTargetFrame()
		}
	})
}

// Activate starts following target frame changes and snaps the node to the
// current reference pose
func (t *FrameTracking) Activate() {
	t.active = true
	t.updateTargetSceneNode()
}

// Deactivate stops reacting to target frame changes
func (t *FrameTracking) Deactivate() {
	t.active = false
}

// Update moves the target node to the latest reference pose
func (t *FrameTracking) Update(dt, rosDt float64) {
	t.updateTargetSceneNode()
}

// Mimic copies the target frame of source when it has one
func (t *FrameTracking) Mimic(source Controller) {
	for _, p := range source.Properties() {
		if p.Meta().Name != t.targetFrame.Meta().Name {
			continue
		}
		if frame, ok := p.Value().(string); ok {
			t.targetFrame.Set(frame)
		}
		return
	}
}

// TargetFrame resolves the target frame property to a frame name
func (t *FrameTracking) TargetFrame() string {
	frame := t.targetFrame.String()
	if frame == FixedFrameToken && t.ctx != nil {
		return t.ctx.FixedFrame()
	}
	return frame
}

// TargetFrameProperty exposes the target frame property
func (t *FrameTracking) TargetFrameProperty() *property.String { return t.targetFrame }

// TargetNode returns the node the camera is attached to
func (t *FrameTracking) TargetNode() *scene.Node { return t.targetNode }

// ReferencePosition returns the last known target frame position
func (t *FrameTracking) ReferencePosition() mgl64.Vec3 { return t.referencePosition }

// ReferenceOrientation returns the last known target frame orientation
func (t *FrameTracking) ReferenceOrientation() mgl64.Quat { return t.referenceOrientation }

// getNewTransform refreshes the reference pose and reports whether the
// target frame was found
func (t *FrameTracking) getNewTransform() bool {
	src := t.transforms()
	if src == nil {
		return false
	}
	pos, ori, ok := src.Transform(t.TargetFrame(), time.Time{})
	if !ok {
		return false
	}
	t.referencePosition = pos
	t.referenceOrientation = ori
	return true
}

func (t *FrameTracking) updateTargetSceneNode() {
	if t.targetNode == nil {
		return
	}
	if t.getNewTransform() {
		t.targetNode.SetPosition(t.referencePosition)
		t.QueueRender()
	}
}

func (t *FrameTracking) updateTargetFrame() {
	oldPosition := t.referencePosition
	oldOrientation := t.referenceOrientation

	t.updateTargetSceneNode()
	t.log.Info("target frame changed", logger.F("frame", t.TargetFrame()))

	if t.frameChanged != nil {
		t.frameChanged(oldPosition, oldOrientation)
	}
}
