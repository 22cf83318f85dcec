// Package view implements the camera controllers of the viewer.
//
// A controller owns a camera and a set of editable properties. It is driven
// from the render goroutine: Update once per frame and HandleMouseEvent for
// every pointer event. Controllers never block and report no errors; a
// missing transform simply leaves the previous reference pose in place.
package view

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/property"
	"github.com/leterax/go-fpsview/pkg/scene"
)

// ErrQueueFull is returned by Manager.Submit when the command queue is saturated
var ErrQueueFull = errors.New("view command queue is full")

// TransformSource answers pose lookups of named frames in the fixed frame.
// A zero stamp asks for the latest known pose.
type TransformSource interface {
	Transform(frame string, stamp time.Time) (mgl64.Vec3, mgl64.Quat, bool)
}

// DisplayContext is what the host viewer lends to its controllers
type DisplayContext interface {
	QueueRender()
	Transforms() TransformSource
	FixedFrame() string
	Logger() logger.Logger
}

// Controller is a pluggable camera controller
type Controller interface {
	// Initialize creates the camera and calls OnInitialize
	Initialize(ctx DisplayContext)
	OnInitialize()
	// Activate is called once the controller becomes current
	Activate()
	Reset()
	Update(dt, rosDt float64)
	// Mimic takes over the viewpoint of source
	Mimic(source Controller)
	LookAt(point mgl64.Vec3)
	HandleMouseEvent(event MouseEvent)

	Camera() *scene.Camera
	Status() string
	Cursor() Cursor
	ClassID() string
	Properties() []property.Property
}

// Cursor is the pointer shape a controller asks the host to show
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorRotate2D
	CursorRotate3D
	CursorMoveXY
	CursorMoveZ
	CursorZoom
)

func (c Cursor) String() string {
	switch c {
	case CursorRotate2D:
		return "rotate-2d"
	case CursorRotate3D:
		return "rotate-3d"
	case CursorMoveXY:
		return "move-xy"
	case CursorMoveZ:
		return "move-z"
	case CursorZoom:
		return "zoom"
	default:
		return "default"
	}
}
