package view

import (
	"github.com/google/uuid"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/geom"
	"github.com/leterax/go-fpsview/pkg/property"
	"github.com/leterax/go-fpsview/pkg/scene"
)

const (
	DefaultNearClip = 0.01
	MinNearClip     = 0.001
)

// Base carries the behavior shared by every controller: the camera, the
// status and cursor hints and the near clip and Z inversion properties.
type Base struct {
	classID string
	ctx     DisplayContext
	log     logger.Logger
	camera  *scene.Camera

	status string
	cursor Cursor

	nearClip *property.Float
	invertZ  *property.Bool
	props    []property.Property
}

func newBase(classID string) Base {
	b := Base{
		classID: classID,
		log:     logger.NewNop(),
		nearClip: property.NewFloat(property.Meta{
			Name: "Near Clip Distance",
			Help: "Anything closer to the camera than this threshold will not get rendered.",
		}, DefaultNearClip),
		invertZ: property.NewBool(property.Meta{
			Name: "Invert Z Axis",
			Help: "Invert camera's Z axis for Z-down environments/models.",
		}, false),
	}
	b.nearClip.SetMin(MinNearClip)
	b.props = []property.Property{b.nearClip, b.invertZ}
	return b
}

// Initialize creates the controller camera. Embedding controllers call it
// from their own Initialize before running OnInitialize.
func (b *Base) Initialize(ctx DisplayContext) {
	b.ctx = ctx
	b.log = logger.Component(ctx.Logger(), b.classID)

	b.camera = scene.NewCamera("ViewControllerCamera-" + uuid.NewString())
	b.camera.SetFixedYawAxis(true, geom.UnitZ)
	b.applyNearClip()

	b.nearClip.OnChanged(func() {
		b.applyNearClip()
		b.QueueRender()
	})

	b.log.Debug("controller initialized", logger.F("camera", b.camera.Name()))
}

func (b *Base) applyNearClip() {
	if b.camera != nil {
		b.camera.SetNearClipDistance(b.nearClip.Float())
	}
}

// addProperty appends p to the list reported by Properties
func (b *Base) addProperty(p property.Property) {
	b.props = append(b.props, p)
}

func (b *Base) Camera() *scene.Camera { return b.camera }
func (b *Base) ClassID() string       { return b.classID }
func (b *Base) Status() string        { return b.status }
func (b *Base) SetStatus(s string)    { b.status = s }
func (b *Base) Cursor() Cursor        { return b.cursor }
func (b *Base) SetCursor(c Cursor)    { b.cursor = c }

// InvertZ reports whether the world is Z-down
func (b *Base) InvertZ() bool { return b.invertZ.Bool() }

// NearClip exposes the near clip distance property
func (b *Base) NearClip() *property.Float { return b.nearClip }

// Properties lists every property, hidden ones included
func (b *Base) Properties() []property.Property {
	return b.props
}

// QueueRender asks the host for a redraw
func (b *Base) QueueRender() {
	if b.ctx != nil {
		b.ctx.QueueRender()
	}
}

func (b *Base) transforms() TransformSource {
	if b.ctx == nil {
		return nil
	}
	return b.ctx.Transforms()
}
