package view

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/property"
)

// DefaultCommandQueueSize bounds the commands waiting for the render loop
const DefaultCommandQueueSize = 64

// Command mutates the current controller on the render goroutine
type Command func(c Controller)

// PropertyValue is the exported state of one property
type PropertyValue struct {
	Name   string      `json:"name"`
	Help   string      `json:"help"`
	Hidden bool        `json:"hidden"`
	Value  interface{} `json:"value"`
}

// Snapshot is a copy of the current controller state that can be read from
// any goroutine
type Snapshot struct {
	ClassID     string          `json:"class_id"`
	TargetFrame string          `json:"target_frame"`
	Status      string          `json:"status"`
	Cursor      string          `json:"cursor"`
	Position    [3]float64      `json:"camera_position"`
	Orientation [4]float64      `json:"camera_orientation"`
	Properties  []PropertyValue `json:"properties"`
	Updated     time.Time       `json:"updated"`
}

// Manager owns the current controller. Everything except Submit and
// Snapshot must be called from the render goroutine.
type Manager struct {
	ctx      DisplayContext
	log      logger.Logger
	current  Controller
	commands chan Command

	snapshotMu sync.RWMutex
	snapshot   Snapshot
}

// NewManager creates a manager without a current controller
func NewManager(ctx DisplayContext, queueSize int) *Manager {
	if queueSize <= 0 {
		queueSize = DefaultCommandQueueSize
	}
	return &Manager{
		ctx:      ctx,
		log:      logger.Component(ctx.Logger(), "view-manager"),
		commands: make(chan Command, queueSize),
	}
}

// Current returns the active controller, or nil
func (m *Manager) Current() Controller {
	return m.current
}

// SetCurrent initializes c and makes it the active controller. It takes over
// the viewpoint of the previous controller, or resets when there is none.
func (m *Manager) SetCurrent(c Controller) {
	c.Initialize(m.ctx)

	prev := m.current
	if prev != nil {
		c.Mimic(prev)
		if d, ok := prev.(interface{ Deactivate() }); ok {
			d.Deactivate()
		}
	} else {
		c.Reset()
	}

	m.current = c
	c.Activate()
	m.publish()
	m.ctx.QueueRender()

	m.log.Info("view controller changed", logger.F("class", c.ClassID()))
}

// Submit queues cmd for the next Update. It never blocks.
func (m *Manager) Submit(cmd Command) error {
	select {
	case m.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Update runs queued commands and then updates the current controller
func (m *Manager) Update(dt, rosDt float64) {
	m.drain()
	if m.current == nil {
		return
	}
	m.current.Update(dt, rosDt)
	m.publish()
}

// HandleMouseEvent forwards event to the current controller
func (m *Manager) HandleMouseEvent(event MouseEvent) {
	if m.current == nil {
		return
	}
	m.current.HandleMouseEvent(event)
}

func (m *Manager) drain() {
	for {
		select {
		case cmd := <-m.commands:
			if m.current != nil {
				cmd(m.current)
				m.ctx.QueueRender()
			}
		default:
			return
		}
	}
}

// Snapshot returns the state published by the last Update
func (m *Manager) Snapshot() Snapshot {
	m.snapshotMu.RLock()
	defer m.snapshotMu.RUnlock()
	return m.snapshot
}

func (m *Manager) publish() {
	c := m.current
	s := Snapshot{
		ClassID: c.ClassID(),
		Status:  c.Status(),
		Cursor:  c.Cursor().String(),
		Updated: time.Now(),
	}
	if t, ok := c.(interface{ TargetFrame() string }); ok {
		s.TargetFrame = t.TargetFrame()
	}
	if cam := c.Camera(); cam != nil {
		s.Position = [3]float64(cam.DerivedPosition())
		q := cam.DerivedOrientation()
		s.Orientation = [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
	}
	for _, p := range c.Properties() {
		meta := p.Meta()
		s.Properties = append(s.Properties, PropertyValue{
			Name:   meta.Name,
			Help:   meta.Help,
			Hidden: meta.Hidden,
			Value:  p.Value(),
		})
	}

	m.snapshotMu.Lock()
	m.snapshot = s
	m.snapshotMu.Unlock()
}

// SetPose returns a command that overwrites the yaw, pitch and position
// properties of the controller; nil fields are left alone
func SetPose(yaw, pitch *float64, position *mgl64.Vec3) Command {
	return func(c Controller) {
		for _, p := range c.Properties() {
			switch prop := p.(type) {
			case *property.Angle:
				if yaw != nil && prop.Meta().Name == "Yaw" {
					prop.Set(*yaw)
				}
			case *property.Float:
				if pitch != nil && prop.Meta().Name == "Pitch" {
					prop.Set(*pitch)
				}
			case *property.Vector:
				if position != nil && prop.Meta().Name == "Position" {
					prop.Set(*position)
				}
			}
		}
		if u, ok := c.(interface{ UpdateCamera() }); ok {
			u.UpdateCamera()
		}
	}
}

// ResetView returns a command that resets the controller
func ResetView() Command {
	return func(c Controller) { c.Reset() }
}

// LookAtPoint returns a command that points the camera at a world point
func LookAtPoint(point mgl64.Vec3) Command {
	return func(c Controller) { c.LookAt(point) }
}
