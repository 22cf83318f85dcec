package viewer

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/leterax/go-fpsview/pkg/view"
)

// mouseTracker turns GLFW's separate cursor, button, key and scroll
// callbacks into self-contained view.MouseEvents
type mouseTracker struct {
	x, y    int
	seen    bool
	buttons view.Buttons
	mods    view.Modifiers
}

func (m *mouseTracker) event(t view.EventType, x, y int) view.MouseEvent {
	lastX, lastY := m.x, m.y
	if !m.seen {
		lastX, lastY = x, y
	}
	m.x, m.y, m.seen = x, y, true
	return view.MouseEvent{
		Type:      t,
		X:         x,
		Y:         y,
		LastX:     lastX,
		LastY:     lastY,
		Buttons:   m.buttons,
		Modifiers: m.mods,
	}
}

func (m *mouseTracker) move(xpos, ypos float64) view.MouseEvent {
	return m.event(view.MouseMove, int(math.Floor(xpos)), int(math.Floor(ypos)))
}

// button updates the held set. Buttons other than left, middle and right
// are ignored.
func (m *mouseTracker) button(b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) (view.MouseEvent, bool) {
	var mask view.Buttons
	switch b {
	case glfw.MouseButtonLeft:
		mask = view.ButtonLeft
	case glfw.MouseButtonMiddle:
		mask = view.ButtonMiddle
	case glfw.MouseButtonRight:
		mask = view.ButtonRight
	default:
		return view.MouseEvent{}, false
	}

	m.mods = modifiers(mods)
	t := view.MousePress
	if action == glfw.Press {
		m.buttons |= mask
	} else {
		m.buttons &^= mask
		t = view.MouseRelease
	}
	return m.event(t, m.x, m.y), true
}

func (m *mouseTracker) scroll(yoffset float64) view.MouseEvent {
	e := m.event(view.MouseWheel, m.x, m.y)
	e.WheelDelta = int(math.Round(yoffset * view.WheelStep))
	return e
}

// key tracks modifier state between pointer events
func (m *mouseTracker) key(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	m.mods = modifiers(mods)

	// X11 reports the modifier state from before the key changed
	var mask view.Modifiers
	switch key {
	case glfw.KeyLeftShift, glfw.KeyRightShift:
		mask = view.ModShift
	case glfw.KeyLeftControl, glfw.KeyRightControl:
		mask = view.ModControl
	case glfw.KeyLeftAlt, glfw.KeyRightAlt:
		mask = view.ModAlt
	}
	if action == glfw.Release {
		m.mods &^= mask
	} else {
		m.mods |= mask
	}
}

func modifiers(mods glfw.ModifierKey) view.Modifiers {
	var out view.Modifiers
	if mods&glfw.ModShift != 0 {
		out |= view.ModShift
	}
	if mods&glfw.ModControl != 0 {
		out |= view.ModControl
	}
	if mods&glfw.ModAlt != 0 {
		out |= view.ModAlt
	}
	return out
}

func standardCursor(c view.Cursor) glfw.StandardCursor {
	switch c {
	case view.CursorRotate2D, view.CursorRotate3D:
		return glfw.HandCursor
	case view.CursorMoveXY:
		return glfw.CrosshairCursor
	case view.CursorMoveZ, view.CursorZoom:
		return glfw.VResizeCursor
	default:
		return glfw.ArrowCursor
	}
}
