package view

// EventType classifies a mouse event
type EventType int

const (
	MouseMove EventType = iota
	MousePress
	MouseRelease
	MouseWheel
)

// Buttons is the set of mouse buttons held during an event
type Buttons uint8

const (
	ButtonLeft Buttons = 1 << iota
	ButtonMiddle
	ButtonRight
)

// Modifiers is the set of keyboard modifiers held during an event
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
)

// WheelStep is the wheel delta of one notch
const WheelStep = 120

// MouseEvent is a pointer event in viewport pixel coordinates. LastX and
// LastY hold the position of the previous event.
type MouseEvent struct {
	Type         EventType
	X, Y         int
	LastX, LastY int
	Buttons      Buttons
	Modifiers    Modifiers
	WheelDelta   int
}

func (e MouseEvent) Left() bool    { return e.Buttons&ButtonLeft != 0 }
func (e MouseEvent) Middle() bool  { return e.Buttons&ButtonMiddle != 0 }
func (e MouseEvent) Right() bool   { return e.Buttons&ButtonRight != 0 }
func (e MouseEvent) Shift() bool   { return e.Modifiers&ModShift != 0 }
func (e MouseEvent) Control() bool { return e.Modifiers&ModControl != 0 }

// Delta returns the pointer movement of a MouseMove event and zero for any
// other event type.
func (e MouseEvent) Delta() (dx, dy int) {
	if e.Type != MouseMove {
		return 0, 0
	}
	return e.X - e.LastX, e.Y - e.LastY
}
