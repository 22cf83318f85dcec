package scene

// Camera constants
const (
	// Field of view, degrees
	DefaultFOV = 45.0
	MinFOV     = 1.0
	MaxFOV     = 120.0

	// Clip planes
	DefaultNearClip = 0.01
	DefaultFarClip  = 1000.0

	// World units visible per pixel in orthographic mode
	DefaultOrthoScale = 0.05

	// Default viewport size
	DefaultWidth  = 800
	DefaultHeight = 600
)

// ProjectionType selects how the camera projects the scene.
type ProjectionType int

const (
	Perspective ProjectionType = iota
	Orthographic
)

func (p ProjectionType) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return "unknown"
	}
}
