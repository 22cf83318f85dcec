package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Grid defaults
const (
	DefaultGridCells   = 20  // cells per side
	DefaultGridSpacing = 1.0 // meters per cell
)

// Frame axes defaults
const (
	DefaultAxisLength       = 0.5
	DefaultTargetAxisLength = 1.0
)

// Colors
var (
	BackgroundColor = mgl32.Vec4{0.19, 0.19, 0.19, 1.0}
	GridColor       = mgl32.Vec3{0.63, 0.63, 0.63}
	AxisXColor      = mgl32.Vec3{1, 0, 0}
	AxisYColor      = mgl32.Vec3{0, 1, 0}
	AxisZColor      = mgl32.Vec3{0, 0, 1}
)
