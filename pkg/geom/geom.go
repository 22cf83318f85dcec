// Package geom holds the rotation helpers shared by the scene graph, the
// transform cache and the view controllers.
//
// Angles follow the camera-engine naming: Roll is the rotation about the
// local Z axis, Yaw about local Y and Pitch about local X. View controllers
// that use a Z-up world relabel these (see view.FPSController).
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	Pi     = math.Pi
	HalfPi = math.Pi / 2
	TwoPi  = 2 * math.Pi
)

// Axis vectors
var (
	UnitX    = mgl64.Vec3{1, 0, 0}
	UnitY    = mgl64.Vec3{0, 1, 0}
	UnitZ    = mgl64.Vec3{0, 0, 1}
	NegUnitZ = mgl64.Vec3{0, 0, -1}
	Zero     = mgl64.Vec3{}
)

// AngleAxis returns the rotation of angle radians about axis.
func AngleAxis(angle float64, axis mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatRotate(angle, axis.Normalize())
}

// Roll returns the rotation of q about its local Z axis.
func Roll(q mgl64.Quat) float64 {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]
	return math.Atan2(2*(x*y+w*z), w*w+x*x-y*y-z*z)
}

// Pitch returns the rotation of q about its local X axis.
func Pitch(q mgl64.Quat) float64 {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]
	return math.Atan2(2*(y*z+w*x), w*w-x*x-y*y+z*z)
}

// Yaw returns the rotation of q about its local Y axis, in [-π/2, π/2].
func Yaw(q mgl64.Quat) float64 {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]
	return math.Asin(mgl64.Clamp(-2*(x*z-w*y), -1, 1))
}

// MapAngleTo0To2Pi wraps angle into [0, 2π).
func MapAngleTo0To2Pi(angle float64) float64 {
	angle = math.Mod(angle, TwoPi)
	if angle < 0 {
		angle += TwoPi
	}
	// Mod of a tiny negative value can round up to exactly 2π, and Mod of
	// -0 or a negative full turn is -0.
	if angle >= TwoPi || angle == 0 {
		return 0
	}
	return angle
}

// FromAxes builds the rotation whose local X, Y and Z axes map onto the given
// orthonormal vectors.
func FromAxes(x, y, z mgl64.Vec3) mgl64.Quat {
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// SameOrientation reports whether a and b describe the same rotation within
// epsilon, treating q and -q as equal.
func SameOrientation(a, b mgl64.Quat, epsilon float64) bool {
	return math.Abs(a.Normalize().Dot(b.Normalize())) > 1-epsilon
}
