package tf

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a rigid transform: rotate by Orientation, then translate by Position.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Identity returns the pose that leaves points unchanged
func Identity() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// Apply maps p from the pose's child frame into its parent frame
func (p Pose) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return p.Orientation.Rotate(v).Add(p.Position)
}

// Compose returns p followed by child, i.e. parent<-p<-child
func (p Pose) Compose(child Pose) Pose {
	return Pose{
		Position:    p.Apply(child.Position),
		Orientation: p.Orientation.Mul(child.Orientation).Normalize(),
	}
}

// Inverse returns the pose mapping the parent frame back into the child frame
func (p Pose) Inverse() Pose {
	inv := p.Orientation.Inverse()
	return Pose{
		Position:    inv.Rotate(p.Position).Mul(-1),
		Orientation: inv,
	}
}

// Interpolate blends a and b; t=0 gives a, t=1 gives b
func Interpolate(a, b Pose, t float64) Pose {
	return Pose{
		Position:    a.Position.Add(b.Position.Sub(a.Position).Mul(t)),
		Orientation: mgl64.QuatSlerp(a.Orientation, b.Orientation, t).Normalize(),
	}
}

// StampedPose is a pose sample of one frame
type StampedPose struct {
	Stamp time.Time
	Pose
}
