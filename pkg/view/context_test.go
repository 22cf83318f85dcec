package view

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
)

const tolerance = 1e-9

type fakePose struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
}

type fakeTransforms map[string]fakePose

func (f fakeTransforms) Transform(frame string, stamp time.Time) (mgl64.Vec3, mgl64.Quat, bool) {
	p, ok := f[frame]
	if !ok {
		return mgl64.Vec3{}, mgl64.QuatIdent(), false
	}
	return p.position, p.orientation, true
}

type fakeContext struct {
	renders    int
	fixedFrame string
	frames     fakeTransforms
}

func newFakeContext() *fakeContext {
	return &fakeContext{fixedFrame: "map", frames: fakeTransforms{}}
}

func (f *fakeContext) QueueRender()                { f.renders++ }
func (f *fakeContext) Transforms() TransformSource { return f.frames }
func (f *fakeContext) FixedFrame() string          { return f.fixedFrame }
func (f *fakeContext) Logger() logger.Logger       { return logger.NewNop() }

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

// angleNear compares angles modulo 2π
func angleNear(a, b, tol float64) bool {
	return math.Abs(math.Remainder(a-b, 2*math.Pi)) <= tol
}
